// Package viewstate models the sort/filter/page state of a list view as one
// serializable value with a one-way sync to the URL query string. The URL is
// the single source of truth once populated, which keeps every view
// bookmarkable and shareable; a per-user cookie store carries last-used
// filters across navigations and is rehydrated into the URL exactly once.
package viewstate

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	paramPage           = "page"
	paramPerPage        = "per_page"
	paramOrderBy        = "order_by"
	paramOrderDirection = "order_direction"

	// ParamFiltered marks a URL produced by an explicit filter submission.
	ParamFiltered = "filtered"
)

// FilterKeysFromQuery returns the query keys that are not view-state
// parameters. Used when the filterable key set is only known after the
// server responds.
func FilterKeysFromQuery(q url.Values) []string {
	keys := make([]string, 0, len(q))
	for key := range q {
		switch key {
		case paramPage, paramPerPage, paramOrderBy, paramOrderDirection, ParamFiltered:
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// ViewState is the complete list-view state carried in the URL query.
type ViewState struct {
	Page           int
	PerPage        int
	OrderBy        string
	OrderDirection SortDirection
	Filters        url.Values
}

// FromQuery parses a URL query into a ViewState. Only whitelisted filter keys
// are picked up; everything else in the query is ignored.
func FromQuery(q url.Values, filterKeys []string) ViewState {
	state := ViewState{
		Page:    1,
		Filters: url.Values{},
	}

	if raw := q.Get(paramPage); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			state.Page = page
		}
	}
	if raw := q.Get(paramPerPage); raw != "" {
		if perPage, err := strconv.Atoi(raw); err == nil && perPage > 0 {
			state.PerPage = perPage
		}
	}

	state.OrderBy = q.Get(paramOrderBy)
	switch SortDirection(q.Get(paramOrderDirection)) {
	case SortAsc:
		state.OrderDirection = SortAsc
	case SortDesc:
		state.OrderDirection = SortDesc
	default:
		state.OrderDirection = SortNone
	}
	if state.OrderBy == "" {
		state.OrderDirection = SortNone
	}

	for _, key := range filterKeys {
		if value := q.Get(key); value != "" {
			state.Filters.Set(key, value)
		}
	}
	return state
}

// Query serializes the state back into URL query values. Defaults (page 1,
// unset per_page, no sort) are omitted to keep URLs clean.
func (s ViewState) Query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set(paramPage, strconv.Itoa(s.Page))
	}
	if s.PerPage > 0 {
		q.Set(paramPerPage, strconv.Itoa(s.PerPage))
	}
	if s.OrderBy != "" && s.OrderDirection != SortNone {
		q.Set(paramOrderBy, s.OrderBy)
		q.Set(paramOrderDirection, string(s.OrderDirection))
	}
	for key, values := range s.Filters {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	return q
}

// URL renders the state as a full path under basePath.
func (s ViewState) URL(basePath string) string {
	q := s.Query()
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}

// ToggleSort applies a header click to the sort state. A click on a new
// column always starts ascending; a repeat click flips the direction. With
// triState enabled the third click clears the sort entirely. Page resets to 1
// because the sorted row set no longer lines up with the old page.
func (s ViewState) ToggleSort(column string, triState bool) ViewState {
	next := s.clone()
	next.Page = 1

	if s.OrderBy != column {
		next.OrderBy = column
		next.OrderDirection = SortAsc
		return next
	}

	switch s.OrderDirection {
	case SortAsc:
		next.OrderDirection = SortDesc
	case SortDesc:
		if triState {
			next.OrderBy = ""
			next.OrderDirection = SortNone
		} else {
			next.OrderDirection = SortAsc
		}
	case SortNone:
		next.OrderDirection = SortAsc
	}
	return next
}

// WithPage moves to a page, leaving sort and filters untouched.
func (s ViewState) WithPage(page int) ViewState {
	next := s.clone()
	if page < 1 {
		page = 1
	}
	next.Page = page
	return next
}

// WithFilters replaces the filter set and resets pagination.
func (s ViewState) WithFilters(filters url.Values) ViewState {
	next := s.clone()
	next.Page = 1
	next.Filters = cloneValues(filters)
	return next
}

// FiltersEqual reports whether the state's filters match the given set.
func (s ViewState) FiltersEqual(other url.Values) bool {
	if len(s.Filters) != len(other) {
		return false
	}
	for key, values := range s.Filters {
		otherValues := other[key]
		if len(values) != len(otherValues) {
			return false
		}
		for i := range values {
			if values[i] != otherValues[i] {
				return false
			}
		}
	}
	return true
}

func (s ViewState) clone() ViewState {
	next := s
	next.Filters = cloneValues(s.Filters)
	return next
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for key, values := range v {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// Rehydrate merges stored last-used filters into a state whose URL carried
// none. The URL always wins once it has any filter; the returned bool is true
// only when the state actually changed, so callers redirect at most once.
func Rehydrate(state ViewState, stored url.Values) (ViewState, bool) {
	if len(stored) == 0 || len(state.Filters) > 0 {
		return state, false
	}
	return state.WithFilters(stored), true
}

// FilterStore persists a user's last-used filters per table across
// navigations.
type FilterStore interface {
	Load(r *http.Request, key string) url.Values
	Save(w http.ResponseWriter, key string, filters url.Values)
}

// CookieFilterStore keeps filters in a per-table cookie, base64-encoded JSON.
// Scoped to the browser the same way the upstream localStorage cache was.
type CookieFilterStore struct {
	Prefix string
	MaxAge int
	Secure bool
}

func NewCookieFilterStore(prefix string, secure bool) *CookieFilterStore {
	return &CookieFilterStore{
		Prefix: prefix,
		MaxAge: int((90 * 24 * 3600)), // ~90 days, matching a long-lived browser cache
		Secure: secure,
	}
}

func (s *CookieFilterStore) Load(r *http.Request, key string) url.Values {
	c, err := r.Cookie(s.Prefix + key)
	if err != nil {
		return nil
	}
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var stored map[string][]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil
	}
	return url.Values(stored)
}

func (s *CookieFilterStore) Save(w http.ResponseWriter, key string, filters url.Values) {
	name := s.Prefix + key
	if len(filters) == 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	raw, err := json.Marshal(map[string][]string(filters))
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   s.MaxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
