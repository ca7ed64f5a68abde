// Package crud is the generic resource gateway: every entity the dashboard
// manages is a platform REST resource with the same envelope, so one service
// covers listing, form config, create/update/delete and invalidation for all
// of them.
package crud

import (
	"context"
	"net/url"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/schema"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

// Error carries the normalized failure shape out of the platform envelope.
type Error struct {
	Message      string
	Unauthorized bool
	// Fields holds server-side validation errors keyed by field path.
	Fields map[string][]string
}

func (e *Error) Error() string {
	return e.Message
}

func envelopeError(env *apiclient.Envelope) *Error {
	return &Error{
		Message:      env.Message,
		Unauthorized: env.Unauthorized(),
		Fields:       env.Errors,
	}
}

// ListPage is one page of a listing endpoint: rows plus the rendering
// metadata the server ships alongside them.
type ListPage struct {
	Rows       []schema.Row
	Columns    schema.Columns
	Filters    schema.Filters
	Pagination schema.Pagination
	FormConfig *schema.FormConfig
}

// Resource addresses one platform REST resource.
type Resource struct {
	api *apiclient.Client
	bus eventbus.EventBus

	key      string
	basePath string
	listPath string
}

type Option func(*Resource)

// WithListPath overrides the default "<base>/get-list" listing endpoint.
func WithListPath(path string) Option {
	return func(r *Resource) {
		r.listPath = path
	}
}

func NewResource(key, basePath string, api *apiclient.Client, bus eventbus.EventBus, opts ...Option) *Resource {
	r := &Resource{
		api:      api,
		bus:      bus,
		key:      key,
		basePath: basePath,
		listPath: basePath + "/get-list",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resource) Key() string {
	return r.key
}

// List fetches one page, carrying the view state into the query string.
func (r *Resource) List(ctx context.Context, state viewstate.ViewState) (*ListPage, error) {
	env := r.api.Get(ctx, r.listPath, state.Query())
	if !env.Success {
		return nil, envelopeError(env)
	}

	page := &ListPage{
		Columns:    env.TableColumnsConfig,
		Filters:    env.FiltersConfig,
		FormConfig: env.FormConfig,
	}
	if err := page.Filters.Validate(); err != nil {
		return nil, &Error{Message: err.Error()}
	}
	if len(env.Data) > 0 {
		rows, err := env.Rows()
		if err != nil {
			return nil, &Error{Message: "Invalid response from server"}
		}
		page.Rows = rows
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		// Some legacy endpoints omit pagination; derive one page locally.
		perPage := state.PerPage
		if perPage < 1 {
			perPage = len(page.Rows)
		}
		page.Pagination = schema.NewPagination(state.Page, perPage, len(page.Rows))
	}
	return page, nil
}

// Get fetches one record by id for editing.
func (r *Resource) Get(ctx context.Context, id string) (map[string]any, error) {
	env := r.api.Get(ctx, r.basePath+"/"+id, nil)
	if !env.Success {
		return nil, envelopeError(env)
	}
	var record map[string]any
	if err := env.DecodeData(&record); err != nil {
		return nil, &Error{Message: "Invalid response from server"}
	}
	return record, nil
}

// FormConfig fetches the server-defined form schema for the resource.
func (r *Resource) FormConfig(ctx context.Context) (*schema.FormConfig, error) {
	env := r.api.Get(ctx, r.basePath+"/form-config", nil)
	if !env.Success {
		return nil, envelopeError(env)
	}
	if env.FormConfig == nil {
		return nil, &Error{Message: "Invalid response from server"}
	}
	if err := env.FormConfig.Validate(); err != nil {
		return nil, &Error{Message: err.Error()}
	}
	return env.FormConfig, nil
}

// Create posts a new record; a success invalidates the resource.
func (r *Resource) Create(ctx context.Context, payload map[string]any) error {
	env := r.api.Post(ctx, r.basePath, payload)
	if !env.Success {
		return envelopeError(env)
	}
	r.invalidate()
	return nil
}

// Update puts a record by id; a success invalidates the resource.
func (r *Resource) Update(ctx context.Context, id string, payload map[string]any) error {
	env := r.api.Put(ctx, r.basePath+"/"+id, payload)
	if !env.Success {
		return envelopeError(env)
	}
	r.invalidate()
	return nil
}

// Delete removes a record by id; a success invalidates the resource.
func (r *Resource) Delete(ctx context.Context, id string) error {
	env := r.api.Delete(ctx, r.basePath+"/"+id)
	if !env.Success {
		return envelopeError(env)
	}
	r.invalidate()
	return nil
}

func (r *Resource) invalidate() {
	if r.bus != nil {
		r.bus.Publish(eventbus.Invalidated{Resource: r.key})
	}
}

// Query turns raw filter values into a clean whitelisted set for a filter
// config.
func Query(filters schema.Filters, raw url.Values) url.Values {
	out := url.Values{}
	for _, key := range filters.Keys() {
		if v := raw.Get(key); v != "" {
			out.Set(key, v)
		}
	}
	return out
}
