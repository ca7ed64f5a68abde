package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/Rhymond/go-money"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/reorder"
)

// TabType selects one level of the challenge matrix.
type TabType string

const (
	TabCategory TabType = "category"
	TabStep     TabType = "step"
	TabAmount   TabType = "amount"
)

func ParseTabType(s string) (TabType, error) {
	switch TabType(s) {
	case TabCategory, TabStep, TabAmount:
		return TabType(s), nil
	}
	return "", fmt.Errorf("unknown tab type %q", s)
}

// Tab is one orderable item of a tab strip. Category and step tabs carry a
// name; amount tabs carry a minor-unit amount and currency.
type Tab struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Label is the display text: the name, or the formatted money amount.
func (t Tab) Label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Currency != "" {
		return money.New(t.Amount, strings.ToUpper(t.Currency)).Display()
	}
	return fmt.Sprintf("%d", t.Amount)
}

// ChallengesService manages the three-level tab editor. Each visible tab
// strip owns one reorder list; lists are keyed by broker, level and parent
// scope because a step's position is only meaningful within its category.
type ChallengesService struct {
	api *apiclient.Client
	bus eventbus.EventBus

	mu    sync.Mutex
	lists map[string]*reorder.List[Tab]
}

func NewChallengesService(api *apiclient.Client, bus eventbus.EventBus) *ChallengesService {
	return &ChallengesService{
		api:   api,
		bus:   bus,
		lists: make(map[string]*reorder.List[Tab]),
	}
}

func listKey(brokerID string, tabType TabType, categoryID string) string {
	return brokerID + "/" + string(tabType) + "/" + categoryID
}

func (s *ChallengesService) tabsPath(brokerID string, tabType TabType) string {
	return "/challenges/" + brokerID + "/tabs/" + string(tabType)
}

func scopeQuery(categoryID string) url.Values {
	if categoryID == "" {
		return nil
	}
	return url.Values{"broker_challenge_category_id": {categoryID}}
}

// Tabs fetches the authoritative tab order for one strip.
func (s *ChallengesService) Tabs(ctx context.Context, brokerID string, tabType TabType, categoryID string) ([]Tab, error) {
	env := s.api.Get(ctx, s.tabsPath(brokerID, tabType), scopeQuery(categoryID))
	if !env.Success {
		return nil, &crud.Error{Message: env.Message, Unauthorized: env.Unauthorized()}
	}
	var tabs []Tab
	if err := env.DecodeData(&tabs); err != nil {
		return nil, &crud.Error{Message: "Invalid response from server"}
	}
	return tabs, nil
}

// list returns the strip's reorder list, fetching the initial order when the
// strip is first touched. The second return reports whether this call created
// the list, in which case its order is already fresh.
func (s *ChallengesService) list(ctx context.Context, brokerID string, tabType TabType, categoryID string) (*reorder.List[Tab], bool, error) {
	key := listKey(brokerID, tabType, categoryID)

	s.mu.Lock()
	if l, ok := s.lists[key]; ok {
		s.mu.Unlock()
		return l, false, nil
	}
	s.mu.Unlock()

	tabs, err := s.Tabs(ctx, brokerID, tabType, categoryID)
	if err != nil {
		return nil, false, err
	}

	orderPath := s.tabsPath(brokerID, tabType) + "/order"
	if q := scopeQuery(categoryID); q != nil {
		orderPath += "?" + q.Encode()
	}

	l := reorder.NewList(tabs, reorder.Funcs[Tab]{
		ID: func(t Tab) int64 { return t.ID },
		Persist: func(ctx context.Context, ids []int64) error {
			env := s.api.Put(ctx, orderPath, map[string]any{"tab_ids": ids})
			if !env.Success {
				return &crud.Error{Message: env.Message, Unauthorized: env.Unauthorized()}
			}
			return nil
		},
		Fetch: func(ctx context.Context) ([]Tab, error) {
			return s.Tabs(ctx, brokerID, tabType, categoryID)
		},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.lists[key]; ok {
		return existing, false, nil
	}
	s.lists[key] = l
	return l, true, nil
}

// Strip returns the current (possibly optimistic) order of one tab strip.
func (s *ChallengesService) Strip(ctx context.Context, brokerID string, tabType TabType, categoryID string) ([]Tab, error) {
	l, _, err := s.list(ctx, brokerID, tabType, categoryID)
	if err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// Refresh returns a strip's order after syncing it with server truth. A strip
// still persisting a drag keeps its optimistic order; a strip created by this
// call is already fresh and skips the second fetch.
func (s *ChallengesService) Refresh(ctx context.Context, brokerID string, tabType TabType, categoryID string) ([]Tab, error) {
	l, created, err := s.list(ctx, brokerID, tabType, categoryID)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := l.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return l.Items(), nil
}

// Reorder applies a drag from index from to index to and persists the new
// order. On persist failure the strip reverts to server truth and the error
// carries the user-facing message.
func (s *ChallengesService) Reorder(ctx context.Context, brokerID string, tabType TabType, categoryID string, from, to int) (reorder.MoveResult, error) {
	l, _, err := s.list(ctx, brokerID, tabType, categoryID)
	if err != nil {
		return reorder.MoveResult{}, err
	}
	return l.Move(ctx, from, to)
}

// Clone copies a default tab into a broker's tab list, optionally scoped to a
// category.
func (s *ChallengesService) Clone(ctx context.Context, tabType TabType, brokerID, defaultTabID, categoryID string) error {
	query := url.Values{"default_tab_id_to_clone": {defaultTabID}}
	if categoryID != "" {
		query.Set("broker_challenge_category_id", categoryID)
	}
	env := s.api.PostQuery(ctx, "/challenges/"+string(tabType)+"/"+brokerID, query, nil)
	if !env.Success {
		return &crud.Error{Message: env.Message, Unauthorized: env.Unauthorized()}
	}
	s.dropList(brokerID, tabType, categoryID)
	s.bus.Publish(eventbus.Invalidated{Resource: "challenges"})
	return nil
}

// dropList forgets a cached strip so the next read refetches server truth.
func (s *ChallengesService) dropList(brokerID string, tabType TabType, categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, listKey(brokerID, tabType, categoryID))
}
