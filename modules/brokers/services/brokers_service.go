package services

import (
	"context"
	"sync"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
)

// NestedResources are the broker sub-entities served by the same generic
// table + form pair.
var NestedResources = []string{"accounts", "companies", "promotions", "contests"}

// BrokersService fronts the broker endpoints of the platform API.
type BrokersService struct {
	*crud.Resource

	api *apiclient.Client
	bus eventbus.EventBus

	// inflight guards one active status toggle per broker; a duplicate
	// submit while the first is outstanding is rejected, mirroring the
	// blocking-overlay semantics of the toggle action.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewBrokersService(api *apiclient.Client, bus eventbus.EventBus) *BrokersService {
	return &BrokersService{
		Resource: crud.NewResource("brokers", "/brokers", api, bus,
			crud.WithListPath("/brokers/broker-list")),
		api:      api,
		bus:      bus,
		inflight: make(map[string]struct{}),
	}
}

// ToggleActive flips a broker's active status. Only one toggle per broker may
// be in flight.
func (s *BrokersService) ToggleActive(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return &crud.Error{Message: "A status update for this broker is already running"}
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()

	env := s.api.Patch(ctx, "/brokers/toggle-active-status/"+id, nil)
	if !env.Success {
		return &crud.Error{
			Message:      env.Message,
			Unauthorized: env.Unauthorized(),
		}
	}
	s.bus.Publish(eventbus.Invalidated{Resource: "brokers"})
	return nil
}

// Nested returns the resource gateway for a broker sub-entity list.
func (s *BrokersService) Nested(brokerID, resource string) *crud.Resource {
	base := "/brokers/" + brokerID + "/" + resource
	return crud.NewResource("brokers:"+resource, base, s.api, s.bus)
}
