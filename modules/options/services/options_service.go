package services

import (
	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
)

// OptionsService fronts the dynamically-defined broker option fields. The
// platform fully describes this resource (columns, filters, form), so the
// service is the generic gateway and nothing else.
type OptionsService struct {
	*crud.Resource
}

func NewOptionsService(api *apiclient.Client, bus eventbus.EventBus) *OptionsService {
	return &OptionsService{
		Resource: crud.NewResource("broker-options", "/broker-options", api, bus),
	}
}
