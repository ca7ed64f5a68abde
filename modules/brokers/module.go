package brokers

import (
	"github.com/propscale/broker-admin/modules/brokers/presentation/controllers"
	"github.com/propscale/broker-admin/modules/brokers/services"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/types"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewBrokersService(app.API(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewBrokersController(app),
	)
	app.RegisterNavItems(types.NavigationItem{
		Name: "Brokers",
		Href: "/brokers",
	})
	return nil
}

func (m *Module) Name() string {
	return "brokers"
}
