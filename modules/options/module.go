package options

import (
	"github.com/propscale/broker-admin/modules/options/presentation/controllers"
	"github.com/propscale/broker-admin/modules/options/services"
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
		services.NewOptionsService(app.API(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewOptionsController(app),
	)
	app.RegisterNavItems(types.NavigationItem{
		Name: "Broker Options",
		Href: "/broker-options",
	})
	return nil
}

func (m *Module) Name() string {
	return "options"
}
