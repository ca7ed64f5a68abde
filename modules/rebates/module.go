package rebates

import (
	"github.com/propscale/broker-admin/modules/rebates/presentation/controllers"
	"github.com/propscale/broker-admin/modules/rebates/services"
	"github.com/propscale/broker-admin/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewRebatesService(app.API(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewRebatesController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "rebates"
}
