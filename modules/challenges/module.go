package challenges

import (
	"github.com/propscale/broker-admin/modules/challenges/presentation/controllers"
	"github.com/propscale/broker-admin/modules/challenges/services"
	"github.com/propscale/broker-admin/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewChallengesService(app.API(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewChallengesController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "challenges"
}
