package modules

import (
	"github.com/propscale/broker-admin/modules/brokers"
	"github.com/propscale/broker-admin/modules/challenges"
	"github.com/propscale/broker-admin/modules/options"
	"github.com/propscale/broker-admin/modules/rebates"
	"github.com/propscale/broker-admin/pkg/application"
)

var BuiltInModules = []application.Module{
	brokers.NewModule(),
	options.NewModule(),
	challenges.NewModule(),
	rebates.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.LoadModules(app, externalModules...)
}
