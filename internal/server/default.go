package server

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/constants"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/metrics"
	"github.com/propscale/broker-admin/pkg/middleware"
	"github.com/propscale/broker-admin/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

// Default assembles the middleware stack and fallback handlers around the
// controllers the modules registered.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	// Mutations publish Invalidated; views refetch on the next request, so
	// the server's only job here is to trace the event.
	app.EventPublisher().Subscribe(invalidationLogger(options.Logger))

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.AppKey, app),
	}
	app.RegisterMiddleware(middlewares...)

	app.RegisterControllers(
		NewStaticFilesController(),
		NewHealthController(),
	)
	if options.Configuration.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(options.Configuration.Prometheus.Path))
	}

	return server.NewHTTPServer(
		app,
		NotFound(app),
		MethodNotAllowed(app),
	), nil
}

func invalidationLogger(logger *logrus.Logger) func(eventbus.Invalidated) {
	return func(event eventbus.Invalidated) {
		logger.WithField("resource", event.Resource).Debug("resource invalidated")
	}
}
