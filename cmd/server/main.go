package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/propscale/broker-admin/internal/server"
	"github.com/propscale/broker-admin/modules"
	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	root := &cobra.Command{
		Use:          "broker-admin",
		Short:        "Admin dashboard for the broker platform",
		SilenceUsage: true,
	}
	root.AddCommand(serveCommand(), routesCommand())
	root.RunE = serveCommand().RunE

	if err := root.Execute(); err != nil {
		configuration.Use().Unload()
		log.Fatal(err)
	}
}

func routesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the registered routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			logger := conf.Logger()

			api := apiclient.New(conf.Platform.BaseURL, conf.Platform.Timeout, logger)
			app := application.New(&application.ApplicationOptions{
				API:      api,
				EventBus: eventbus.NewEventPublisher(logger),
			})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}
			serverInstance, err := server.Default(&server.DefaultOptions{
				Logger:        logger,
				Configuration: conf,
				Application:   app,
			})
			if err != nil {
				return err
			}
			return serverInstance.Router().Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
				path, err := route.GetPathTemplate()
				if err != nil {
					return nil
				}
				methods, _ := route.GetMethods()
				if len(methods) == 0 {
					methods = []string{"*"}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", strings.Join(methods, ","), path)
				return nil
			})
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			logger := conf.Logger()

			api := apiclient.New(conf.Platform.BaseURL, conf.Platform.Timeout, logger)
			app := application.New(&application.ApplicationOptions{
				API:      api,
				EventBus: eventbus.NewEventPublisher(logger),
			})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}

			serverInstance, err := server.Default(&server.DefaultOptions{
				Logger:        logger,
				Configuration: conf,
				Application:   app,
			})
			if err != nil {
				return err
			}
			log.Printf("Listening on: %s\n", conf.Origin)
			return serverInstance.Start(conf.SocketAddress)
		},
	}
}
