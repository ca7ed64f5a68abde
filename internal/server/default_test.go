package server

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/application"
	"github.com/propscale/broker-admin/pkg/configuration"
	"github.com/propscale/broker-admin/pkg/eventbus"
)

func TestDefault_HandlesInvalidationEvents(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
	})

	_, err := Default(&DefaultOptions{
		Logger:        logger,
		Configuration: &configuration.Configuration{},
		Application:   app,
	})
	require.NoError(t, err)

	app.EventPublisher().Publish(eventbus.Invalidated{Resource: "brokers"})

	var handled bool
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level,
			"a mutation event must not log an unhandled-event warning")
		if entry.Message == "resource invalidated" {
			handled = true
			assert.Equal(t, "brokers", entry.Data["resource"])
		}
	}
	assert.True(t, handled)
}
