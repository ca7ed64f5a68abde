package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/logging"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

func listState() viewstate.ViewState {
	return viewstate.ViewState{Page: 1}
}

func testService(t *testing.T, handler http.HandlerFunc) (*BrokersService, eventbus.EventBus, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logging.ConsoleLogger(logrus.PanicLevel)
	api := apiclient.New(srv.URL, 5*time.Second, logger)
	bus := eventbus.NewEventPublisher(logger)
	return NewBrokersService(api, bus), bus, composables.WithToken(context.Background(), "test-token")
}

func TestToggleActive_Success(t *testing.T) {
	var paths []string
	svc, bus, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "message": "Status updated"}`))
	})

	var invalidated []string
	bus.Subscribe(func(event eventbus.Invalidated) {
		invalidated = append(invalidated, event.Resource)
	})

	require.NoError(t, svc.ToggleActive(ctx, "17"))
	assert.Equal(t, []string{"/brokers/toggle-active-status/17"}, paths)
	assert.Equal(t, []string{"brokers"}, invalidated)
}

func TestToggleActive_Failure(t *testing.T) {
	svc, bus, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success": false, "message": "Broker is locked"}`))
	})

	fired := 0
	bus.Subscribe(func(eventbus.Invalidated) { fired++ })

	err := svc.ToggleActive(ctx, "17")
	var crudErr *crud.Error
	require.ErrorAs(t, err, &crudErr)
	assert.Equal(t, "Broker is locked", crudErr.Message)
	assert.Zero(t, fired)
}

func TestToggleActive_RejectsDuplicateInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var first atomic.Bool
	svc, _, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		// Only the first request hangs; the rest complete immediately.
		if first.CompareAndSwap(false, true) {
			close(entered)
			<-release
		}
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- svc.ToggleActive(ctx, "17")
	}()

	<-entered
	err := svc.ToggleActive(ctx, "17")
	var crudErr *crud.Error
	require.ErrorAs(t, err, &crudErr)
	assert.Contains(t, crudErr.Message, "already running")

	// A different broker is not blocked by broker 17's in-flight toggle.
	require.NoError(t, svc.ToggleActive(ctx, "18"))

	close(release)
	require.NoError(t, <-firstDone)

	// After settling, the same broker can be toggled again.
	require.NoError(t, svc.ToggleActive(ctx, "17"))
}

func TestNested_PathShape(t *testing.T) {
	var paths []string
	svc, _, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	})

	nested := svc.Nested("17", "accounts")
	_, err := nested.List(ctx, listState())
	require.NoError(t, err)
	assert.Equal(t, []string{"/brokers/17/accounts/get-list"}, paths)
}
