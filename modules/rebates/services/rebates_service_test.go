package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/crud"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/logging"
)

func testService(t *testing.T, handler http.HandlerFunc) (*RebatesService, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logging.ConsoleLogger(logrus.PanicLevel)
	api := apiclient.New(srv.URL, 5*time.Second, logger)
	bus := eventbus.NewEventPublisher(logger)
	bus.Subscribe(func(eventbus.Invalidated) {})
	return NewRebatesService(api, bus), composables.WithToken(context.Background(), "test-token")
}

func TestMatrix_DecodesDecimalRates(t *testing.T) {
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rebates/7/matrix", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "data": {
			"account_types": [{"id": 1, "name": "Standard"}],
			"tiers": [{"id": 10, "name": "Bronze"}, {"id": 11, "name": "Silver"}],
			"rates": [{"account_type_id": 1, "tier_id": 10, "rate": "0.125"}]
		}}`))
	})

	matrix, err := svc.Matrix(ctx, "7")
	require.NoError(t, err)
	assert.True(t, matrix.Rate(1, 10).Equal(decimal.RequireFromString("0.125")))
	assert.True(t, matrix.Rate(1, 11).IsZero(), "unset cells read as zero")
}

func TestSave_SubmitsFullMatrix(t *testing.T) {
	var body map[string]any
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	rates := []Rate{
		{AccountTypeID: 1, TierID: 10, Rate: decimal.RequireFromString("0.125")},
		{AccountTypeID: 1, TierID: 11, Rate: decimal.Zero},
	}
	require.NoError(t, svc.Save(ctx, "7", rates))

	sent := body["rates"].([]any)
	require.Len(t, sent, 2)
	first := sent[0].(map[string]any)
	assert.Equal(t, "0.125", first["rate"], "rates travel as decimal strings, not floats")
}

func TestSave_RejectsNegativeRate(t *testing.T) {
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("a negative rate must be rejected before any request")
	})

	err := svc.Save(ctx, "7", []Rate{
		{AccountTypeID: 1, TierID: 10, Rate: decimal.RequireFromString("-0.5")},
	})
	var crudErr *crud.Error
	require.ErrorAs(t, err, &crudErr)
	assert.Contains(t, crudErr.Fields["rate.1.10"][0], "negative")
}

func TestSave_ServerValidationErrors(t *testing.T) {
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success": false, "message": "Validation failed",
			"errors": {"rate.1.10": ["Rate exceeds the allowed maximum"]}}`))
	})

	err := svc.Save(ctx, "7", []Rate{
		{AccountTypeID: 1, TierID: 10, Rate: decimal.RequireFromString("99")},
	})
	var crudErr *crud.Error
	require.ErrorAs(t, err, &crudErr)
	assert.Equal(t, "Validation failed", crudErr.Message)
	assert.Len(t, crudErr.Fields["rate.1.10"], 1)
}
