package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/logging"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(srv.URL, 5*time.Second, logging.ConsoleLogger(logrus.PanicLevel))
	ctx := composables.WithToken(context.Background(), "test-token")
	return client, ctx
}

func TestClient_Get_Success(t *testing.T) {
	client, ctx := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/brokers/broker-list", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"id": 1, "name": "Alpha"}, {"id": 2, "name": "Beta"}],
			"pagination": {"current_page": 2, "last_page": 4, "per_page": 2, "total": 8, "from": 3, "to": 4}
		}`))
	})

	env := client.Get(ctx, "/brokers/broker-list", url.Values{"page": {"2"}})
	require.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.CurrentPage)

	rows, err := env.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].ID())
	assert.Equal(t, "Alpha", env.DataAt("0.name").String())
}

func TestClient_MissingToken(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never leave the client without a token")
	})

	env := client.Get(context.Background(), "/brokers/broker-list", nil)
	assert.False(t, env.Success)
	assert.True(t, env.Unauthorized())
	assert.Equal(t, "Authentication token missing", env.Message)
}

func TestClient_NonOKStatusUsesServerMessage(t *testing.T) {
	client, ctx := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success": false, "message": "Validation failed", "errors": {"name": ["required"]}}`))
	})

	env := client.Post(ctx, "/broker-options", map[string]any{"name": ""})
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, "Validation failed — name: required", env.ErrorSummary())
}

func TestClient_NonOKStatusWithoutBodyMessage(t *testing.T) {
	client, ctx := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	})

	env := client.Get(ctx, "/brokers/broker-list", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Request failed with status 502", env.Message)
}

func TestClient_MalformedJSON(t *testing.T) {
	client, ctx := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	})

	env := client.Get(ctx, "/brokers/broker-list", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid response from server", env.Message)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // the address now refuses connections
	client := New(srv.URL, time.Second, logging.ConsoleLogger(logrus.PanicLevel))
	ctx := composables.WithToken(context.Background(), "test-token")

	env := client.Get(ctx, "/brokers/broker-list", nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Could not reach the server")
}

func TestClient_UnauthorizedStatus(t *testing.T) {
	client, ctx := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success": false, "message": "Token expired"}`))
	})

	env := client.Get(ctx, "/brokers/broker-list", nil)
	assert.False(t, env.Success)
	assert.True(t, env.Unauthorized())
	assert.Equal(t, "Token expired", env.Message)
}

func TestEnvelope_ErrorSummaryOrdersFields(t *testing.T) {
	env := &Envelope{
		Message: "Validation failed",
		Errors: map[string][]string{
			"slug": {"taken"},
			"name": {"required", "too short"},
		},
	}
	assert.Equal(t, "Validation failed — name: required; too short — slug: taken", env.ErrorSummary())
}
