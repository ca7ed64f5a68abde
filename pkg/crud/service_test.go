package crud

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

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/logging"
	"github.com/propscale/broker-admin/pkg/viewstate"
)

func testResource(t *testing.T, handler http.HandlerFunc) (*Resource, eventbus.EventBus, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logging.ConsoleLogger(logrus.PanicLevel)
	api := apiclient.New(srv.URL, 5*time.Second, logger)
	bus := eventbus.NewEventPublisher(logger)
	ctx := composables.WithToken(context.Background(), "test-token")
	return NewResource("broker-options", "/broker-options", api, bus), bus, ctx
}

func TestResource_List(t *testing.T) {
	resource, _, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/broker-options/get-list", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "name", r.URL.Query().Get("order_by"))
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [{"id": 1, "name": "Spread"}],
			"table_columns_config": {"name": {"label": "Name", "type": "text", "visible": true, "sortable": true}},
			"filters_config": {"status": {"type": "select", "label": "Status", "options": [{"value": "active", "label": "Active"}]}},
			"pagination": {"current_page": 2, "last_page": 3, "per_page": 1, "total": 3, "from": 2, "to": 2}
		}`))
	})

	state := viewstate.ViewState{Page: 2, OrderBy: "name", OrderDirection: viewstate.SortAsc, Filters: url.Values{}}
	page, err := resource.List(ctx, state)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Name", page.Columns[0].Label)
	assert.Equal(t, []string{"status"}, page.Filters.Keys())
	assert.Equal(t, 2, page.Pagination.CurrentPage)
}

func TestResource_List_FailurePropagatesMessage(t *testing.T) {
	resource, _, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success": false, "message": "Something broke"}`))
	})

	_, err := resource.List(ctx, viewstate.ViewState{Page: 1})
	var crudErr *Error
	require.ErrorAs(t, err, &crudErr)
	assert.Equal(t, "Something broke", crudErr.Message)
	assert.False(t, crudErr.Unauthorized)
}

func TestResource_List_MissingPaginationDerivedLocally(t *testing.T) {
	resource, _, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": [{"id": 1}, {"id": 2}]}`))
	})

	page, err := resource.List(ctx, viewstate.ViewState{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.From)
	assert.Equal(t, 2, page.Pagination.To)
}

func TestResource_Delete_PublishesInvalidation(t *testing.T) {
	var deleted []string
	resource, bus, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "message": "Deleted"}`))
	})

	var invalidated []string
	bus.Subscribe(func(event eventbus.Invalidated) {
		invalidated = append(invalidated, event.Resource)
	})

	require.NoError(t, resource.Delete(ctx, "42"))
	assert.Equal(t, []string{"/broker-options/42"}, deleted)
	assert.Equal(t, []string{"broker-options"}, invalidated)
}

func TestResource_Delete_FailureSkipsInvalidation(t *testing.T) {
	resource, bus, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success": false, "message": "Record is in use"}`))
	})

	fired := 0
	bus.Subscribe(func(eventbus.Invalidated) { fired++ })

	err := resource.Delete(ctx, "42")
	var crudErr *Error
	require.ErrorAs(t, err, &crudErr)
	assert.Equal(t, "Record is in use", crudErr.Message)
	assert.Zero(t, fired, "failed mutations must not invalidate")
}

func TestResource_Create_FieldErrors(t *testing.T) {
	resource, _, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success": false, "message": "Validation failed", "errors": {"general.name": ["The name field is required."]}}`))
	})

	err := resource.Create(ctx, map[string]any{"general": map[string]any{"name": ""}})
	var crudErr *Error
	require.ErrorAs(t, err, &crudErr)
	assert.Equal(t, []string{"The name field is required."}, crudErr.Fields["general.name"])
}

func TestQuery_Whitelists(t *testing.T) {
	page, _, ctx := testResource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": [],
			"filters_config": {"status": {"type": "text", "label": "Status"}}}`))
	})
	listing, err := page.List(ctx, viewstate.ViewState{Page: 1})
	require.NoError(t, err)

	q := Query(listing.Filters, url.Values{"status": {"active"}, "injected": {"x"}})
	assert.Equal(t, "active", q.Get("status"))
	assert.Empty(t, q.Get("injected"))
}
