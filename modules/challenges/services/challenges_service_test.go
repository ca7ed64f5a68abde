package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscale/broker-admin/pkg/apiclient"
	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/eventbus"
	"github.com/propscale/broker-admin/pkg/logging"
)

func testService(t *testing.T, handler http.HandlerFunc) (*ChallengesService, context.Context) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logging.ConsoleLogger(logrus.PanicLevel)
	api := apiclient.New(srv.URL, 5*time.Second, logger)
	bus := eventbus.NewEventPublisher(logger)
	bus.Subscribe(func(eventbus.Invalidated) {})
	return NewChallengesService(api, bus), composables.WithToken(context.Background(), "test-token")
}

func tabsJSON() string {
	return `{"success": true, "data": [
		{"id": 1, "name": "Evaluation", "slug": "evaluation"},
		{"id": 2, "name": "Express", "slug": "express"},
		{"id": 3, "name": "Instant", "slug": "instant"}
	]}`
}

func TestTabLabel(t *testing.T) {
	assert.Equal(t, "Evaluation", Tab{ID: 1, Name: "Evaluation"}.Label())
	assert.Equal(t, "$500.00", Tab{ID: 2, Amount: 50000, Currency: "usd"}.Label())
}

func TestParseTabType(t *testing.T) {
	for _, valid := range []string{"category", "step", "amount"} {
		tt, err := ParseTabType(valid)
		require.NoError(t, err)
		assert.Equal(t, TabType(valid), tt)
	}
	_, err := ParseTabType("bogus")
	assert.Error(t, err)
}

func TestReorder_PersistsSplicedOrder(t *testing.T) {
	var orderBodies []map[string]any
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/order") {
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			orderBodies = append(orderBodies, body)
			_, _ = w.Write([]byte(`{"success": true}`))
			return
		}
		assert.Equal(t, "/challenges/7/tabs/category", r.URL.Path)
		_, _ = w.Write([]byte(tabsJSON()))
	})

	res, err := svc.Reorder(ctx, "7", TabCategory, "", 0, 2)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []int64{2, 3, 1}, res.IDs)

	require.Len(t, orderBodies, 1)
	assert.Equal(t, []any{float64(2), float64(3), float64(1)}, orderBodies[0]["tab_ids"])
}

func TestReorder_ServerFailureRevertsToServerOrder(t *testing.T) {
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/order") {
			_, _ = w.Write([]byte(`{"success": false, "message": "Order rejected"}`))
			return
		}
		_, _ = w.Write([]byte(tabsJSON()))
	})

	res, err := svc.Reorder(ctx, "7", TabCategory, "", 0, 2)
	require.Error(t, err)
	assert.True(t, res.Reverted)
	assert.Equal(t, []int64{1, 2, 3}, res.IDs, "strip must match pre-drag server state after revert")

	strip, err := svc.Strip(ctx, "7", TabCategory, "")
	require.NoError(t, err)
	assert.Equal(t, "Evaluation", strip[0].Name)
}

func TestReorder_SameIndexNoRequest(t *testing.T) {
	orderCalls := 0
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/order") {
			orderCalls++
			_, _ = w.Write([]byte(`{"success": true}`))
			return
		}
		_, _ = w.Write([]byte(tabsJSON()))
	})

	res, err := svc.Reorder(ctx, "7", TabCategory, "", 1, 1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Zero(t, orderCalls)
}

func TestStep_ScopedByCategory(t *testing.T) {
	var scopes []string
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		scopes = append(scopes, r.URL.Query().Get("broker_challenge_category_id"))
		_, _ = w.Write([]byte(tabsJSON()))
	})

	_, err := svc.Strip(ctx, "7", TabStep, "4")
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, scopes)
}

func TestClone(t *testing.T) {
	var cloned []string
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		cloned = append(cloned, r.URL.Path+"?"+r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"success": true, "message": "Cloned"}`))
	})

	require.NoError(t, svc.Clone(ctx, TabStep, "7", "12", "4"))
	require.Len(t, cloned, 1)
	assert.Contains(t, cloned[0], "/challenges/step/7")
	assert.Contains(t, cloned[0], "default_tab_id_to_clone=12")
	assert.Contains(t, cloned[0], "broker_challenge_category_id=4")
}

func TestRefresh_PicksUpServerChanges(t *testing.T) {
	fetches := 0
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if fetches == 1 {
			_, _ = w.Write([]byte(tabsJSON()))
			return
		}
		// A colleague reordered the strip between the two page loads.
		_, _ = w.Write([]byte(`{"success": true, "data": [
			{"id": 3, "name": "Instant", "slug": "instant"},
			{"id": 1, "name": "Evaluation", "slug": "evaluation"},
			{"id": 2, "name": "Express", "slug": "express"}
		]}`))
	})

	first, err := svc.Refresh(ctx, "7", TabCategory, "")
	require.NoError(t, err)
	require.Equal(t, 1, fetches, "the creating read fetches exactly once")
	assert.Equal(t, int64(1), first[0].ID)

	second, err := svc.Refresh(ctx, "7", TabCategory, "")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
	assert.Equal(t, int64(3), second[0].ID, "a page load must show the current server order, not the cached one")
}

func TestClone_FailureKeepsCachedStrip(t *testing.T) {
	fetches := 0
	svc, ctx := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success": false, "message": "Already cloned"}`))
			return
		}
		fetches++
		_, _ = w.Write([]byte(tabsJSON()))
	})

	_, err := svc.Strip(ctx, "7", TabCategory, "")
	require.NoError(t, err)
	require.Equal(t, 1, fetches)

	require.Error(t, svc.Clone(ctx, TabCategory, "7", "12", ""))

	// The cached strip survives a failed clone; no refetch happens.
	_, err = svc.Strip(ctx, "7", TabCategory, "")
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
}
