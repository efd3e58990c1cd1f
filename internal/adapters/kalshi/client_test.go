package kalshi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/kalshiledger/internal/adapters/kalshi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillsPage1 = `{
  "fills": [
    {"trade_id": "t-1", "ticker": "KXBTC-26MAR01", "side": "yes", "action": "buy",
     "count": 10, "yes_price": 42, "no_price": 58, "created_time": "2026-03-01T12:00:00Z"}
  ],
  "cursor": "next-page"
}`

const fillsPage2 = `{
  "fills": [
    {"trade_id": "t-2", "ticker": "KXBTC-26MAR01", "side": "no", "action": "sell",
     "count": 5, "yes_price": 40, "no_price": 60, "created_time": "2026-03-01T13:00:00Z"}
  ],
  "cursor": ""
}`

func TestFetchFills_FollowsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portfolio/fills", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "next-page" {
			fmt.Fprint(w, fillsPage2)
			return
		}
		fmt.Fprint(w, fillsPage1)
	}))
	defer srv.Close()

	client := kalshi.NewClient(srv.URL, "test-key")
	fills, err := client.FetchFills(context.Background())

	require.NoError(t, err)
	require.Len(t, fills, 2)
	assert.Equal(t, "t-1", fills[0].ID)
	assert.Equal(t, int64(42), fills[0].PriceCents)
	assert.Equal(t, "t-2", fills[1].ID)
	assert.Equal(t, int64(60), fills[1].PriceCents) // NO-side fill carries the NO price
}

func TestFetchFills_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := kalshi.NewClient(srv.URL, "test-key")
	_, err := client.FetchFills(context.Background())
	assert.Error(t, err)
}

func TestFetchFills_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, fillsPage2)
	}))
	defer srv.Close()

	client := kalshi.NewClient(srv.URL, "test-key")
	fills, err := client.FetchFills(context.Background())

	require.NoError(t, err)
	assert.Len(t, fills, 1)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestFetchSettlements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portfolio/settlements", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"settlements": [
			{"ticker": "KXHIGHNY-26MAR01", "market_result": "no",
			 "yes_count": 100, "yes_total_cost": 9708,
			 "no_count": 150, "no_total_cost": 15134,
			 "revenue": 0, "settled_time": "2026-03-02T00:00:00Z"}
		], "cursor": ""}`)
	}))
	defer srv.Close()

	client := kalshi.NewClient(srv.URL, "test-key")
	settlements, err := client.FetchSettlements(context.Background())

	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, int64(9708), settlements[0].YesTotalCostCents)
}

func TestFetchMarkPrices_SkipsFailedTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/markets/KXGOOD" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"market": {"ticker": "KXGOOD", "last_price": 63}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := kalshi.NewClient(srv.URL, "test-key")
	marks, err := client.FetchMarkPrices(context.Background(), []string{"KXGOOD", "KXGONE"})

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"KXGOOD": 63}, marks)
}
