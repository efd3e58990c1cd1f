package reconcile_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/adapters/notify"
	"github.com/alejandrodnm/kalshiledger/internal/adapters/storage"
	"github.com/alejandrodnm/kalshiledger/internal/domain"
	"github.com/alejandrodnm/kalshiledger/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeExchange serves canned data in place of the API client.
type fakeExchange struct {
	fills       []domain.Trade
	settlements []domain.Settlement
	positions   []domain.ExternalPosition
	marks       map[string]int64
}

func (f *fakeExchange) FetchFills(context.Context) ([]domain.Trade, error) {
	return f.fills, nil
}

func (f *fakeExchange) FetchSettlements(context.Context) ([]domain.Settlement, error) {
	return f.settlements, nil
}

func (f *fakeExchange) FetchPositions(context.Context) ([]domain.ExternalPosition, error) {
	return f.positions, nil
}

func (f *fakeExchange) FetchMarkPrices(_ context.Context, tickers []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, tk := range tickers {
		if v, ok := f.marks[tk]; ok {
			out[tk] = v
		}
	}
	return out, nil
}

func TestService_SyncThenReport(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()

	exchange := &fakeExchange{
		fills: []domain.Trade{
			{ID: "f1", Ticker: "KXA", Side: domain.SideYes, Action: domain.ActionBuy,
				Quantity: 100, PriceCents: 50, ExecutedAt: t0},
			{ID: "f2", Ticker: "KXA", Side: domain.SideNo, Action: domain.ActionSell,
				Quantity: 100, PriceCents: 85, ExecutedAt: t0.Add(time.Minute)},
		},
		settlements: []domain.Settlement{{
			Ticker: "KXB", Result: domain.ResultNo,
			YesTotalCostCents: 9708, NoTotalCostCents: 15134, SettledAt: t0,
		}},
	}

	svc := reconcile.New(exchange, store, notify.NewConsoleWriter(io.Discard, false), 1)

	require.NoError(t, svc.Sync(context.Background()))

	sum, err := svc.Report(context.Background())
	require.NoError(t, err)

	// Cross-side close on KXA (-3500) plus settlement-only KXB (-24842).
	assert.Equal(t, int64(-28342), sum.RealizedPnLCents)
	assert.Zero(t, sum.OrphanCloseQuantitySkipped)
}

func TestService_SyncIsRerunnable(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()

	exchange := &fakeExchange{
		fills: []domain.Trade{
			{ID: "f1", Ticker: "KXA", Side: domain.SideYes, Action: domain.ActionBuy,
				Quantity: 10, PriceCents: 40, ExecutedAt: t0},
		},
	}

	svc := reconcile.New(exchange, store, notify.NewConsoleWriter(io.Discard, false), 1)

	require.NoError(t, svc.Sync(context.Background()))
	require.NoError(t, svc.Sync(context.Background()))

	sum, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.PerContract["KXA"].OpenQuantity)
}

func TestService_ColdStartPositionFlagged(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()

	exchange := &fakeExchange{
		positions: []domain.ExternalPosition{{Ticker: "KXOLD", Quantity: 25}},
		marks:     map[string]int64{"KXOLD": 60},
	}

	svc := reconcile.New(exchange, store, notify.NewConsoleWriter(io.Discard, false), 1)

	require.NoError(t, svc.Sync(context.Background()))
	sum, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.UnknownCostBasisCount)
	assert.Nil(t, sum.PerContract["KXOLD"].AvgOpenCostCents)
}
