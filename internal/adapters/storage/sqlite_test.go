package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/adapters/storage"
	"github.com/alejandrodnm/kalshiledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func makeFill(id, ticker string, at time.Time) domain.Trade {
	return domain.Trade{
		ID:         id,
		Ticker:     ticker,
		Side:       domain.SideYes,
		Action:     domain.ActionBuy,
		Quantity:   10,
		PriceCents: 42,
		ExecutedAt: at,
	}
}

func TestSQLiteStorage_SaveAndLoadFills(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	fills := []domain.Trade{
		makeFill("t-2", "KXA", t0.Add(time.Minute)),
		makeFill("t-1", "KXA", t0),
	}

	require.NoError(t, db.SaveFills(ctx, fills))

	loaded, err := db.LoadFills(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Chronological regardless of save order.
	assert.Equal(t, "t-1", loaded[0].ID)
	assert.Equal(t, "t-2", loaded[1].ID)
	assert.Equal(t, t0, loaded[0].ExecutedAt)
}

func TestSQLiteStorage_EqualTimestampsKeepInsertOrder(t *testing.T) {
	// Tie-break by first insertion: the engine's FIFO ordering contract.
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveFills(ctx, []domain.Trade{makeFill("first", "KXA", t0)}))
	require.NoError(t, db.SaveFills(ctx, []domain.Trade{makeFill("second", "KXA", t0)}))

	loaded, err := db.LoadFills(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].ID)
	assert.Equal(t, "second", loaded[1].ID)
}

func TestSQLiteStorage_ResyncIsIdempotent(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	fills := []domain.Trade{makeFill("t-1", "KXA", t0)}

	require.NoError(t, db.SaveFills(ctx, fills))
	require.NoError(t, db.SaveFills(ctx, fills))

	loaded, err := db.LoadFills(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestSQLiteStorage_Settlements(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	st := domain.Settlement{
		Ticker:            "KXHIGHNY-26MAR01",
		Result:            domain.ResultNo,
		YesCount:          100,
		NoCount:           150,
		YesTotalCostCents: 9708,
		NoTotalCostCents:  15134,
		SettledAt:         t0,
	}

	require.NoError(t, db.SaveSettlements(ctx, []domain.Settlement{st}))
	// Re-sync with updated figures overwrites, never duplicates.
	st.RevenueCents = 100
	require.NoError(t, db.SaveSettlements(ctx, []domain.Settlement{st}))

	loaded, err := db.LoadSettlements(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, domain.ResultNo, loaded[0].Result)
	assert.Equal(t, int64(100), loaded[0].RevenueCents)
	assert.Equal(t, int64(9708), loaded[0].YesTotalCostCents)
}

func TestSQLiteStorage_PositionsSnapshot(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SavePositions(ctx, []domain.ExternalPosition{
		{Ticker: "KXA", Quantity: 10, RealizedPnLCents: -350},
		{Ticker: "KXB", Quantity: 5},
	}))

	// A later snapshot replaces the earlier one.
	require.NoError(t, db.SavePositions(ctx, []domain.ExternalPosition{
		{Ticker: "KXA", Quantity: 8, RealizedPnLCents: -350},
	}))

	loaded, err := db.LoadPositions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(8), loaded[0].Quantity)
}

func TestSQLiteStorage_SummaryAndSyncRun(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.RecordSyncRun(ctx, domain.SyncRun{
		ID: "run-1", StartedAt: t0, FillCount: 2, SettlementCount: 1,
	}))

	sum := &domain.PnLSummary{
		RealizedPnLCents: -3500,
		ClosedTradeCount: 1,
		LosingCount:      1,
		AvgLossCents:     3500,
	}
	require.NoError(t, db.SaveSummary(ctx, "run-1", sum))
}

func TestSQLiteStorage_EmptyLoads(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	fills, err := db.LoadFills(ctx)
	require.NoError(t, err)
	assert.Empty(t, fills)

	settlements, err := db.LoadSettlements(ctx)
	require.NoError(t, err)
	assert.Empty(t, settlements)
}
