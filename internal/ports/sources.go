package ports

import (
	"context"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// TradeSource fetches the account's full fill history from the exchange.
// Implementations own pagination, rate limiting and retries.
type TradeSource interface {
	FetchFills(ctx context.Context) ([]domain.Trade, error)
}

// SettlementSource fetches the account's market settlement records.
type SettlementSource interface {
	FetchSettlements(ctx context.Context) ([]domain.Settlement, error)
}

// PositionSource fetches the exchange-reported open positions, used as a
// cross-check and for cold-start cost-basis detection.
type PositionSource interface {
	FetchPositions(ctx context.Context) ([]domain.ExternalPosition, error)
}

// MarketDataSource fetches current mark prices (YES side, cents) for a set
// of tickers.
type MarketDataSource interface {
	FetchMarkPrices(ctx context.Context, tickers []string) (map[string]int64, error)
}
