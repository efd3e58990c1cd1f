package ports

import (
	"context"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// Reporter presents a computed summary to the user.
type Reporter interface {
	// Report renders the summary. The console implementation prints a
	// compact line or a full per-contract table.
	Report(ctx context.Context, summary *domain.PnLSummary) error
}
