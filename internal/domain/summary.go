package domain

// ContractPnL is the reconciled result for a single ticker.
type ContractPnL struct {
	Ticker string

	// RealizedCents includes both fill-matched P&L and the settlement
	// contribution (SettlementCents breaks the latter out).
	RealizedCents   int64
	SettlementCents int64
	ClosedMatches   int

	// Remaining open position after matching and settlement reconciliation.
	// AvgOpenCostCents is nil when the cost basis is unknown (position
	// predates available trade history), never rendered as 0.
	OpenQuantity     int64
	AvgOpenCostCents *int64
	UnrealizedCents  *int64 // nil without a mark price or a known basis

	// Approximate is set when the figure relies on a documented
	// approximation: orphan closes were skipped, or a settlement had to be
	// attributed across open lots on both sides.
	Approximate         bool
	OrphanCloseQuantity int64
}

// PnLSummary is the aggregate output of one reconciliation run. Produced
// fresh on every invocation; callers persist it if they want history.
type PnLSummary struct {
	RealizedPnLCents int64

	// Win/loss statistics at closed-lot-match granularity. Break-even
	// matches count toward ClosedTradeCount only.
	ClosedTradeCount int
	WinningCount     int
	LosingCount      int
	AvgWinCents      int64 // half-up mean of winning matches
	AvgLossCents     int64 // half-up mean magnitude of losing matches

	// Degradation counters: non-zero means the figure is approximate due to
	// incomplete upstream history, never hidden.
	OrphanCloseQuantitySkipped int64
	UnknownCostBasisCount      int
	OpenPositionCount          int

	PerContract map[string]ContractPnL
}

// Approximate reports whether any part of the summary rests on incomplete
// history or ambiguous settlement attribution.
func (s *PnLSummary) Approximate() bool {
	if s.OrphanCloseQuantitySkipped > 0 || s.UnknownCostBasisCount > 0 {
		return true
	}
	for _, c := range s.PerContract {
		if c.Approximate {
			return true
		}
	}
	return false
}
