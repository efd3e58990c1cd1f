package pnl

import "github.com/alejandrodnm/kalshiledger/internal/domain"

// tickerResult carries one ticker's reconciled figures into the fold.
type tickerResult struct {
	ticker     string
	match      MatchResult
	settlement SettlementOutcome
	settled    bool // a settlement record exists for this ticker
	basis      CostBasis
	markPrice  *int64 // YES-side mark, when available
}

// aggregate folds per-ticker results into one PnLSummary. Results must be in
// a fixed order (the engine sorts them by ticker) so repeated runs produce
// identical summaries.
func aggregate(results []tickerResult) *domain.PnLSummary {
	sum := &domain.PnLSummary{
		PerContract: make(map[string]domain.ContractPnL, len(results)),
	}

	var winTotal, lossTotal int64
	for _, r := range results {
		var realized int64
		for _, m := range r.match.Matches {
			p := m.PnLCents()
			realized += p
			sum.ClosedTradeCount++
			switch {
			case p > 0:
				sum.WinningCount++
				winTotal += p
			case p < 0:
				sum.LosingCount++
				lossTotal += p
			}
		}
		realized += r.settlement.ContributionCents

		c := domain.ContractPnL{
			Ticker:              r.ticker,
			RealizedCents:       realized,
			SettlementCents:     r.settlement.ContributionCents,
			ClosedMatches:       len(r.match.Matches),
			OrphanCloseQuantity: r.match.OrphanCloseQuantity,
			Approximate:         r.settlement.Ambiguous || r.match.OrphanCloseQuantity > 0,
		}

		// A settled ticker has no open position left: the settlement closed
		// whatever the matcher could not.
		if !r.settled {
			c.OpenQuantity = r.basis.Quantity
			if c.OpenQuantity != 0 {
				sum.OpenPositionCount++
				if r.basis.Known {
					avg := r.basis.AvgPriceCents
					c.AvgOpenCostCents = &avg
					if r.markPrice != nil {
						u := UnrealizedPnLCents(r.match.OpenLots[domain.SideYes], *r.markPrice) +
							UnrealizedPnLCents(r.match.OpenLots[domain.SideNo], invertPrice(*r.markPrice))
						c.UnrealizedCents = &u
					}
				} else {
					sum.UnknownCostBasisCount++
					c.Approximate = true
				}
			}
		}

		sum.RealizedPnLCents += realized
		sum.OrphanCloseQuantitySkipped += r.match.OrphanCloseQuantity
		sum.PerContract[r.ticker] = c
	}

	if sum.WinningCount > 0 {
		sum.AvgWinCents = roundHalfUpDiv(winTotal, int64(sum.WinningCount))
	}
	if sum.LosingCount > 0 {
		sum.AvgLossCents = roundHalfUpDiv(-lossTotal, int64(sum.LosingCount))
	}
	return sum
}
