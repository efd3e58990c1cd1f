package pnl

import "github.com/alejandrodnm/kalshiledger/internal/domain"

// SettlementOutcome is the reconciler's contribution for one ticker.
type SettlementOutcome struct {
	ContributionCents int64
	// Ambiguous is set when open lots existed on both sides at settlement
	// and the contribution had to be attributed proportionally to each
	// side's uncovered cost. A documented approximation, surfaced rather
	// than silently resolved.
	Ambiguous bool
}

// ReconcileSettlement decides how much of a settlement's P&L is not already
// represented by matched fills. This is the double-count guard: a settlement
// and the fills that preceded it describe the same economic events, so the
// settlement contributes at most once and never on top of a ticker whose
// lots the matcher fully closed.
//
//   - no settlement: zero, the position just stays open in the summary
//   - settlement but no trade history at all: the settlement is the only
//     record, so it contributes in full
//   - trades exist and nothing stayed open: zero
//   - trades exist and lots stayed open: only the uncovered remainder
//     contributes, prorated from the settlement's cost/revenue fields
func ReconcileSettlement(s *domain.Settlement, hadTrades bool, open map[domain.Side][]Lot) SettlementOutcome {
	if s == nil {
		return SettlementOutcome{}
	}

	if !hadTrades {
		return SettlementOutcome{
			ContributionCents: s.RevenueCents - s.YesTotalCostCents - s.NoTotalCostCents - s.FeeCents,
		}
	}

	openYes := open[domain.SideYes]
	openNo := open[domain.SideNo]
	qtyYes := totalQuantity(openYes)
	qtyNo := totalQuantity(openNo)
	if qtyYes == 0 && qtyNo == 0 {
		// Fully represented by matched trade history.
		return SettlementOutcome{}
	}

	uncovered := uncoveredCost(s.YesTotalCostCents, s.YesCount, openYes) +
		uncoveredCost(s.NoTotalCostCents, s.NoCount, openNo)

	settledCost := s.YesTotalCostCents + s.NoTotalCostCents
	revenue := s.RevenueCents
	fee := s.FeeCents
	if settledCost > 0 {
		revenue = roundHalfUpDiv(s.RevenueCents*uncovered, settledCost)
		fee = roundHalfUpDiv(s.FeeCents*uncovered, settledCost)
	}

	return SettlementOutcome{
		ContributionCents: revenue - uncovered - fee,
		Ambiguous:         qtyYes > 0 && qtyNo > 0,
	}
}

// uncoveredCost prorates one side's settlement-reported cost down to the
// quantity the matcher left open. When the settlement reports no surviving
// holders for the side (history and settlement disagree), the cost recorded
// in our own lots is the best available figure.
func uncoveredCost(sideCostCents, sideCount int64, open []Lot) int64 {
	openQty := totalQuantity(open)
	if openQty == 0 {
		return 0
	}
	if sideCount <= 0 {
		return totalCost(open)
	}
	if openQty > sideCount {
		openQty = sideCount
	}
	return roundHalfUpDiv(sideCostCents*openQty, sideCount)
}
