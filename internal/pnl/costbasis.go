package pnl

// roundHalfUpDiv divides num by den rounding half away from zero. Plain
// integer division truncates toward zero, which systematically understates
// averages: a mean of 3.5 cents must report 4, and a mean loss of -3.5 must
// report -4, not -3.
func roundHalfUpDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	neg := (num < 0) != (den < 0)
	if num < 0 {
		num = -num
	}
	if den < 0 {
		den = -den
	}
	q := (num + den/2) / den
	if neg {
		return -q
	}
	return q
}

// CostBasis is the weighted-average open cost of a contract's remaining
// position. Known is false on cold start: the exchange reports a non-zero
// position but no local trade history explains it. Callers must surface
// that distinctly; an unknown basis is never rendered as 0.
type CostBasis struct {
	AvgPriceCents int64
	Quantity      int64
	Known         bool
}

// ComputeCostBasis derives the weighted-average open price of the remaining
// lots, half-up: avg = round(Σ qty·price / Σ qty). externalQuantity is the
// exchange-reported position, consulted only when no local lots exist.
func ComputeCostBasis(open []Lot, externalQuantity int64) CostBasis {
	qty := totalQuantity(open)
	if qty == 0 {
		if externalQuantity != 0 {
			return CostBasis{Quantity: externalQuantity}
		}
		return CostBasis{Known: true}
	}
	return CostBasis{
		AvgPriceCents: roundHalfUpDiv(totalCost(open), qty),
		Quantity:      qty,
		Known:         true,
	}
}

// UnrealizedPnLCents values the remaining lots against a mark price. The
// exact lot cost is used instead of the rounded average, which is the same
// as rounding (mark − avg)·qty half-up but without compounding two
// roundings: mark·Σqty − Σ qty·price is already the exact figure.
func UnrealizedPnLCents(open []Lot, markPriceCents int64) int64 {
	return markPriceCents*totalQuantity(open) - totalCost(open)
}
