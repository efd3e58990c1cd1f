package pnl

import "github.com/alejandrodnm/kalshiledger/internal/domain"

// ClosedLotMatch is one matched close against one lot (or a split of one).
// Side is the reference outcome whose queue held the lot, which for a
// cross-side close differs from the literal side traded.
type ClosedLotMatch struct {
	Ticker          string
	Side            domain.Side
	Quantity        int64
	OpenPriceCents  int64
	ClosePriceCents int64
}

// PnLCents is the realized contribution of this match.
func (m ClosedLotMatch) PnLCents() int64 {
	return (m.ClosePriceCents - m.OpenPriceCents) * m.Quantity
}

// MatchResult is everything the matcher learned about one ticker. OpenLots
// is passed explicitly to the settlement reconciler, whose double-count rule
// needs to know whether any lots survived matching.
type MatchResult struct {
	Matches             []ClosedLotMatch
	OpenLots            map[domain.Side][]Lot
	OrphanCloseQuantity int64
}

// OpenQuantity is the total open quantity left across both sides.
func (r MatchResult) OpenQuantity() int64 {
	return totalQuantity(r.OpenLots[domain.SideYes]) + totalQuantity(r.OpenLots[domain.SideNo])
}

// pendingCross is close quantity the literal-side queue could not absorb,
// queued for the cross-side pass. Kept in stream order.
type pendingCross struct {
	side       domain.Side // queue to close against (opposite of the literal side)
	quantity   int64
	priceCents int64 // already inverted
}

// matchTicker runs FIFO matching over one ticker's normalized trades, which
// must already be in chronological order with arrival-order tie-break.
//
// Two passes. Pass one walks the stream once: opens push a lot onto their
// side's queue, closes consume their literal side's queue oldest-first.
// Quantity a close could not match is held back rather than discarded: a
// sell of one outcome is economically a close of the other, so pass two
// retries each held-back remainder, in stream order, as a close at the
// inverted price against the opposite queue. Whatever survives both passes
// is an orphan close: incomplete history, counted and skipped, never an
// error.
func matchTicker(ticker string, trades []NormalizedTrade) MatchResult {
	queues := map[domain.Side]*lotQueue{
		domain.SideYes: {},
		domain.SideNo:  {},
	}

	res := MatchResult{OpenLots: make(map[domain.Side][]Lot, 2)}
	var crosses []pendingCross

	for _, nt := range trades {
		switch nt.Action {
		case ActionOpen:
			queues[nt.Side].push(Lot{
				Quantity:   nt.Quantity,
				PriceCents: nt.PriceCents,
				OpenedAt:   nt.ExecutedAt,
			})
		case ActionClose:
			left := consume(queues[nt.Side], ticker, nt.Side, nt.PriceCents, nt.Quantity, &res.Matches)
			if left > 0 {
				crosses = append(crosses, pendingCross{
					side:       nt.Side.Opposite(),
					quantity:   left,
					priceCents: invertPrice(nt.PriceCents),
				})
			}
		}
	}

	for _, pc := range crosses {
		left := consume(queues[pc.side], ticker, pc.side, pc.priceCents, pc.quantity, &res.Matches)
		res.OrphanCloseQuantity += left
	}

	res.OpenLots[domain.SideYes] = queues[domain.SideYes].remaining()
	res.OpenLots[domain.SideNo] = queues[domain.SideNo].remaining()
	return res
}

// consume closes quantity against the queue oldest-lot-first, emitting one
// match per consumed lot (or lot fragment). Returns the quantity the queue
// could not cover.
func consume(q *lotQueue, ticker string, side domain.Side, closePrice, quantity int64, out *[]ClosedLotMatch) int64 {
	for quantity > 0 {
		lot := q.oldest()
		if lot == nil {
			return quantity
		}

		matched := lot.Quantity
		if matched > quantity {
			matched = quantity
		}

		*out = append(*out, ClosedLotMatch{
			Ticker:          ticker,
			Side:            side,
			Quantity:        matched,
			OpenPriceCents:  lot.PriceCents,
			ClosePriceCents: closePrice,
		})

		quantity -= matched
		lot.Quantity -= matched
		if lot.Quantity == 0 {
			q.pop()
		}
	}
	return 0
}
