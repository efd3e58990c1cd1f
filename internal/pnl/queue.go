package pnl

import "time"

// Lot is a quantity of contracts opened at one price, held until closed.
// Quantity never goes negative: a lot is either reduced or popped.
type Lot struct {
	Quantity   int64
	PriceCents int64
	OpenedAt   time.Time
}

// lotQueue is a FIFO of open lots. Index-based: pops advance head instead of
// reslicing, so a full match pass stays linear in the trade count. Lots are
// owned exclusively by their queue and dropped on full consumption.
type lotQueue struct {
	lots []Lot
	head int
}

func (q *lotQueue) push(l Lot) {
	q.lots = append(q.lots, l)
}

// oldest returns a pointer to the front lot, or nil when empty. The pointer
// stays valid until the next push or pop.
func (q *lotQueue) oldest() *Lot {
	if q.head >= len(q.lots) {
		return nil
	}
	return &q.lots[q.head]
}

func (q *lotQueue) pop() {
	if q.head < len(q.lots) {
		q.head++
	}
	// Compact once everything up front is consumed, so long histories with
	// many full closes do not pin the whole backing array.
	if q.head == len(q.lots) {
		q.lots = q.lots[:0]
		q.head = 0
	}
}

// remaining copies out the still-open lots in FIFO order.
func (q *lotQueue) remaining() []Lot {
	if q.head >= len(q.lots) {
		return nil
	}
	out := make([]Lot, len(q.lots)-q.head)
	copy(out, q.lots[q.head:])
	return out
}

// totalQuantity sums the remaining open quantity across lots.
func totalQuantity(lots []Lot) int64 {
	var n int64
	for _, l := range lots {
		n += l.Quantity
	}
	return n
}

// totalCost sums quantity × open price across lots, in cents.
func totalCost(lots []Lot) int64 {
	var c int64
	for _, l := range lots {
		c += l.Quantity * l.PriceCents
	}
	return c
}
