package pnl

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// EffectiveAction is the canonical action of a normalized trade. A closed
// two-value variant so the matcher's switch is exhaustively checked.
type EffectiveAction int

const (
	// ActionOpen is a literal buy of the reference outcome.
	ActionOpen EffectiveAction = iota
	// ActionClose is a literal sell of the reference outcome.
	ActionClose
)

// NormalizedTrade is a trade rewritten onto one reference outcome. The seq
// field preserves arrival order and breaks timestamp ties. Which lot counts
// as "oldest" depends on it, so it is load-bearing for reproducibility.
type NormalizedTrade struct {
	Side       domain.Side
	Action     EffectiveAction
	Quantity   int64
	PriceCents int64
	ExecutedAt time.Time
	seq        int
}

// Normalize rewrites a literal fill as an open/close on its literal side:
// buy → open, sell → close, at the literal price. Cross-side reinterpretation
// (a sell of NO closing a YES position at 100-price) is not decided here; it
// depends on queue state, so the matcher applies it to whatever quantity the
// literal-side queue could not absorb.
func Normalize(t domain.Trade, seq int) (NormalizedTrade, error) {
	if err := t.Validate(); err != nil {
		return NormalizedTrade{}, fmt.Errorf("pnl.Normalize: %w", err)
	}

	action := ActionOpen
	if t.Action == domain.ActionSell {
		action = ActionClose
	}

	return NormalizedTrade{
		Side:       t.Side,
		Action:     action,
		Quantity:   t.Quantity,
		PriceCents: t.PriceCents,
		ExecutedAt: t.ExecutedAt,
		seq:        seq,
	}, nil
}

// invertPrice maps a price onto the opposite outcome. The two outcomes of a
// binary contract always sum to 100 cents.
func invertPrice(cents int64) int64 {
	return 100 - cents
}
