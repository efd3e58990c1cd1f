package pnl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUpDiv(t *testing.T) {
	assert.Equal(t, int64(6), roundHalfUpDiv(12, 2))
	assert.Equal(t, int64(2), roundHalfUpDiv(3, 2))   // 1.5 → 2, never 1
	assert.Equal(t, int64(4), roundHalfUpDiv(12, 3))  // exact
	assert.Equal(t, int64(3), roundHalfUpDiv(10, 3))  // 3.33 → 3
	assert.Equal(t, int64(-2), roundHalfUpDiv(-3, 2)) // magnitude rounds up
	assert.Equal(t, int64(-4), roundHalfUpDiv(-12, 3))
	assert.Equal(t, int64(0), roundHalfUpDiv(5, 0))
}

func TestComputeCostBasis_WeightedAverage(t *testing.T) {
	lots := []Lot{
		{Quantity: 3, PriceCents: 33},
		{Quantity: 2, PriceCents: 34},
	}
	cb := ComputeCostBasis(lots, 0)
	assert.True(t, cb.Known)
	assert.Equal(t, int64(5), cb.Quantity)
	assert.Equal(t, int64(33), cb.AvgPriceCents) // 167/5 = 33.4
}

func TestComputeCostBasis_HalfCentRoundsUp(t *testing.T) {
	lots := []Lot{
		{Quantity: 1, PriceCents: 33},
		{Quantity: 1, PriceCents: 34},
	}
	cb := ComputeCostBasis(lots, 0)
	assert.Equal(t, int64(34), cb.AvgPriceCents) // 33.5 → 34, not floor
}

func TestComputeCostBasis_ColdStartIsUnknown(t *testing.T) {
	// Exchange reports a position but no local history explains it: the
	// basis is unknown, never fabricated as zero.
	cb := ComputeCostBasis(nil, 25)
	assert.False(t, cb.Known)
	assert.Equal(t, int64(25), cb.Quantity)
}

func TestComputeCostBasis_FlatPosition(t *testing.T) {
	cb := ComputeCostBasis(nil, 0)
	assert.True(t, cb.Known)
	assert.Zero(t, cb.Quantity)
}

func TestUnrealizedPnL(t *testing.T) {
	lots := []Lot{
		{Quantity: 10, PriceCents: 40},
		{Quantity: 10, PriceCents: 60},
	}
	// mark 55: 55*20 - (400+600) = 100
	assert.Equal(t, int64(100), UnrealizedPnLCents(lots, 55))
	// mark 45: 900 - 1000 = -100
	assert.Equal(t, int64(-100), UnrealizedPnLCents(lots, 45))
	assert.Zero(t, UnrealizedPnLCents(nil, 55))
}
