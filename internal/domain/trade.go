package domain

import (
	"errors"
	"fmt"
	"time"
)

// Side is the outcome side of a binary contract.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Opposite returns the other outcome of the same contract.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Action is the literal direction of a fill.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Trade is one executed fill as reported by the exchange. Immutable input
// fact: prices are integer cents in [0,100], quantities are whole contracts.
type Trade struct {
	ID         string
	Ticker     string
	Side       Side
	Action     Action
	Quantity   int64
	PriceCents int64
	ExecutedAt time.Time
}

// Structurally invalid input aborts the whole reconciliation run. These
// indicate upstream data corruption, never something to clamp or drop.
var (
	ErrNonPositiveQuantity = errors.New("non-positive quantity")
	ErrPriceOutOfRange     = errors.New("price outside [0,100] cents")
	ErrUnknownSide         = errors.New("unknown side")
	ErrUnknownAction       = errors.New("unknown action")
	ErrDuplicateSettlement = errors.New("more than one settlement for ticker")
)

// Validate checks the structural invariants of a single fill.
func (t Trade) Validate() error {
	if t.Quantity <= 0 {
		return fmt.Errorf("trade %s: qty %d: %w", t.ID, t.Quantity, ErrNonPositiveQuantity)
	}
	if t.PriceCents < 0 || t.PriceCents > 100 {
		return fmt.Errorf("trade %s: price %d: %w", t.ID, t.PriceCents, ErrPriceOutOfRange)
	}
	if t.Side != SideYes && t.Side != SideNo {
		return fmt.Errorf("trade %s: side %q: %w", t.ID, t.Side, ErrUnknownSide)
	}
	if t.Action != ActionBuy && t.Action != ActionSell {
		return fmt.Errorf("trade %s: action %q: %w", t.ID, t.Action, ErrUnknownAction)
	}
	return nil
}

// MarketResult is how a market settled.
type MarketResult string

const (
	ResultYes    MarketResult = "yes"
	ResultNo     MarketResult = "no"
	ResultVoid   MarketResult = "void"
	ResultScalar MarketResult = "scalar"
)

// Settlement is the exchange's record of a market resolution: the forced
// closure of whatever positions survived to expiry. At most one per ticker.
type Settlement struct {
	Ticker            string
	Result            MarketResult
	YesCount          int64 // surviving YES contracts at settlement
	NoCount           int64 // surviving NO contracts at settlement
	YesTotalCostCents int64 // cost originally paid for the surviving YES contracts
	NoTotalCostCents  int64
	RevenueCents      int64 // payout received
	FeeCents          int64
	SettledAt         time.Time
}

// ExternalPosition is the exchange-reported position for a ticker. Used only
// as a cross-check and for cold-start detection, never as the primary
// computation source.
type ExternalPosition struct {
	Ticker           string
	Quantity         int64 // contracts currently held per the exchange
	RealizedPnLCents int64
}

// SyncRun records one fetch of account history from the exchange.
type SyncRun struct {
	ID              string
	StartedAt       time.Time
	FillCount       int
	SettlementCount int
}
