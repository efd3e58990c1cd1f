package kalshi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// mapFill converts a raw API fill to a domain Trade. The fill carries both
// sides' prices; the trade's price is the one for the side actually traded.
func mapFill(rf rawFill) (domain.Trade, error) {
	side, err := mapSide(rf.Side)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("fill %s: %w", rf.TradeID, err)
	}

	var action domain.Action
	switch rf.Action {
	case "buy":
		action = domain.ActionBuy
	case "sell":
		action = domain.ActionSell
	default:
		return domain.Trade{}, fmt.Errorf("fill %s: action %q: %w", rf.TradeID, rf.Action, domain.ErrUnknownAction)
	}

	priceRaw := rf.YesPrice
	if side == domain.SideNo {
		priceRaw = rf.NoPrice
	}
	price, err := cents(priceRaw)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("fill %s: price: %w", rf.TradeID, err)
	}

	at, err := parseTime(rf.CreatedTime)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("fill %s: created_time: %w", rf.TradeID, err)
	}

	return domain.Trade{
		ID:         rf.TradeID,
		Ticker:     rf.Ticker,
		Side:       side,
		Action:     action,
		Quantity:   rf.Count,
		PriceCents: price,
		ExecutedAt: at,
	}, nil
}

func mapSettlement(rs rawSettlement) (domain.Settlement, error) {
	yesCost, err := cents(rs.YesTotalCost)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement %s: yes_total_cost: %w", rs.Ticker, err)
	}
	noCost, err := cents(rs.NoTotalCost)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement %s: no_total_cost: %w", rs.Ticker, err)
	}
	revenue, err := cents(rs.Revenue)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement %s: revenue: %w", rs.Ticker, err)
	}
	fee, err := optionalCents(rs.Fee)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement %s: fee: %w", rs.Ticker, err)
	}

	at, err := parseTime(rs.SettledTime)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement %s: settled_time: %w", rs.Ticker, err)
	}

	return domain.Settlement{
		Ticker:            rs.Ticker,
		Result:            domain.MarketResult(rs.MarketResult),
		YesCount:          rs.YesCount,
		NoCount:           rs.NoCount,
		YesTotalCostCents: yesCost,
		NoTotalCostCents:  noCost,
		RevenueCents:      revenue,
		FeeCents:          fee,
		SettledAt:         at,
	}, nil
}

func mapPosition(rp rawPosition) domain.ExternalPosition {
	realized, err := optionalCents(rp.RealizedPnL)
	if err != nil {
		realized = 0
	}
	return domain.ExternalPosition{
		Ticker:           rp.Ticker,
		Quantity:         rp.Position,
		RealizedPnLCents: realized,
	}
}

func mapSide(s string) (domain.Side, error) {
	switch s {
	case "yes":
		return domain.SideYes, nil
	case "no":
		return domain.SideNo, nil
	default:
		return "", fmt.Errorf("side %q: %w", s, domain.ErrUnknownSide)
	}
}

// cents decodes an integer-cents field that some endpoints serialize as a
// bare number and others as a decimal string.
func cents(n json.Number) (int64, error) {
	if n == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", n, err)
	}
	if f < 0 {
		return int64(f - 0.5), nil
	}
	return int64(f + 0.5), nil
}

// optionalCents treats a missing field as zero.
func optionalCents(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	return cents(n)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
