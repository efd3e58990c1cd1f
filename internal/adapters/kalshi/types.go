package kalshi

import "encoding/json"

// Raw API payloads. Numeric money fields are integer cents on the wire but
// arrive as json.Number in a few older endpoints, so everything money-like
// is decoded defensively.

type rawFill struct {
	TradeID     string      `json:"trade_id"`
	Ticker      string      `json:"ticker"`
	OrderID     string      `json:"order_id"`
	Side        string      `json:"side"`
	Action      string      `json:"action"`
	Count       int64       `json:"count"`
	YesPrice    json.Number `json:"yes_price"`
	NoPrice     json.Number `json:"no_price"`
	CreatedTime string      `json:"created_time"`
}

type fillsResponse struct {
	Fills  []rawFill `json:"fills"`
	Cursor string    `json:"cursor"`
}

type rawSettlement struct {
	Ticker       string      `json:"ticker"`
	MarketResult string      `json:"market_result"`
	YesCount     int64       `json:"yes_count"`
	YesTotalCost json.Number `json:"yes_total_cost"`
	NoCount      int64       `json:"no_count"`
	NoTotalCost  json.Number `json:"no_total_cost"`
	Revenue      json.Number `json:"revenue"`
	Fee          json.Number `json:"fee"`
	SettledTime  string      `json:"settled_time"`
}

type settlementsResponse struct {
	Settlements []rawSettlement `json:"settlements"`
	Cursor      string          `json:"cursor"`
}

type rawPosition struct {
	Ticker      string      `json:"ticker"`
	Position    int64       `json:"position"`
	RealizedPnL json.Number `json:"realized_pnl"`
}

type positionsResponse struct {
	MarketPositions []rawPosition `json:"market_positions"`
	Cursor          string        `json:"cursor"`
}

type rawMarket struct {
	Ticker    string `json:"ticker"`
	LastPrice int64  `json:"last_price"`
}

type marketResponse struct {
	Market rawMarket `json:"market"`
}
