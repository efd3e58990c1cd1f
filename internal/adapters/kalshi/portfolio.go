package kalshi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// maxPages bounds cursor pagination so a broken cursor cannot loop forever.
// 50 pages × 1000 fills covers far more history than any account here has.
const maxPages = 50

// FetchFills retrieves the account's fill history, oldest-visible first
// within the API's ordering, following cursors until exhausted. Partial
// history is the caller's problem to flag, not ours to guess at.
func (c *Client) FetchFills(ctx context.Context) ([]domain.Trade, error) {
	var all []domain.Trade
	cursor := ""

	for page := 0; page < maxPages; page++ {
		q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp fillsResponse
		if err := c.get(ctx, "/portfolio/fills", q, &resp); err != nil {
			return nil, fmt.Errorf("kalshi.FetchFills: %w", err)
		}

		for _, rf := range resp.Fills {
			trade, err := mapFill(rf)
			if err != nil {
				return nil, fmt.Errorf("kalshi.FetchFills: %w", err)
			}
			all = append(all, trade)
		}

		slog.Debug("fetched fills page", "page", page, "count", len(resp.Fills), "total", len(all))

		if resp.Cursor == "" || len(resp.Fills) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	return all, nil
}

// FetchSettlements retrieves the account's settlement records.
func (c *Client) FetchSettlements(ctx context.Context) ([]domain.Settlement, error) {
	var all []domain.Settlement
	cursor := ""

	for page := 0; page < maxPages; page++ {
		q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp settlementsResponse
		if err := c.get(ctx, "/portfolio/settlements", q, &resp); err != nil {
			return nil, fmt.Errorf("kalshi.FetchSettlements: %w", err)
		}

		for _, rs := range resp.Settlements {
			s, err := mapSettlement(rs)
			if err != nil {
				return nil, fmt.Errorf("kalshi.FetchSettlements: %w", err)
			}
			all = append(all, s)
		}

		if resp.Cursor == "" || len(resp.Settlements) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	return all, nil
}

// FetchPositions retrieves the exchange's view of currently held positions.
func (c *Client) FetchPositions(ctx context.Context) ([]domain.ExternalPosition, error) {
	var all []domain.ExternalPosition
	cursor := ""

	for page := 0; page < maxPages; page++ {
		q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		var resp positionsResponse
		if err := c.get(ctx, "/portfolio/positions", q, &resp); err != nil {
			return nil, fmt.Errorf("kalshi.FetchPositions: %w", err)
		}

		for _, rp := range resp.MarketPositions {
			all = append(all, mapPosition(rp))
		}

		if resp.Cursor == "" || len(resp.MarketPositions) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	return all, nil
}

// FetchMarkPrices fetches the current YES last price for each ticker.
// Tickers that fail to fetch are skipped with a warning; a missing mark
// only costs an unrealized figure, never the realized computation.
func (c *Client) FetchMarkPrices(ctx context.Context, tickers []string) (map[string]int64, error) {
	marks := make(map[string]int64, len(tickers))
	for _, tk := range tickers {
		var resp marketResponse
		if err := c.get(ctx, "/markets/"+url.PathEscape(tk), nil, &resp); err != nil {
			slog.Warn("mark price fetch failed", "ticker", tk, "err", err)
			continue
		}
		marks[tk] = resp.Market.LastPrice
	}
	return marks, nil
}
