package pnl

// engine.go is the entry point of the reconciliation engine.
//
// Pure and synchronous: given a fixed ordered input the output is
// deterministic, bit for bit. Tickers are independent, so they run on a
// worker pool; within one ticker, trades are processed in a single fixed
// chronological order; that part is a sequencing contract and is never
// parallelized.

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
)

// Input is one reconciliation run's worth of facts. Trades must be supplied
// in arrival order: equal timestamps are processed in input order, which
// determines which lot is oldest.
type Input struct {
	Trades      []domain.Trade
	Settlements []domain.Settlement

	// Positions is the exchange-reported view, used only for cold-start
	// cost-basis detection and cross-checks.
	Positions []domain.ExternalPosition

	// MarkPricesCents maps ticker → current YES price, for unrealized P&L.
	// Optional; tickers without a mark simply get no unrealized figure.
	MarkPricesCents map[string]int64

	// Workers caps the per-ticker worker pool. <= 0 means NumCPU.
	Workers int
}

// Compute reconciles the full input into a PnLSummary. Structurally invalid
// input (bad quantity or price, duplicate settlements) rejects the whole run
// before any summary is produced.
func Compute(in Input) (*domain.PnLSummary, error) {
	settlements := make(map[string]*domain.Settlement, len(in.Settlements))
	for i := range in.Settlements {
		s := &in.Settlements[i]
		if _, dup := settlements[s.Ticker]; dup {
			return nil, fmt.Errorf("pnl.Compute: ticker %s: %w", s.Ticker, domain.ErrDuplicateSettlement)
		}
		settlements[s.Ticker] = s
	}

	positions := make(map[string]domain.ExternalPosition, len(in.Positions))
	for _, p := range in.Positions {
		positions[p.Ticker] = p
	}

	groups := make(map[string][]NormalizedTrade)
	for i, t := range in.Trades {
		nt, err := Normalize(t, i)
		if err != nil {
			return nil, fmt.Errorf("pnl.Compute: %w", err)
		}
		groups[t.Ticker] = append(groups[t.Ticker], nt)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			if !g[i].ExecutedAt.Equal(g[j].ExecutedAt) {
				return g[i].ExecutedAt.Before(g[j].ExecutedAt)
			}
			return g[i].seq < g[j].seq
		})
	}

	tickers := collectTickers(groups, settlements, positions)
	results := computeConcurrent(tickers, groups, settlements, positions, in.MarkPricesCents, in.Workers)

	sort.Slice(results, func(i, j int) bool { return results[i].ticker < results[j].ticker })
	return aggregate(results), nil
}

// computeTicker reconciles a single ticker: FIFO matching, then the
// settlement decision table, then cost basis for whatever stayed open.
func computeTicker(
	ticker string,
	trades []NormalizedTrade,
	settlement *domain.Settlement,
	position domain.ExternalPosition,
	markPrices map[string]int64,
) tickerResult {
	res := tickerResult{ticker: ticker}
	res.match = matchTicker(ticker, trades)
	res.settlement = ReconcileSettlement(settlement, len(trades) > 0, res.match.OpenLots)
	res.settled = settlement != nil

	if !res.settled {
		open := append(
			append([]Lot(nil), res.match.OpenLots[domain.SideYes]...),
			res.match.OpenLots[domain.SideNo]...,
		)
		res.basis = ComputeCostBasis(open, position.Quantity)
		if mark, ok := markPrices[ticker]; ok {
			res.markPrice = &mark
		}
	}
	return res
}

// computeConcurrent fans tickers out over a worker pool and collects the
// per-ticker results. Order of collection does not matter; the caller sorts.
func computeConcurrent(
	tickers []string,
	groups map[string][]NormalizedTrade,
	settlements map[string]*domain.Settlement,
	positions map[string]domain.ExternalPosition,
	markPrices map[string]int64,
	workers int,
) []tickerResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}
	if workers <= 1 {
		results := make([]tickerResult, 0, len(tickers))
		for _, tk := range tickers {
			results = append(results, computeTicker(tk, groups[tk], settlements[tk], positions[tk], markPrices))
		}
		return results
	}

	workCh := make(chan string, len(tickers))
	resultCh := make(chan tickerResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range workCh {
				resultCh <- computeTicker(tk, groups[tk], settlements[tk], positions[tk], markPrices)
			}
		}()
	}

	for _, tk := range tickers {
		workCh <- tk
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]tickerResult, 0, len(tickers))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// collectTickers returns the sorted union of tickers seen in any input. A
// position with no trades still matters: it is the cold-start case.
func collectTickers(
	groups map[string][]NormalizedTrade,
	settlements map[string]*domain.Settlement,
	positions map[string]domain.ExternalPosition,
) []string {
	seen := make(map[string]struct{}, len(groups))
	for tk := range groups {
		seen[tk] = struct{}{}
	}
	for tk := range settlements {
		seen[tk] = struct{}{}
	}
	for tk, p := range positions {
		if p.Quantity != 0 {
			seen[tk] = struct{}{}
		}
	}
	tickers := make([]string, 0, len(seen))
	for tk := range seen {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)
	return tickers
}
