package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/kalshiledger/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implements ports.Reporter.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a reporter that writes to stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Report prints the summary in the configured mode.
func (c *Console) Report(_ context.Context, sum *domain.PnLSummary) error {
	if c.table {
		c.printFull(sum)
	} else {
		c.printCompact(sum)
	}
	return nil
}

// printCompact prints the essentials in one line.
func (c *Console) printCompact(sum *domain.PnLSummary) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] realized %s | closed %d (%dW/%dL)",
		now, dollars(sum.RealizedPnLCents),
		sum.ClosedTradeCount, sum.WinningCount, sum.LosingCount)

	if sum.OpenPositionCount > 0 {
		fmt.Fprintf(&sb, " | open %d", sum.OpenPositionCount)
	}
	if sum.OrphanCloseQuantitySkipped > 0 {
		fmt.Fprintf(&sb, " | orphans %d", sum.OrphanCloseQuantitySkipped)
	}
	if sum.UnknownCostBasisCount > 0 {
		fmt.Fprintf(&sb, " | basis? %d", sum.UnknownCostBasisCount)
	}
	if sum.Approximate() {
		sb.WriteString(" | APPROX")
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull prints the per-contract table plus the caveat lines.
func (c *Console) printFull(sum *domain.PnLSummary) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] realized P&L %s across %d contracts\n",
		now, dollars(sum.RealizedPnLCents), len(sum.PerContract))

	table := tablewriter.NewWriter(c.out)
	table.Header("Ticker", "Realized", "Settled", "Open", "Avg Cost", "Unrealized", "Flags")

	for _, cp := range sortedContracts(sum) {
		avgCost := "-"
		if cp.AvgOpenCostCents != nil {
			avgCost = fmt.Sprintf("%d¢", *cp.AvgOpenCostCents)
		} else if cp.OpenQuantity != 0 {
			avgCost = "unknown"
		}

		unrealized := "-"
		if cp.UnrealizedCents != nil {
			unrealized = dollars(*cp.UnrealizedCents)
		}

		table.Append(
			cp.Ticker,
			dollars(cp.RealizedCents),
			dollars(cp.SettlementCents),
			fmt.Sprintf("%d", cp.OpenQuantity),
			avgCost,
			unrealized,
			flagLabel(cp),
		)
	}

	table.Render()

	fmt.Fprintf(c.out, "  closed %d matches — %d wins (avg %s) / %d losses (avg %s)\n",
		sum.ClosedTradeCount,
		sum.WinningCount, dollars(sum.AvgWinCents),
		sum.LosingCount, dollars(sum.AvgLossCents))

	if sum.OrphanCloseQuantitySkipped > 0 {
		fmt.Fprintf(c.out, "  ⚠ %d close contracts had no matching open — P&L is approximate due to incomplete history\n",
			sum.OrphanCloseQuantitySkipped)
	}
	if sum.UnknownCostBasisCount > 0 {
		fmt.Fprintf(c.out, "  ⚠ cost basis unknown for %d contracts (position predates available history)\n",
			sum.UnknownCostBasisCount)
	}
}

func flagLabel(cp domain.ContractPnL) string {
	var flags []string
	if cp.OrphanCloseQuantity > 0 {
		flags = append(flags, fmt.Sprintf("orphan:%d", cp.OrphanCloseQuantity))
	}
	if cp.OpenQuantity != 0 && cp.AvgOpenCostCents == nil {
		flags = append(flags, "basis?")
	}
	if cp.Approximate && len(flags) == 0 {
		flags = append(flags, "approx")
	}
	if len(flags) == 0 {
		return ""
	}
	return strings.Join(flags, " ")
}

func sortedContracts(sum *domain.PnLSummary) []domain.ContractPnL {
	out := make([]domain.ContractPnL, 0, len(sum.PerContract))
	for _, cp := range sum.PerContract {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// dollars renders integer cents as a signed dollar amount.
func dollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
