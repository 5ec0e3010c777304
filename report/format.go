package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders a report as a box-drawn table for the console. With
// targets the columns are Asset, Value, %, Tgt%, Target, Delta; without,
// just Asset, Value and %.
func Format(r *Report) string {
	var b strings.Builder

	width := 26
	if r.HasTargets {
		width = 51
	}
	rule := strings.Repeat("─", width)

	b.WriteString("┌" + rule + "┐\n")
	if r.HasTargets {
		b.WriteString("│ Asset      Value     %   Tgt%    Target     Delta │\n")
	} else {
		b.WriteString("│ Asset      Value     %   │\n")
	}
	b.WriteString("├" + rule + "┤\n")

	for _, l := range r.Lines {
		b.WriteString(formatLine(r, l))
	}

	b.WriteString("├" + rule + "┤\n")
	total := Line{
		Asset:   "TOTAL",
		Value:   r.Total,
		Percent: hundred,
	}
	if r.HasTargets {
		total.TargetPercent = hundred
		total.TargetValue = r.Total
	}
	b.WriteString(formatLine(r, total))
	b.WriteString("└" + rule + "┘\n")

	return b.String()
}

func formatLine(r *Report, l Line) string {
	if r.HasTargets {
		return fmt.Sprintf("│ %-6s%10.2f%7.2f%%%4.0f%%%10.2f%10.2f │\n",
			l.Asset,
			l.Value.InexactFloat64(),
			l.Percent.InexactFloat64(),
			l.TargetPercent.InexactFloat64(),
			l.TargetValue.InexactFloat64(),
			l.Delta.InexactFloat64())
	}
	return fmt.Sprintf("│ %-6s%10.2f%7.2f%% │\n",
		l.Asset,
		l.Value.InexactFloat64(),
		l.Percent.InexactFloat64())
}

// AccountSummary is one row of the all-accounts overview.
type AccountSummary struct {
	Number string
	Value  decimal.Decimal
}

// FormatAccounts renders the all-accounts overview: each account's total
// value and its share of the combined total.
func FormatAccounts(accounts []AccountSummary) string {
	var b strings.Builder

	grand := decimal.Zero
	for _, a := range accounts {
		grand = grand.Add(a.Value)
	}

	rule := strings.Repeat("─", 54)
	b.WriteString("┌" + rule + "┐\n")
	b.WriteString("│ Account                   Value           Percent    │\n")
	b.WriteString("├" + rule + "┤\n")

	for _, a := range accounts {
		pct := percentOf(a.Value, grand)
		b.WriteString(fmt.Sprintf("│ %-24s  $%12.2f  (%5.1f%%)    │\n",
			a.Number, a.Value.InexactFloat64(), pct.InexactFloat64()))
	}

	b.WriteString("├" + rule + "┤\n")
	b.WriteString(fmt.Sprintf("│ %-24s  $%12.2f  (100.0%%)    │\n", "TOTAL", grand.InexactFloat64()))
	b.WriteString("└" + rule + "┘\n")

	return b.String()
}
