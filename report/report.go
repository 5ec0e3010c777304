// Package report computes and renders account status: current value and
// share per asset, compared against a configured target allocation.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dw-610/schwab-tracking-app/schwab"
)

var hundred = decimal.NewFromInt(100)

// Line is one row of the status report.
type Line struct {
	Asset   string
	Value   decimal.Decimal
	Percent decimal.Decimal // share of total, 0-100

	// Set when the report has targets.
	TargetPercent decimal.Decimal // desired share, 0-100
	TargetValue   decimal.Decimal // desired dollar value
	Delta         decimal.Decimal // target value minus current value
	Drift         decimal.Decimal // current percent minus target percent
}

// Report is the computed status of one account.
type Report struct {
	Total      decimal.Decimal
	Lines      []Line
	HasTargets bool
}

// Build computes a status report from an account snapshot. Targets map
// symbols to desired fractions of the account value; a nil map produces a
// values-only report. Cash is always the first line, pinned to a zero
// target, and every targeted symbol appears even when the account holds
// none of it.
func Build(values *schwab.AccountValues, targets map[string]decimal.Decimal) *Report {
	r := &Report{
		Total:      values.Total,
		HasTargets: targets != nil,
	}

	r.Lines = append(r.Lines, r.line("Cash", values.Cash, decimal.Zero))

	for _, symbol := range sortedAssets(values.Positions, targets) {
		value := values.Positions[symbol] // zero value for target-only symbols
		target := decimal.Zero
		if targets != nil {
			target = targets[symbol]
		}
		r.Lines = append(r.Lines, r.line(symbol, value, target))
	}

	return r
}

// line fills in the derived columns for one asset.
func (r *Report) line(asset string, value, targetFraction decimal.Decimal) Line {
	l := Line{Asset: asset, Value: value, Percent: percentOf(value, r.Total)}
	if r.HasTargets {
		l.TargetPercent = targetFraction.Mul(hundred)
		l.TargetValue = targetFraction.Mul(r.Total)
		l.Delta = l.TargetValue.Sub(value)
		l.Drift = l.Percent.Sub(l.TargetPercent)
	}
	return l
}

// percentOf returns part/total expressed as 0-100, zero when total is zero.
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// sortedAssets returns the union of held and targeted symbols in a stable
// order.
func sortedAssets(positions, targets map[string]decimal.Decimal) []string {
	seen := make(map[string]bool, len(positions)+len(targets))
	var assets []string
	for symbol := range positions {
		if !seen[symbol] {
			seen[symbol] = true
			assets = append(assets, symbol)
		}
	}
	for symbol := range targets {
		if !seen[symbol] {
			seen[symbol] = true
			assets = append(assets, symbol)
		}
	}
	sort.Strings(assets)
	return assets
}

// FloatTargets converts configured float fractions into decimal targets.
func FloatTargets(targets map[string]float64) map[string]decimal.Decimal {
	if targets == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(targets))
	for symbol, frac := range targets {
		out[symbol] = decimal.NewFromFloat(frac)
	}
	return out
}
