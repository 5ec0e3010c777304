package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dw-610/schwab-tracking-app/schwab"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func snapshot(total, cash float64, positions map[string]float64) *schwab.AccountValues {
	v := &schwab.AccountValues{
		Total:     dec(total),
		Cash:      dec(cash),
		Positions: map[string]decimal.Decimal{},
	}
	for s, f := range positions {
		v.Positions[s] = dec(f)
	}
	return v
}

func findLine(t *testing.T, r *Report, asset string) Line {
	t.Helper()
	for _, l := range r.Lines {
		if l.Asset == asset {
			return l
		}
	}
	t.Fatalf("no line for asset %s", asset)
	return Line{}
}

func TestBuild_OnTargetZeroDrift(t *testing.T) {
	values := snapshot(10000, 0, map[string]float64{"STK": 8000, "BND": 2000})
	targets := map[string]decimal.Decimal{"STK": dec(0.8), "BND": dec(0.2)}

	r := Build(values, targets)
	require.True(t, r.HasTargets)

	stk := findLine(t, r, "STK")
	assert.True(t, stk.Percent.Equal(dec(80)), "percent %s", stk.Percent)
	assert.True(t, stk.TargetPercent.Equal(dec(80)))
	assert.True(t, stk.Drift.IsZero(), "drift %s", stk.Drift)
	assert.True(t, stk.Delta.IsZero(), "delta %s", stk.Delta)

	bnd := findLine(t, r, "BND")
	assert.True(t, bnd.Percent.Equal(dec(20)), "percent %s", bnd.Percent)
	assert.True(t, bnd.Drift.IsZero())
}

func TestBuild_Drift(t *testing.T) {
	values := snapshot(10000, 1000, map[string]float64{"STK": 9000})
	targets := map[string]decimal.Decimal{"STK": dec(0.8)}

	r := Build(values, targets)
	stk := findLine(t, r, "STK")

	// 90% held vs 80% target: drifted 10 points high, $1000 over.
	assert.True(t, stk.Percent.Equal(dec(90)))
	assert.True(t, stk.Drift.Equal(dec(10)), "drift %s", stk.Drift)
	assert.True(t, stk.Delta.Equal(dec(-1000)), "delta %s", stk.Delta)

	cash := r.Lines[0]
	assert.Equal(t, "Cash", cash.Asset)
	assert.True(t, cash.Percent.Equal(dec(10)))
	assert.True(t, cash.TargetPercent.IsZero())
}

func TestBuild_TargetOnlySymbol(t *testing.T) {
	values := snapshot(10000, 10000, nil)
	targets := map[string]decimal.Decimal{"VTI": dec(0.5)}

	r := Build(values, targets)
	vti := findLine(t, r, "VTI")

	assert.True(t, vti.Value.IsZero())
	assert.True(t, vti.TargetValue.Equal(dec(5000)))
	assert.True(t, vti.Delta.Equal(dec(5000)))
	assert.True(t, vti.Drift.Equal(dec(-50)))
}

func TestBuild_NoTargets(t *testing.T) {
	values := snapshot(5000, 1000, map[string]float64{"VTI": 4000})

	r := Build(values, nil)
	require.False(t, r.HasTargets)
	require.Len(t, r.Lines, 2)

	vti := findLine(t, r, "VTI")
	assert.True(t, vti.Percent.Equal(dec(80)))
	assert.True(t, vti.TargetValue.IsZero())
}

func TestBuild_ZeroTotal(t *testing.T) {
	values := snapshot(0, 0, map[string]float64{"VTI": 0})

	r := Build(values, nil)
	for _, l := range r.Lines {
		assert.True(t, l.Percent.IsZero(), "asset %s", l.Asset)
	}
}

func TestBuild_StableOrder(t *testing.T) {
	values := snapshot(100, 0, map[string]float64{"ZZZ": 50, "AAA": 50})

	r := Build(values, nil)
	require.Len(t, r.Lines, 3)
	assert.Equal(t, "Cash", r.Lines[0].Asset)
	assert.Equal(t, "AAA", r.Lines[1].Asset)
	assert.Equal(t, "ZZZ", r.Lines[2].Asset)
}

func TestFloatTargets(t *testing.T) {
	assert.Nil(t, FloatTargets(nil))

	got := FloatTargets(map[string]float64{"VTI": 0.8})
	assert.True(t, got["VTI"].Equal(dec(0.8)))
}

func TestFormat_WithTargets(t *testing.T) {
	values := snapshot(10000, 0, map[string]float64{"STK": 8000, "BND": 2000})
	targets := map[string]decimal.Decimal{"STK": dec(0.8), "BND": dec(0.2)}

	out := Format(Build(values, targets))

	assert.Contains(t, out, "│ Asset      Value     %   Tgt%    Target     Delta │")
	assert.Contains(t, out, "│ STK      8000.00  80.00%  80%   8000.00      0.00 │")
	assert.Contains(t, out, "│ BND      2000.00  20.00%  20%   2000.00      0.00 │")
	assert.Contains(t, out, "│ TOTAL   10000.00 100.00% 100%  10000.00      0.00 │")

	// Every rendered row has the same display width.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := len([]rune(lines[0]))
	for _, line := range lines[1:] {
		assert.Equal(t, want, len([]rune(line)), "line %q", line)
	}
}

func TestFormat_WithoutTargets(t *testing.T) {
	values := snapshot(5000, 1000, map[string]float64{"VTI": 4000})

	out := Format(Build(values, nil))

	assert.Contains(t, out, "│ Asset      Value     %   │")
	assert.Contains(t, out, "│ VTI      4000.00  80.00% │")
	assert.Contains(t, out, "│ Cash     1000.00  20.00% │")
	assert.Contains(t, out, "│ TOTAL    5000.00 100.00% │")
	assert.NotContains(t, out, "Tgt%")
}

func TestFormatAccounts(t *testing.T) {
	out := FormatAccounts([]AccountSummary{
		{Number: "123456", Value: dec(7500)},
		{Number: "789", Value: dec(2500)},
	})

	assert.Contains(t, out, "│ Account                   Value           Percent    │")
	assert.Contains(t, out, "│ 123456                    $     7500.00  ( 75.0%)    │")
	assert.Contains(t, out, "│ 789                       $     2500.00  ( 25.0%)    │")
	assert.Contains(t, out, "│ TOTAL                     $    10000.00  (100.0%)    │")
}
