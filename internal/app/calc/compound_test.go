package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCompound_NoCashout(t *testing.T) {
	report := ProjectCompound(1000, 10, 4, 0, ProjectionHorizonYears)
	require.Len(t, report.Projections, 21)
	assert.InDelta(t, 4, report.AnnualAPY, 1e-9)

	first := report.Projections[0]
	assert.Equal(t, 0, first.Year)
	assert.InDelta(t, 1000, first.Balance, 1e-9)
	assert.Zero(t, first.AnnualGains)
	assert.Zero(t, first.TotalCashout)
	assert.InDelta(t, 1000, first.InflationBaseline, 1e-9)

	for _, p := range report.Projections {
		assert.InDelta(t, 1000*math.Pow(1.1, float64(p.Year)), p.Balance, 1e-6)
		assert.InDelta(t, 1000*math.Pow(1.02, float64(p.Year)), p.InflationBaseline, 1e-6)
	}
	assert.InDelta(t, 110, report.Projections[2].AnnualGains, 1e-6)
}

func TestProjectCompound_WithCashout(t *testing.T) {
	report := ProjectCompound(1000, 10, 0, 50, 3)
	require.Len(t, report.Projections, 4)

	assert.InDelta(t, 1050, report.Projections[1].Balance, 1e-9)
	assert.InDelta(t, 100, report.Projections[1].AnnualGains, 1e-9)
	assert.InDelta(t, 1105, report.Projections[2].Balance, 1e-9)
	assert.InDelta(t, 105, report.Projections[2].AnnualGains, 1e-9)
	assert.InDelta(t, 100, report.Projections[2].TotalCashout, 1e-9)
	assert.InDelta(t, 1040.4, report.Projections[2].InflationBaseline, 1e-9)
}

func TestProjectCompound_CashoutNeverDrivesBalanceNegative(t *testing.T) {
	report := ProjectCompound(100, 10, 0, 1000, 5)
	for _, p := range report.Projections {
		assert.GreaterOrEqual(t, p.Balance, 0.0)
	}
	assert.InDelta(t, 110, report.Projections[1].Balance, 1e-9, "cashout larger than balance is skipped")
	assert.InDelta(t, 121, report.Projections[2].Balance, 1e-9)
}

func TestProjectCompound_Defaults(t *testing.T) {
	report := ProjectCompound(10, 0, 0, -5, 0)
	require.Len(t, report.Projections, ProjectionHorizonYears+1)
	assert.Zero(t, report.AnnualCashout)
	for _, p := range report.Projections {
		assert.InDelta(t, 10, p.Balance, 1e-9)
	}
}
