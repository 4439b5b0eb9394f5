package calc

import (
	"math"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

const (
	// ProjectionHorizonYears is the default projection length.
	ProjectionHorizonYears = 20
	// InflationRate is the fixed yearly rate of the inflation baseline.
	InflationRate = 0.02
)

// ProjectCompound simulates yearly growth of currentBalance at todayAPY
// (a percentage) for years 0 through horizonYears, withdrawing annualCashout
// after each year's growth when the balance exceeds it. annualAPY is carried
// into the report for display and does not affect the simulation.
func ProjectCompound(currentBalance, todayAPY, annualAPY, annualCashout float64, horizonYears int) entity.ProjectionReport {
	if horizonYears <= 0 {
		horizonYears = ProjectionHorizonYears
	}
	if annualCashout < 0 {
		annualCashout = 0
	}
	rate := todayAPY / 100

	report := entity.ProjectionReport{
		CurrentBalanceUSD: currentBalance,
		TodayAPY:          todayAPY,
		AnnualAPY:         annualAPY,
		AnnualCashout:     annualCashout,
		Projections:       make([]entity.Projection, 0, horizonYears+1),
	}

	for year := 0; year <= horizonYears; year++ {
		balance := grownBalance(currentBalance, rate, annualCashout, year)
		p := entity.Projection{
			Year:              year,
			Balance:           balance,
			TotalCashout:      annualCashout * float64(year),
			InflationBaseline: currentBalance * math.Pow(1+InflationRate, float64(year)),
		}
		if year > 0 {
			previous := grownBalance(currentBalance, rate, annualCashout, year-1)
			withdrawn := 0.0
			if balance > 0 {
				withdrawn = annualCashout
			}
			p.AnnualGains = balance + withdrawn - previous
		}
		report.Projections = append(report.Projections, p)
	}
	return report
}

// grownBalance applies years of growth then cashout to start. A cashout that
// would not leave a positive balance is skipped for that year.
func grownBalance(start, rate, cashout float64, years int) float64 {
	balance := start
	for y := 1; y <= years; y++ {
		balance *= 1 + rate
		if balance > cashout {
			balance -= cashout
		}
	}
	return balance
}
