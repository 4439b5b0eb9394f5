package calc

import (
	"math"
	"sort"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// DaysPerYear is the compounding period count used for annualization.
const DaysPerYear = 365

// CalculateAPY compounds the daily return gainUSD/currentBalanceUSD over a
// year. Returns a percentage, or 0 for a non-positive balance or period.
func CalculateAPY(gainUSD, currentBalanceUSD float64, days int) float64 {
	if currentBalanceUSD <= 0 || days <= 0 {
		return 0
	}
	dailyReturn := gainUSD / currentBalanceUSD
	apy := (math.Pow(1+dailyReturn, DaysPerYear) - 1) * 100
	if math.IsNaN(apy) || math.IsInf(apy, 0) {
		return 0
	}
	return apy
}

type tokenGains struct {
	balance     float64
	today       float64
	yesterday   float64
	historical  float64
	gainDates   map[entity.Date]struct{}
	daysTracked int
}

// walkGains visits the compose-token series of the selected wallets. For every
// token it accumulates the latest balance and the changes of non-excluded entries
// after the baseline entry, which is the first non-excluded one.
func walkGains(
	wallets []entity.Wallet,
	selected []string,
	projects entity.ProjectIndex,
	today, yesterday entity.Date,
) (map[string]*tokenGains, *entity.Date) {
	acc := make(map[string]*tokenGains)
	var first *entity.Date

	for _, w := range entity.SelectWallets(wallets, selected) {
		for token, series := range w.Balances {
			if !projects.Composable(token) || len(series) == 0 {
				continue
			}
			g, ok := acc[token]
			if !ok {
				g = &tokenGains{gainDates: make(map[entity.Date]struct{})}
				acc[token] = g
			}

			sorted := series.Sorted()
			g.balance += sorted[len(sorted)-1].Balance
			if first == nil || sorted[0].Date < *first {
				d := sorted[0].Date
				first = &d
			}

			nonExcluded := 0
			for _, e := range sorted {
				if e.Excluded {
					continue
				}
				nonExcluded++
				if nonExcluded == 1 {
					continue
				}
				switch e.Date {
				case today:
					g.today += e.Change
				case yesterday:
					g.yesterday += e.Change
				}
				g.historical += e.Change
				g.gainDates[e.Date] = struct{}{}
			}
			if nonExcluded-1 > g.daysTracked {
				g.daysTracked = nonExcluded - 1
			}
		}
	}
	return acc, first
}

// ComputeAPY derives today's, yesterday's and the long-run annualized yield of
// the selected wallets, in total and per compose token, valued with prices.
//
// The long-run figure averages all historical gains over the distinct days that
// produced them and annualizes that average against the current balance.
func ComputeAPY(
	wallets []entity.Wallet,
	selected []string,
	projects entity.ProjectIndex,
	prices entity.PriceTable,
	today, yesterday entity.Date,
) entity.APYReport {
	acc, first := walkGains(wallets, selected, projects, today, yesterday)

	report := entity.APYReport{
		TokenAPYs: make(map[string]entity.TokenAPY, len(acc)),
		ETHPrice:  prices.Price("ETH"),
		Today:     today,
		Yesterday: yesterday,
	}

	var todayUSD, yesterdayUSD float64
	allGainDates := make(map[entity.Date]struct{})

	for _, token := range sortedKeys(acc) {
		g := acc[token]
		price := prices.Price(token)
		balanceUSD := g.balance * price

		t := entity.TokenAPY{
			Token:              token,
			PriceUSD:           price,
			CurrentBalance:     g.balance,
			CurrentBalanceUSD:  balanceUSD,
			TodayGainUSD:       g.today * price,
			YesterdayGainUSD:   g.yesterday * price,
			HistoricalGainsUSD: g.historical * price,
			GainDays:           len(g.gainDates),
			DaysTracked:        g.daysTracked,
		}
		t.TodayAPY = CalculateAPY(t.TodayGainUSD, balanceUSD, 1)
		t.YesterdayAPY = CalculateAPY(t.YesterdayGainUSD, balanceUSD, 1)
		if t.GainDays > 0 {
			t.AnnualAPY = CalculateAPY(t.HistoricalGainsUSD/float64(t.GainDays), balanceUSD, 1)
		}
		report.TokenAPYs[token] = t

		report.TotalCurrentBalanceUSD += balanceUSD
		report.TotalHistoricalGainsUSD += t.HistoricalGainsUSD
		todayUSD += t.TodayGainUSD
		yesterdayUSD += t.YesterdayGainUSD
		for d := range g.gainDates {
			allGainDates[d] = struct{}{}
		}
		if g.daysTracked > report.APYData.DaysTracked {
			report.APYData.DaysTracked = g.daysTracked
		}
	}

	data := &report.APYData
	data.TodayGainUSD = todayUSD
	data.YesterdayGainUSD = yesterdayUSD
	data.TodayAPY = CalculateAPY(todayUSD, report.TotalCurrentBalanceUSD, 1)
	data.YesterdayAPY = CalculateAPY(yesterdayUSD, report.TotalCurrentBalanceUSD, 1)
	data.GainDays = len(allGainDates)
	if data.GainDays > 0 {
		data.AvgDailyGainUSD = report.TotalHistoricalGainsUSD / float64(data.GainDays)
		data.AnnualAPY = CalculateAPY(data.AvgDailyGainUSD, report.TotalCurrentBalanceUSD, 1)
	}
	if first != nil {
		data.FirstTrackingDate = first
		if since := today.DaysSince(*first); since > 0 {
			data.DaysSinceStart = since
		}
	}
	return report
}

// DailyGains reports the USD gains of the selected wallets' compose tokens on
// today and yesterday. Excluded entries and baseline entries contribute nothing.
func DailyGains(
	wallets []entity.Wallet,
	selected []string,
	projects entity.ProjectIndex,
	prices entity.PriceTable,
	today, yesterday entity.Date,
) entity.DailyGainsReport {
	acc, _ := walkGains(wallets, selected, projects, today, yesterday)

	report := entity.DailyGainsReport{
		Today:     entity.DayGains{Date: today, TokenGains: map[string]entity.TokenGain{}},
		Yesterday: entity.DayGains{Date: yesterday, TokenGains: map[string]entity.TokenGain{}},
		ETHPrice:  prices.Price("ETH"),
	}
	for token, g := range acc {
		price := prices.Price(token)
		report.Today.TokenGains[token] = entity.TokenGain{Change: g.today, GainUSD: g.today * price}
		report.Yesterday.TokenGains[token] = entity.TokenGain{Change: g.yesterday, GainUSD: g.yesterday * price}
		report.Today.TotalGainUSD += g.today * price
		report.Yesterday.TotalGainUSD += g.yesterday * price
	}
	return report
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
