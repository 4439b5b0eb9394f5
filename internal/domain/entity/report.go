package entity

import "strings"

// HistoryPoint is one merged date of a token history across wallets.
type HistoryPoint struct {
	Date             Date    `json:"date"`
	Balance          float64 `json:"balance"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentageChange"`
	Wallets          int     `json:"wallets"`
	Excluded         bool    `json:"excluded"`
}

// PriceTable maps token symbols to USD prices. Lookups are case-insensitive.
type PriceTable map[string]float64

// Price returns the USD price of symbol, or 0 when unknown.
func (p PriceTable) Price(symbol string) float64 {
	if v, ok := p[symbol]; ok {
		return v
	}
	for k, v := range p {
		if strings.EqualFold(k, symbol) {
			return v
		}
	}
	return 0
}

// Has reports whether symbol has a price.
func (p PriceTable) Has(symbol string) bool {
	if _, ok := p[symbol]; ok {
		return true
	}
	for k := range p {
		if strings.EqualFold(k, symbol) {
			return true
		}
	}
	return false
}

// TokenAPY is the per-token section of an APY report.
type TokenAPY struct {
	Token              string  `json:"token"`
	PriceUSD           float64 `json:"priceUSD"`
	CurrentBalance     float64 `json:"currentBalance"`
	CurrentBalanceUSD  float64 `json:"currentBalanceUSD"`
	TodayGainUSD       float64 `json:"todayGainUSD"`
	YesterdayGainUSD   float64 `json:"yesterdayGainUSD"`
	HistoricalGainsUSD float64 `json:"historicalGainsUSD"`
	GainDays           int     `json:"gainDays"`
	TodayAPY           float64 `json:"todayAPY"`
	YesterdayAPY       float64 `json:"yesterdayAPY"`
	AnnualAPY          float64 `json:"annualAPY"`
	DaysTracked        int     `json:"daysTracked"`
}

// APYData is the portfolio-wide section of an APY report.
type APYData struct {
	TodayAPY          float64 `json:"todayAPY"`
	YesterdayAPY      float64 `json:"yesterdayAPY"`
	AnnualAPY         float64 `json:"annualAPY"`
	TodayGainUSD      float64 `json:"todayGainUSD"`
	YesterdayGainUSD  float64 `json:"yesterdayGainUSD"`
	AvgDailyGainUSD   float64 `json:"avgDailyGainUSD"`
	GainDays          int     `json:"gainDays"`
	DaysTracked       int     `json:"daysTracked"`
	FirstTrackingDate *Date   `json:"firstTrackingDate,omitempty"`
	DaysSinceStart    int     `json:"daysSinceStart"`
}

// APYReport is the result of the APY calculator.
type APYReport struct {
	APYData                 APYData             `json:"apyData"`
	TokenAPYs               map[string]TokenAPY `json:"tokenAPYs"`
	TotalCurrentBalanceUSD  float64             `json:"totalCurrentBalanceUSD"`
	TotalHistoricalGainsUSD float64             `json:"totalHistoricalGainsUSD"`
	ETHPrice                float64             `json:"ethPrice"`
	Today                   Date                `json:"today"`
	Yesterday               Date                `json:"yesterday"`
}

// TokenGain is a token's contribution to one day's gains.
type TokenGain struct {
	Change  float64 `json:"change"`
	GainUSD float64 `json:"gainUSD"`
}

// DayGains is the USD gain of the selected wallets on one day.
type DayGains struct {
	Date         Date                 `json:"date"`
	TotalGainUSD float64              `json:"totalGainUSD"`
	TokenGains   map[string]TokenGain `json:"tokenGains"`
}

// DailyGainsReport covers today and yesterday.
type DailyGainsReport struct {
	Today     DayGains `json:"today"`
	Yesterday DayGains `json:"yesterday"`
	ETHPrice  float64  `json:"ethPrice"`
}

// Projection is one simulated year of compound growth.
type Projection struct {
	Year              int     `json:"year"`
	Balance           float64 `json:"balance"`
	AnnualGains       float64 `json:"annualGains"`
	TotalCashout      float64 `json:"totalCashout"`
	InflationBaseline float64 `json:"inflationBaseline"`
}

// ProjectionReport bundles a projection with the rates it was computed from.
type ProjectionReport struct {
	CurrentBalanceUSD float64      `json:"currentBalanceUSD"`
	TodayAPY          float64      `json:"todayAPY"`
	AnnualAPY         float64      `json:"annualAPY"`
	AnnualCashout     float64      `json:"annualCashout"`
	Projections       []Projection `json:"projections"`
}
