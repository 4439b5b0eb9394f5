package calc

import (
	"sort"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
)

// AggregatedBalances sums the latest balance of every compose token across the
// selected wallets. Tokens without a compose contract in the catalog are left out.
// An empty selection means every wallet.
func AggregatedBalances(wallets []entity.Wallet, selected []string, projects entity.ProjectIndex) map[string]float64 {
	totals := make(map[string]float64)
	for _, w := range entity.SelectWallets(wallets, selected) {
		for token, series := range w.Balances {
			if !projects.Composable(token) {
				continue
			}
			latest, ok := series.Latest()
			if !ok {
				continue
			}
			totals[token] += latest.Balance
		}
	}
	return totals
}

// TokenHistory merges the selected wallets' series for token by date, newest first.
//
// Balances are summed for every entry. Changes are summed from non-excluded
// entries only. PercentageChange is then recomputed on the merged totals against
// the preceding merged date.
func TokenHistory(wallets []entity.Wallet, selected []string, token string) []entity.HistoryPoint {
	byDate := make(map[entity.Date]*entity.HistoryPoint)
	for _, w := range entity.SelectWallets(wallets, selected) {
		for _, e := range w.Series(token) {
			p, ok := byDate[e.Date]
			if !ok {
				p = &entity.HistoryPoint{Date: e.Date}
				byDate[e.Date] = p
			}
			p.Balance += e.Balance
			p.Wallets++
			if e.Excluded {
				p.Excluded = true
				continue
			}
			p.Change += e.Change
		}
	}

	points := make([]entity.HistoryPoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	for i := range points {
		if i == 0 {
			points[i].PercentageChange = 0
			continue
		}
		points[i].PercentageChange = percentOf(points[i].Change, points[i-1].Balance)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}
