package calc

import "github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"

// Recalculate returns series sorted by date with Change and PercentageChange
// derived from the previous non-excluded entry.
//
// Excluded entries carry zero change. The first non-excluded entry takes its
// own balance as change (baseline from zero). When two entries share a date
// the later one in the input wins.
func Recalculate(series entity.TokenSeries) entity.TokenSeries {
	out, _ := Normalize(series)
	return out
}

// Normalize is Recalculate that also reports the dates of dropped duplicates.
func Normalize(series entity.TokenSeries) (entity.TokenSeries, []entity.Date) {
	sorted := series.Sorted()
	out := make(entity.TokenSeries, 0, len(sorted))
	var duplicates []entity.Date
	for _, e := range sorted {
		if n := len(out); n > 0 && out[n-1].Date == e.Date {
			out[n-1] = e
			duplicates = append(duplicates, e.Date)
			continue
		}
		out = append(out, e)
	}

	last := -1
	for i := range out {
		e := &out[i]
		if e.Excluded {
			e.Change = 0
			e.PercentageChange = 0
			continue
		}
		if last < 0 {
			e.Change = e.Balance
			e.PercentageChange = 0
		} else {
			prev := out[last].Balance
			e.Change = e.Balance - prev
			e.PercentageChange = percentOf(e.Change, prev)
		}
		last = i
	}
	return out, duplicates
}

// percentOf returns change as a percentage of base, or 0 for a non-positive base.
func percentOf(change, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return change / base * 100
}
