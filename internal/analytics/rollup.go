package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reducer folds the days of one week into a single point.
type Reducer int

const (
	// SumRollup adds the days of the week. Used for additive metrics.
	SumRollup Reducer = iota
	// SnapshotRollup keeps the last day of the week. Used for point-in-time metrics.
	SnapshotRollup
)

// Rollup folds a daily series into the given week starts, normally
// Buckets(window, GranularityWeekly). Every week gets a point, in the order of
// weeks; days whose week is not listed are dropped.
func Rollup(daily Series, weeks []time.Time, r Reducer) Series {
	out := make(Series, len(weeks))
	last := make([]time.Time, len(weeks))
	seen := make([]bool, len(weeks))
	index := make(map[string]int, len(weeks))
	for i, ws := range weeks {
		out[i] = Point{Day: ws, Value: decimal.Zero}
		index[ws.Format(DateLayout)] = i
	}

	for _, p := range daily {
		i, ok := index[WeekStart(p.Day).Format(DateLayout)]
		if !ok {
			continue
		}
		switch r {
		case SnapshotRollup:
			if !seen[i] || !p.Day.Before(last[i]) {
				out[i].Value = p.Value
				out[i].Count = p.Count
				last[i] = p.Day
				seen[i] = true
			}
		default:
			out[i].Value = out[i].Value.Add(p.Value)
			out[i].Count += p.Count
		}
	}
	return out
}

// reducerFor decides how a metric rolls up into weeks.
func reducerFor(m Metric) Reducer {
	switch m {
	case MetricMRR, MetricRecurringShare, MetricActivePlans:
		return SnapshotRollup
	default:
		return SumRollup
	}
}
