package analytics

import (
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"github.com/shopspring/decimal"
)

// Point is one bucket of an internal series. Values keep full precision.
type Point struct {
	Day   time.Time
	Value decimal.Decimal
	Count int64
}

// Series is ordered by Day with no gaps.
type Series []Point

// Days lists every calendar day of the window in order.
func Days(window predicate.DateRange) []time.Time {
	days := make([]time.Time, 0, window.Days())
	for d := window.From; !d.After(window.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekStart returns the Monday that starts t's ISO week.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -offset)
}

// Buckets returns the bucket keys of the window: every day, or every distinct
// week start touched by the window.
func Buckets(window predicate.DateRange, g Granularity) []time.Time {
	days := Days(window)
	if g != GranularityWeekly {
		return days
	}
	weeks := make([]time.Time, 0, len(days)/7+2)
	for _, d := range days {
		ws := WeekStart(d)
		if len(weeks) == 0 || !weeks[len(weeks)-1].Equal(ws) {
			weeks = append(weeks, ws)
		}
	}
	return weeks
}

// dailySeries is a zero-filled series with one point per day of the window.
type dailySeries struct {
	points Series
	index  map[string]int
}

func newDailySeries(window predicate.DateRange) *dailySeries {
	days := Days(window)
	s := &dailySeries{
		points: make(Series, len(days)),
		index:  make(map[string]int, len(days)),
	}
	for i, d := range days {
		s.points[i] = Point{Day: d, Value: decimal.Zero}
		s.index[d.Format(DateLayout)] = i
	}
	return s
}

func (s *dailySeries) add(t time.Time, loc *time.Location, value decimal.Decimal, count int64) {
	s.addDay(t.In(loc), value, count)
}

// addDay adds to the point whose date equals day's own calendar date.
func (s *dailySeries) addDay(day time.Time, value decimal.Decimal, count int64) {
	i, ok := s.index[day.Format(DateLayout)]
	if !ok {
		return
	}
	s.points[i].Value = s.points[i].Value.Add(value)
	s.points[i].Count += count
}
