package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)

	cadenceMultipliers = map[string]decimal.Decimal{
		ledger.CadenceMonthly: decimal.NewFromInt(1),
		ledger.CadenceWeekly:  decimal.RequireFromString("4.33"),
		ledger.CadenceDaily:   decimal.RequireFromString("30.42"),
	}
)

// MonthlyEquivalent normalizes a plan amount to its monthly contribution.
// Unknown cadences contribute nothing.
func MonthlyEquivalent(cadence string, amount decimal.Decimal) decimal.Decimal {
	cadence = strings.ToUpper(strings.TrimSpace(cadence))
	if cadence == ledger.CadenceYearly {
		return amount.Div(twelve)
	}
	if m, ok := cadenceMultipliers[cadence]; ok {
		return amount.Mul(m)
	}
	return decimal.Zero
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// share returns part/total*100 rounded to places, or zero when total is zero.
func share(part, total decimal.Decimal, places int32) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(places)
}

// ==============================
// Matching
// ==============================

func classMatches(c FrequencyClass, t ledger.Transaction, d ledger.TransactionDetail) bool {
	switch c {
	case ClassOneTime:
		return d.Frequency == ledger.FrequencyOneTime
	case ClassRecurring:
		return d.Frequency >= ledger.FrequencyMonthly
	case ClassRecurringFirst:
		return d.Frequency == ledger.FrequencyMonthly && !t.IsRenewal()
	case ClassRecurringNext:
		return d.Frequency == ledger.FrequencyMonthly && t.IsRenewal()
	default:
		return true
	}
}

// lineMatches applies every line-level filter to one detail. All of them must
// hold on the same line.
func (f Filter) lineMatches(t ledger.Transaction, d ledger.TransactionDetail) bool {
	return f.Appeals.Contains(d.AppealID) &&
		f.Funds.ContainsPtr(d.FundID) &&
		classMatches(f.Class, t, d)
}

// Matches reports whether a transaction is reportable and passes the filter.
// Line filters use existence semantics: one matching detail is enough and the
// transaction still counts once.
func (f Filter) Matches(t ledger.Transaction, linker *ledger.Linker) bool {
	if !t.Reportable() || !f.Window.Contains(t.CreatedAt) {
		return false
	}
	if !f.PaymentTypes.Contains(t.PaymentMethod) {
		return false
	}
	if !f.Countries.Empty() {
		donor := linker.Resolve(t.DonorID, t.Email)
		if donor == nil || !f.Countries.Contains(donor.Country) {
			return false
		}
	}
	if f.hasLineFilter() {
		return predicate.Any(t.Details, func(d ledger.TransactionDetail) bool {
			return f.lineMatches(t, d)
		})
	}
	return true
}

// planMatches applies the appeal and fund filters to a recurring plan.
func (f Filter) planMatches(p ledger.Schedule) bool {
	return f.Appeals.ContainsPtr(p.AppealID) && f.Funds.ContainsPtr(p.FundID)
}

// ==============================
// Dataset
// ==============================

// dataset holds the filter-matching transactions of one request.
type dataset struct {
	filter Filter
	loc    *time.Location
	txns   []ledger.Transaction
	linker *ledger.Linker
}

func newDataset(f Filter, loc *time.Location, txns []ledger.Transaction, donors []ledger.Donor) *dataset {
	ds := &dataset{filter: f, loc: loc, linker: ledger.NewLinker(donors)}
	for _, t := range txns {
		if f.Matches(t, ds.linker) {
			ds.txns = append(ds.txns, t)
		}
	}
	return ds
}

func amountOf(t ledger.Transaction) decimal.Decimal {
	return decimal.NewFromFloat(t.TotalAmount)
}

// revenueSeries sums amount and counts distinct transactions per day.
func (ds *dataset) revenueSeries() Series {
	s := newDailySeries(ds.filter.Window)
	for _, t := range ds.txns {
		s.add(t.CreatedAt, ds.loc, amountOf(t), 1)
	}
	return s.points
}

// recurringShareSeries is the recurring percentage of revenue per day.
func (ds *dataset) recurringShareSeries() Series {
	totals := newDailySeries(ds.filter.Window)
	recurring := newDailySeries(ds.filter.Window)
	for _, t := range ds.txns {
		totals.add(t.CreatedAt, ds.loc, amountOf(t), 1)
		if t.MaxFrequency() >= ledger.FrequencyMonthly {
			recurring.add(t.CreatedAt, ds.loc, amountOf(t), 1)
		}
	}
	out := make(Series, len(totals.points))
	for i, p := range totals.points {
		out[i] = Point{Day: p.Day, Value: share(recurring.points[i].Value, p.Value, 1)}
	}
	return out
}

// ==============================
// Dimensions
// ==============================

type contribution struct {
	key    string
	label  string
	ref    uint
	amount decimal.Decimal
}

var frequencyLabels = map[int]string{
	ledger.FrequencyOneTime: "one-time",
	ledger.FrequencyMonthly: "monthly",
	ledger.FrequencyYearly:  "yearly",
	ledger.FrequencyDaily:   "daily",
	ledger.FrequencyWeekly:  "weekly",
}

// contributions splits a transaction into the groups of a dimension. Appeal and
// fund groups take the matching line amounts; other dimensions take the
// transaction total. A transaction appears at most once per group.
func (ds *dataset) contributions(t ledger.Transaction, dim Dimension) []contribution {
	switch dim {
	case DimensionAppeal, DimensionFund:
		byKey := make(map[string]*contribution)
		var order []string
		for _, d := range t.Details {
			if ds.filter.hasLineFilter() && !ds.filter.lineMatches(t, d) {
				continue
			}
			var c contribution
			if dim == DimensionAppeal {
				c = contribution{key: strconv.FormatUint(uint64(d.AppealID), 10), ref: d.AppealID}
			} else if d.FundID != nil {
				c = contribution{key: strconv.FormatUint(uint64(*d.FundID), 10), ref: *d.FundID}
			} else {
				c = contribution{key: "unallocated", label: "Unallocated"}
			}
			if prev, ok := byKey[c.key]; ok {
				prev.amount = prev.amount.Add(decimal.NewFromFloat(d.Amount))
				continue
			}
			c.amount = decimal.NewFromFloat(d.Amount)
			byKey[c.key] = &c
			order = append(order, c.key)
		}
		out := make([]contribution, 0, len(order))
		for _, k := range order {
			out = append(out, *byKey[k])
		}
		return out

	case DimensionCountry:
		c := contribution{key: "unknown", label: "Unknown", amount: amountOf(t)}
		if donor := ds.linker.Resolve(t.DonorID, t.Email); donor != nil && strings.TrimSpace(donor.Country) != "" {
			country := strings.ToUpper(strings.TrimSpace(donor.Country))
			c.key, c.label = country, country
		}
		return []contribution{c}

	case DimensionPaymentMethod:
		c := contribution{key: "unknown", label: "Unknown", amount: amountOf(t)}
		if m := strings.TrimSpace(t.PaymentMethod); m != "" {
			c.key, c.label = strings.ToLower(m), m
		}
		return []contribution{c}

	default:
		code := t.MaxFrequency()
		label, ok := frequencyLabels[code]
		if !ok {
			label = fmt.Sprintf("code %d", code)
		}
		return []contribution{{key: label, label: label, amount: amountOf(t)}}
	}
}

type group struct {
	key    string
	label  string
	ref    uint
	count  int64
	amount decimal.Decimal
}

// groups aggregates the window into the fixed set of active groups, ordered by
// total descending then key.
func (ds *dataset) groups(dim Dimension) []*group {
	byKey := make(map[string]*group)
	for _, t := range ds.txns {
		for _, c := range ds.contributions(t, dim) {
			g, ok := byKey[c.key]
			if !ok {
				g = &group{key: c.key, label: c.label, ref: c.ref, amount: decimal.Zero}
				byKey[c.key] = g
			}
			g.count++
			g.amount = g.amount.Add(c.amount)
		}
	}
	out := make([]*group, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].amount.Cmp(out[j].amount); c != 0 {
			return c > 0
		}
		return out[i].key < out[j].key
	})
	return out
}

// labelGroups fills appeal or fund names from the catalog lookup.
func labelGroups(groups []*group, dim Dimension, names ledger.Names) {
	prefix := "Appeal"
	if dim == DimensionFund {
		prefix = "Fund"
	}
	for _, g := range groups {
		if g.label != "" {
			continue
		}
		if name, ok := names[g.ref]; ok && name != "" {
			g.label = name
		} else {
			g.label = fmt.Sprintf("%s #%d", prefix, g.ref)
		}
	}
}

func groupRefs(groups []*group) []uint {
	refs := make([]uint, 0, len(groups))
	for _, g := range groups {
		if g.ref != 0 {
			refs = append(refs, g.ref)
		}
	}
	return refs
}

// groupSeries left-joins daily values of each active group onto the window.
func (ds *dataset) groupSeries(dim Dimension, groups []*group) map[string]*dailySeries {
	out := make(map[string]*dailySeries, len(groups))
	for _, g := range groups {
		out[g.key] = newDailySeries(ds.filter.Window)
	}
	for _, t := range ds.txns {
		for _, c := range ds.contributions(t, dim) {
			if s, ok := out[c.key]; ok {
				s.add(t.CreatedAt, ds.loc, c.amount, 1)
			}
		}
	}
	return out
}

// heatmap groups transactions by weekday (Monday=0) and hour.
func (ds *dataset) heatmap() []HeatmapCell {
	var counts [7][24]int64
	var sums [7][24]decimal.Decimal
	for _, t := range ds.txns {
		local := t.CreatedAt.In(ds.loc)
		day := (int(local.Weekday()) + 6) % 7
		hour := local.Hour()
		counts[day][hour]++
		sums[day][hour] = sums[day][hour].Add(amountOf(t))
	}
	cells := make([]HeatmapCell, 0, 7*24)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			cells = append(cells, HeatmapCell{
				Day:           day,
				Hour:          hour,
				DonationCount: counts[day][hour],
				TotalAmount:   money(sums[day][hour]),
			})
		}
	}
	return cells
}

// ==============================
// Recurring plans
// ==============================

// planBook holds valid plans that passed the appeal and fund filters.
type planBook struct {
	loc   *time.Location
	plans []ledger.Schedule
}

func newPlanBook(f Filter, loc *time.Location, schedules []ledger.Schedule) *planBook {
	b := &planBook{loc: loc}
	for _, p := range schedules {
		if p.Valid() && f.planMatches(p) {
			b.plans = append(b.plans, p)
		}
	}
	sort.SliceStable(b.plans, func(i, j int) bool { return b.plans[i].StartDate.Before(b.plans[j].StartDate) })
	return b
}

// startDay reads the plan's start as a calendar date in the report location.
func (b *planBook) startDay(p ledger.Schedule) time.Time {
	return predicate.CalendarDate(p.StartDate, b.loc)
}

// activeSeries carries active plans forward from their start day. Value is the
// monthly-equivalent sum and Count the number of plans, per day.
func (b *planBook) activeSeries(window predicate.DateRange) Series {
	days := Days(window)
	out := make(Series, len(days))
	next := 0
	total := decimal.Zero
	var count int64
	for i, day := range days {
		for next < len(b.plans) && !b.startDay(b.plans[next]).After(day) {
			p := b.plans[next]
			if p.Active() {
				total = total.Add(MonthlyEquivalent(p.Frequency, decimal.NewFromFloat(p.Amount)))
				count++
			}
			next++
		}
		out[i] = Point{Day: day, Value: total, Count: count}
	}
	return out
}

// activeAt returns the active plans started on or before day.
func (b *planBook) activeAt(day time.Time) []ledger.Schedule {
	var out []ledger.Schedule
	for _, p := range b.plans {
		if p.Active() && !b.startDay(p).After(day) {
			out = append(out, p)
		}
	}
	return out
}

// newPlanSeries counts valid plans per start day.
func (b *planBook) newPlanSeries(window predicate.DateRange) Series {
	s := newDailySeries(window)
	for _, p := range b.plans {
		s.addDay(b.startDay(p), decimal.NewFromInt(1), 1)
	}
	return s.points
}

// canceledSeries counts cancellation events per day. No dimensional filter applies.
func canceledSeries(window predicate.DateRange, loc *time.Location, events []ledger.CancellationEvent) Series {
	s := newDailySeries(window)
	for _, e := range events {
		s.add(e.CanceledAt, loc, decimal.NewFromInt(1), 1)
	}
	return s.points
}

type amountRange struct {
	label string
	lower decimal.Decimal
	upper *decimal.Decimal
}

func boundedRange(label string, lower, upper int64) amountRange {
	u := decimal.NewFromInt(upper)
	return amountRange{label: label, lower: decimal.NewFromInt(lower), upper: &u}
}

// distributionRanges are lower-inclusive and upper-exclusive.
var distributionRanges = []amountRange{
	boundedRange("$0-5", 0, 5),
	boundedRange("$5-11", 5, 11),
	boundedRange("$11-21", 11, 21),
	boundedRange("$21-50", 21, 50),
	{label: "$50+", lower: decimal.NewFromInt(50)},
}

func distribution(plans []ledger.Schedule) []DistributionRow {
	counts := make([]int64, len(distributionRanges))
	var total int64
	for _, p := range plans {
		mrr := MonthlyEquivalent(p.Frequency, decimal.NewFromFloat(p.Amount))
		for i, r := range distributionRanges {
			if mrr.LessThan(r.lower) {
				continue
			}
			if r.upper != nil && !mrr.LessThan(*r.upper) {
				continue
			}
			counts[i]++
			total++
			break
		}
	}
	rows := make([]DistributionRow, len(distributionRanges))
	for i, r := range distributionRanges {
		rows[i] = DistributionRow{
			RangeLabel: r.label,
			Count:      counts[i],
			Percentage: share(decimal.NewFromInt(counts[i]), decimal.NewFromInt(total), 2).InexactFloat64(),
		}
	}
	return rows
}

// ==============================
// Output shaping
// ==============================

// toTrend rounds a series at the boundary. Money metrics keep two places,
// share keeps one, counts are reported as whole numbers.
func toTrend(series Series, m Metric) []TrendPoint {
	out := make([]TrendPoint, len(series))
	for i, p := range series {
		tp := TrendPoint{Bucket: p.Day.Format(DateLayout), Count: p.Count}
		switch m {
		case MetricRevenue, MetricMRR:
			tp.Value = money(p.Value)
		case MetricRecurringShare:
			tp.Value = p.Value.Round(1).InexactFloat64()
		default:
			tp.Value = float64(p.Count)
		}
		out[i] = tp
	}
	return out
}

func toTable(groups []*group) []TableRow {
	rows := make([]TableRow, len(groups))
	for i, g := range groups {
		rows[i] = TableRow{
			Key:           g.key,
			Label:         g.label,
			DonationCount: g.count,
			TotalAmount:   money(g.amount),
		}
	}
	return rows
}
