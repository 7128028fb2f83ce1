package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service computes reports over the ledger. Every call runs under the
// configured timeout and either returns a complete result or an error.
type Service interface {
	Trend(ctx context.Context, f Filter, metric Metric) ([]TrendPoint, error)
	Breakdown(ctx context.Context, f Filter, dim Dimension) ([]TableRow, error)
	BreakdownTrend(ctx context.Context, f Filter, dim Dimension, metric Metric) ([]GroupSeries, error)
	Distribution(ctx context.Context, f Filter) ([]DistributionRow, error)
	Heatmap(ctx context.Context, f Filter) ([]HeatmapCell, error)
	Summary(ctx context.Context, f Filter) (*Summary, error)
	TopDonors(ctx context.Context, f Filter, limit int) ([]TopDonor, error)
	Cohort(ctx context.Context, segment Segment, year int) (*Segmentation, error)

	ExportBreakdown(ctx context.Context, f Filter, dim Dimension, format string, userID *uint, ip string) (*Export, error)
	ExportDistribution(ctx context.Context, f Filter, format string, userID *uint, ip string) (*Export, error)
	ExportHeatmap(ctx context.Context, f Filter, format string, userID *uint, ip string) (*Export, error)
	ExportCohort(ctx context.Context, segment Segment, year int, format string, userID *uint, ip string) (*Export, error)
}

// Options tunes the engine.
type Options struct {
	Timeout     time.Duration
	Location    *time.Location
	SybuntLimit int
}

type service struct {
	store    ledger.Store
	exporter Exporter
	auditSvc auditlog.Service
	opts     Options
	logger   *zap.Logger
}

func NewService(store ledger.Store, exporter Exporter, auditSvc auditlog.Service, opts Options, logger *zap.Logger) Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SybuntLimit <= 0 {
		opts.SybuntLimit = 500
	}
	return &service{
		store:    store,
		exporter: exporter,
		auditSvc: auditSvc,
		opts:     opts,
		logger:   logger.Named("analytics.service"),
	}
}

// ===============================
// Execution
// ===============================

// runTimed runs fn under the service timeout. On timeout the partial result is
// discarded and a timeout error is returned.
func runTimed[T any](ctx context.Context, s *service, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	started := time.Now()
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil {
			s.logFailure(op, r.err)
			return zero, r.err
		}
		s.logger.Debug("report computed", zap.String("op", op), zap.Duration("elapsed", time.Since(started)))
		return r.value, nil
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("report timed out", zap.String("op", op), zap.Duration("timeout", s.opts.Timeout))
			return zero, apperror.Timeout(op, err)
		}
		return zero, apperror.FromStore(op, err)
	}
}

func (s *service) logFailure(op string, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindStore:
		s.logger.Error("report failed", zap.String("op", op), zap.Error(err))
	case apperror.KindTimeout:
		s.logger.Warn("report timed out", zap.String("op", op), zap.Error(err))
	}
}

// load reads the window and keeps the transactions that pass the filter.
func (s *service) load(ctx context.Context, f Filter) (*dataset, error) {
	txns, err := s.store.ListTransactions(ctx, f.Window)
	if err != nil {
		return nil, err
	}
	ids, emails := ledger.Refs(txns)
	donors, err := s.store.ListDonorsFor(ctx, ids, emails)
	if err != nil {
		return nil, err
	}
	return newDataset(f, s.opts.Location, txns, donors), nil
}

func (s *service) loadPlans(ctx context.Context, f Filter) (*planBook, error) {
	// start_date is a date column; compare against the day after the window
	schedules, err := s.store.ListSchedules(ctx, predicate.CalendarDate(f.Window.End(), time.UTC))
	if err != nil {
		return nil, err
	}
	return newPlanBook(f, s.opts.Location, schedules), nil
}

// ===============================
// Trends
// ===============================

func (s *service) Trend(ctx context.Context, f Filter, metric Metric) ([]TrendPoint, error) {
	return runTimed(ctx, s, "trend "+string(metric), func(ctx context.Context) ([]TrendPoint, error) {
		daily, err := s.dailySeries(ctx, f, metric)
		if err != nil {
			return nil, err
		}
		if f.Granularity == GranularityWeekly {
			daily = Rollup(daily, Buckets(f.Window, GranularityWeekly), reducerFor(metric))
		}
		return toTrend(daily, metric), nil
	})
}

func (s *service) dailySeries(ctx context.Context, f Filter, metric Metric) (Series, error) {
	switch metric {
	case MetricRevenue, MetricDonations:
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		return ds.revenueSeries(), nil

	case MetricRecurringShare:
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		return ds.recurringShareSeries(), nil

	case MetricMRR, MetricActivePlans:
		book, err := s.loadPlans(ctx, f)
		if err != nil {
			return nil, err
		}
		return book.activeSeries(f.Window), nil

	case MetricNewPlans:
		book, err := s.loadPlans(ctx, f)
		if err != nil {
			return nil, err
		}
		return book.newPlanSeries(f.Window), nil

	case MetricCanceledPlans:
		events, err := s.store.ListCancellations(ctx, f.Window)
		if err != nil {
			return nil, err
		}
		return canceledSeries(f.Window, s.opts.Location, events), nil

	default:
		return nil, apperror.Validation("unsupported metric %q", metric)
	}
}

// ===============================
// Breakdowns
// ===============================

func (s *service) Breakdown(ctx context.Context, f Filter, dim Dimension) ([]TableRow, error) {
	return runTimed(ctx, s, "breakdown "+string(dim), func(ctx context.Context) ([]TableRow, error) {
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		groups, err := s.labelledGroups(ctx, ds, dim)
		if err != nil {
			return nil, err
		}
		return toTable(groups), nil
	})
}

func (s *service) labelledGroups(ctx context.Context, ds *dataset, dim Dimension) ([]*group, error) {
	groups := ds.groups(dim)
	var names ledger.Names
	var err error
	switch dim {
	case DimensionAppeal:
		names, err = s.store.AppealNames(ctx, groupRefs(groups))
	case DimensionFund:
		names, err = s.store.FundNames(ctx, groupRefs(groups))
	default:
		return groups, nil
	}
	if err != nil {
		return nil, err
	}
	labelGroups(groups, dim, names)
	return groups, nil
}

// BreakdownTrend returns one series per group active anywhere in the window.
// Groups keep their place in every bucket even when they are zero there.
func (s *service) BreakdownTrend(ctx context.Context, f Filter, dim Dimension, metric Metric) ([]GroupSeries, error) {
	return runTimed(ctx, s, "breakdown trend "+string(dim), func(ctx context.Context) ([]GroupSeries, error) {
		if metric != MetricRevenue && metric != MetricDonations {
			return nil, apperror.Validation("unsupported metric %q", metric)
		}
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		groups, err := s.labelledGroups(ctx, ds, dim)
		if err != nil {
			return nil, err
		}

		perGroup := ds.groupSeries(dim, groups)
		weeks := Buckets(f.Window, GranularityWeekly)
		out := make([]GroupSeries, 0, len(groups))
		for _, g := range groups {
			series := perGroup[g.key].points
			if f.Granularity == GranularityWeekly {
				series = Rollup(series, weeks, SumRollup)
			}
			out = append(out, GroupSeries{Key: g.key, Label: g.label, Points: toTrend(series, metric)})
		}
		return out, nil
	})
}

// ===============================
// Snapshots
// ===============================

// Distribution buckets active plans as of the end date by monthly equivalent.
func (s *service) Distribution(ctx context.Context, f Filter) ([]DistributionRow, error) {
	return runTimed(ctx, s, "distribution", func(ctx context.Context) ([]DistributionRow, error) {
		book, err := s.loadPlans(ctx, f)
		if err != nil {
			return nil, err
		}
		return distribution(book.activeAt(f.Window.To)), nil
	})
}

func (s *service) Heatmap(ctx context.Context, f Filter) ([]HeatmapCell, error) {
	return runTimed(ctx, s, "heatmap", func(ctx context.Context) ([]HeatmapCell, error) {
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		return ds.heatmap(), nil
	})
}

func (s *service) Summary(ctx context.Context, f Filter) (*Summary, error) {
	return runTimed(ctx, s, "summary", func(ctx context.Context) (*Summary, error) {
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}
		book, err := s.loadPlans(ctx, f)
		if err != nil {
			return nil, err
		}

		total, recurring := decimal.Zero, decimal.Zero
		donors := make(map[string]bool)
		for _, t := range ds.txns {
			total = total.Add(amountOf(t))
			if t.MaxFrequency() >= ledger.FrequencyMonthly {
				recurring = recurring.Add(amountOf(t))
			}
			if key := ds.linker.Key(t.DonorID, t.Email); key != "" {
				donors[key] = true
			}
		}

		count := int64(len(ds.txns))
		avg := decimal.Zero
		if count > 0 {
			avg = total.Div(decimal.NewFromInt(count))
		}

		mrr := decimal.Zero
		active := book.activeAt(f.Window.To)
		for _, p := range active {
			mrr = mrr.Add(MonthlyEquivalent(p.Frequency, decimal.NewFromFloat(p.Amount)))
		}

		return &Summary{
			StartDate:      f.Window.From.Format(DateLayout),
			EndDate:        f.Window.To.Format(DateLayout),
			TotalRevenue:   money(total),
			DonationCount:  count,
			UniqueDonors:   int64(len(donors)),
			AverageGift:    money(avg),
			RecurringShare: share(recurring, total, 1).InexactFloat64(),
			ActivePlans:    int64(len(active)),
			MRR:            money(mrr),
		}, nil
	})
}

func (s *service) TopDonors(ctx context.Context, f Filter, limit int) ([]TopDonor, error) {
	return runTimed(ctx, s, "top donors", func(ctx context.Context) ([]TopDonor, error) {
		ds, err := s.load(ctx, f)
		if err != nil {
			return nil, err
		}

		type acc struct {
			ref   DonorRef
			count int64
			total decimal.Decimal
			last  time.Time
		}
		byKey := make(map[string]*acc)
		for _, t := range ds.txns {
			key := ds.linker.Key(t.DonorID, t.Email)
			if key == "" {
				continue
			}
			a, ok := byKey[key]
			if !ok {
				a = &acc{ref: donorRef(ds.linker, t.DonorID, t.Email), total: decimal.Zero}
				byKey[key] = a
			}
			a.count++
			a.total = a.total.Add(amountOf(t))
			if t.CreatedAt.After(a.last) {
				a.last = t.CreatedAt
			}
		}

		ranked := make([]*acc, 0, len(byKey))
		for _, a := range byKey {
			ranked = append(ranked, a)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if c := ranked[i].total.Cmp(ranked[j].total); c != 0 {
				return c > 0
			}
			return ranked[i].ref.Email < ranked[j].ref.Email
		})
		if limit > 0 && len(ranked) > limit {
			ranked = ranked[:limit]
		}

		out := make([]TopDonor, len(ranked))
		for i, a := range ranked {
			out[i] = TopDonor{
				DonorRef:      a.ref,
				DonationCount: a.count,
				TotalAmount:   money(a.total),
				LastDonation:  a.last.In(s.opts.Location).Format(DateLayout),
			}
		}
		return out, nil
	})
}

// ===============================
// Cohorts
// ===============================

// Cohort classifies donors for the evaluation year. Only gifts up to the end
// of that year are considered.
func (s *service) Cohort(ctx context.Context, segment Segment, year int) (*Segmentation, error) {
	return runTimed(ctx, s, "cohort "+string(segment), func(ctx context.Context) (*Segmentation, error) {
		loc := s.opts.Location
		before := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
		gifts, err := s.store.ListGifts(ctx, before)
		if err != nil {
			return nil, err
		}

		ids, emails := giftRefs(gifts)
		donors, err := s.store.ListDonorsFor(ctx, ids, emails)
		if err != nil {
			return nil, err
		}
		hs := histories(gifts, ledger.NewLinker(donors), loc)

		out := &Segmentation{Segment: segment, Year: year}
		switch segment {
		case SegmentLYBUNT:
			out.Donors = lybunt(hs, year)
			out.Count = len(out.Donors)
		case SegmentSYBUNT:
			out.Donors = sybunt(hs, year, s.opts.SybuntLimit)
			out.Count = len(out.Donors)
		case SegmentValueTiers:
			out.Tiers = valueTiers(hs)
			for _, members := range out.Tiers {
				out.Count += len(members)
			}
		default:
			return nil, apperror.Validation("unsupported segment %q", segment)
		}
		return out, nil
	})
}

func giftRefs(gifts []ledger.Gift) ([]uint, []string) {
	txns := make([]ledger.Transaction, len(gifts))
	for i, g := range gifts {
		txns[i] = ledger.Transaction{DonorID: g.DonorID, Email: g.Email}
	}
	return ledger.Refs(txns)
}

// ===============================
// Exports
// ===============================

func (s *service) export(ctx context.Context, report string, format string, userID *uint, ip string, details map[string]interface{}, build func(ctx context.Context) (Sheet, error)) (*Export, error) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["report"] = report
	details["format"] = format

	sheet, err := build(ctx)
	if err == nil {
		var file *Export
		file, err = s.exporter.Export(sheet, format)
		if err == nil {
			details["filename"] = file.Filename
			details["rows"] = len(sheet.Rows)
			s.audit(ctx, userID, "REPORT_EXPORTED", details, ip, auditlog.StatusSuccess)
			return file, nil
		}
	}

	details["error"] = apperror.PublicMessage(err)
	s.audit(ctx, userID, "REPORT_EXPORT_FAILED", details, ip, auditlog.StatusFailure)
	return nil, err
}

func (s *service) audit(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, userID, action, details, ip, status); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func filterDetails(f Filter) map[string]interface{} {
	return map[string]interface{}{
		"start_date":      f.Window.From.Format(DateLayout),
		"end_date":        f.Window.To.Format(DateLayout),
		"appeal_ids":      f.Appeals.Values(),
		"fund_ids":        f.Funds.Values(),
		"countries":       f.Countries.Values(),
		"payment_types":   f.PaymentTypes.Values(),
		"frequency_class": string(f.Class),
	}
}

func (s *service) ExportBreakdown(ctx context.Context, f Filter, dim Dimension, format string, userID *uint, ip string) (*Export, error) {
	details := filterDetails(f)
	details["dimension"] = string(dim)
	return s.export(ctx, "breakdown", format, userID, ip, details, func(ctx context.Context) (Sheet, error) {
		rows, err := s.Breakdown(ctx, f, dim)
		return breakdownSheet(dim, rows), err
	})
}

func (s *service) ExportDistribution(ctx context.Context, f Filter, format string, userID *uint, ip string) (*Export, error) {
	return s.export(ctx, "distribution", format, userID, ip, filterDetails(f), func(ctx context.Context) (Sheet, error) {
		rows, err := s.Distribution(ctx, f)
		return distributionSheet(rows), err
	})
}

func (s *service) ExportHeatmap(ctx context.Context, f Filter, format string, userID *uint, ip string) (*Export, error) {
	return s.export(ctx, "heatmap", format, userID, ip, filterDetails(f), func(ctx context.Context) (Sheet, error) {
		cells, err := s.Heatmap(ctx, f)
		return heatmapSheet(cells), err
	})
}

func (s *service) ExportCohort(ctx context.Context, segment Segment, year int, format string, userID *uint, ip string) (*Export, error) {
	details := map[string]interface{}{"segment": string(segment), "year": year}
	return s.export(ctx, "cohort", format, userID, ip, details, func(ctx context.Context) (Sheet, error) {
		seg, err := s.Cohort(ctx, segment, year)
		if err != nil {
			return Sheet{}, err
		}
		return cohortSheet(seg), nil
	})
}
