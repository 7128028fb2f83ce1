package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore serves fixtures the way the gorm store does, except that it does
// not pre-filter statuses, so the engine's own checks are exercised.
type fakeStore struct {
	txns          []ledger.Transaction
	donors        []ledger.Donor
	schedules     []ledger.Schedule
	cancellations []ledger.CancellationEvent
	appeals       ledger.Names
	funds         ledger.Names
	err           error
	delay         time.Duration
}

func (f *fakeStore) wait(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return apperror.FromStore("fake", ctx.Err())
	}
}

func (f *fakeStore) ListTransactions(ctx context.Context, w predicate.DateRange) ([]ledger.Transaction, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var out []ledger.Transaction
	for _, t := range f.txns {
		if w.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListGifts(ctx context.Context, before time.Time) ([]ledger.Gift, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var out []ledger.Gift
	for _, t := range f.txns {
		if t.Reportable() && t.CreatedAt.Before(before) {
			out = append(out, ledger.Gift{TransactionID: t.ID, DonorID: t.DonorID, Email: t.Email, Amount: t.TotalAmount, CreatedAt: t.CreatedAt})
		}
	}
	return out, nil
}

func (f *fakeStore) ListDonorsFor(ctx context.Context, ids []uint, emails []string) ([]ledger.Donor, error) {
	return f.donors, f.wait(ctx)
}

func (f *fakeStore) ListSchedules(ctx context.Context, startedBefore time.Time) ([]ledger.Schedule, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var out []ledger.Schedule
	for _, s := range f.schedules {
		if s.StartDate.Before(startedBefore) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCancellations(ctx context.Context, w predicate.DateRange) ([]ledger.CancellationEvent, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var out []ledger.CancellationEvent
	for _, e := range f.cancellations {
		if w.Contains(e.CanceledAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AppealNames(ctx context.Context, ids []uint) (ledger.Names, error) {
	return f.appeals, f.wait(ctx)
}

func (f *fakeStore) FundNames(ctx context.Context, ids []uint) (ledger.Names, error) {
	return f.funds, f.wait(ctx)
}

type auditCall struct {
	action string
	status string
}

type fakeAudit struct {
	calls []auditCall
}

func (a *fakeAudit) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	a.calls = append(a.calls, auditCall{action: action, status: status})
	return nil
}

func (a *fakeAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func (a *fakeAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, apperror.NotFound("audit log", id)
}

func (a *fakeAudit) GetStats(ctx context.Context, since time.Time) (*auditlog.Stats, error) {
	return &auditlog.Stats{Since: since}, nil
}

func newTestService(store ledger.Store, audit auditlog.Service) Service {
	return NewService(store, NewExporter(), audit, Options{Timeout: time.Second, Location: time.UTC, SybuntLimit: 2}, zap.NewNop())
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func u(v uint) *uint { return &v }

func str(v string) *string { return &v }

func txn(id uint, created time.Time, total float64, details ...ledger.TransactionDetail) ledger.Transaction {
	return ledger.Transaction{
		ID:            id,
		TotalAmount:   total,
		Currency:      "USD",
		PaymentMethod: "card",
		Status:        ledger.StatusCompleted,
		OrderID:       fmt.Sprintf("ord_%d", id),
		CreatedAt:     created,
		Details:       details,
	}
}

func line(appeal uint, amount float64, freq int) ledger.TransactionDetail {
	return ledger.TransactionDetail{AppealID: appeal, Amount: amount, Quantity: 1, Frequency: freq}
}

func plan(id uint, start time.Time, cadence string, amount float64) ledger.Schedule {
	return ledger.Schedule{
		ID:             id,
		StartDate:      start,
		Frequency:      cadence,
		Amount:         amount,
		Status:         ledger.ScheduleActive,
		PlanID:         str("plan"),
		SubscriptionID: str("sub"),
	}
}

func mustFilter(t *testing.T, q Query) Filter {
	t.Helper()
	f, err := ResolveFilter(q, time.UTC)
	require.NoError(t, err)
	return f
}

func TestWorkedExampleTrendAndAppealTable(t *testing.T) {
	store := &fakeStore{
		txns:    []ledger.Transaction{txn(1, at(2024, 1, 2, 15), 30, line(1, 30, 0))},
		appeals: ledger.Names{1: "A"},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03"})

	points, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Bucket: "2024-01-01", Value: 0, Count: 0},
		{Bucket: "2024-01-02", Value: 30, Count: 1},
		{Bucket: "2024-01-03", Value: 0, Count: 0},
	}, points)

	rows, err := svc.Breakdown(context.Background(), f, DimensionAppeal)
	require.NoError(t, err)
	assert.Equal(t, []TableRow{{Key: "1", Label: "A", DonationCount: 1, TotalAmount: 30}}, rows)
}

func TestMultiLineTransactionCountedOnceButInEachAppeal(t *testing.T) {
	store := &fakeStore{
		txns:    []ledger.Transaction{txn(1, at(2024, 1, 2, 9), 30, line(1, 20, 0), line(2, 10, 0))},
		appeals: ledger.Names{1: "A", 2: "B"},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03", AppealIDs: "1,2"})

	points, err := svc.Trend(context.Background(), f, MetricDonations)
	require.NoError(t, err)
	assert.Equal(t, float64(1), points[1].Value)

	summary, err := svc.Summary(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.DonationCount)
	assert.Equal(t, 30.0, summary.TotalRevenue)

	rows, err := svc.Breakdown(context.Background(), f, DimensionAppeal)
	require.NoError(t, err)
	assert.Equal(t, []TableRow{
		{Key: "1", Label: "A", DonationCount: 1, TotalAmount: 20},
		{Key: "2", Label: "B", DonationCount: 1, TotalAmount: 10},
	}, rows)
}

func TestLineFiltersMustHoldOnTheSameLine(t *testing.T) {
	store := &fakeStore{
		txns: []ledger.Transaction{txn(1, at(2024, 1, 2, 9), 30, line(1, 20, 0), line(2, 10, 1))},
	}
	svc := newTestService(store, nil)

	f := mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02", AppealIDs: "1", FrequencyClass: "recurring"})
	points, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, int64(0), points[0].Count)

	f = mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02", AppealIDs: "2", FrequencyClass: "recurring"})
	points, err = svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), points[0].Count)
	assert.Equal(t, 30.0, points[0].Value)
}

func TestFrequencyClasses(t *testing.T) {
	first := txn(1, at(2024, 1, 2, 9), 10, line(1, 10, 1))
	renewal := txn(2, at(2024, 1, 2, 10), 20, line(1, 20, 1))
	renewal.OrderID = "ord_2" + ledger.RenewalOrderMarker
	once := txn(3, at(2024, 1, 2, 11), 40, line(1, 40, 0))
	yearly := txn(4, at(2024, 1, 2, 12), 80, line(1, 80, 2))
	failed := txn(5, at(2024, 1, 2, 13), 1000, line(1, 1000, 0))
	failed.Status = "Failed"

	svc := newTestService(&fakeStore{txns: []ledger.Transaction{first, renewal, once, yearly, failed}}, nil)

	tests := []struct {
		class string
		want  float64
	}{
		{"", 150},
		{"one-time", 40},
		{"recurring", 110},
		{"recurring-first", 10},
		{"recurring-next", 20},
	}
	for _, tt := range tests {
		t.Run("class "+tt.class, func(t *testing.T) {
			f := mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02", FrequencyClass: tt.class})
			points, err := svc.Trend(context.Background(), f, MetricRevenue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, points[0].Value)
		})
	}
}

func TestCountryAndPaymentFiltersUseDonorLinkage(t *testing.T) {
	byID := txn(1, at(2024, 1, 2, 9), 10)
	byID.DonorID = u(1)
	byEmail := txn(2, at(2024, 1, 2, 9), 20)
	byEmail.Email = " GB@Example.org"
	byEmail.PaymentMethod = "PayPal"
	anonymous := txn(3, at(2024, 1, 2, 9), 40)

	store := &fakeStore{
		txns:   []ledger.Transaction{byID, byEmail, anonymous},
		donors: []ledger.Donor{{ID: 1, Email: "us@example.org", Country: "US"}, {ID: 2, Email: "gb@example.org", Country: "gb"}},
	}
	svc := newTestService(store, nil)

	f := mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02", Countries: "GB"})
	points, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, 20.0, points[0].Value)

	f = mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02", PaymentTypes: "paypal"})
	points, err = svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, 20.0, points[0].Value)

	f = mustFilter(t, Query{StartDate: "2024-01-02", EndDate: "2024-01-02"})
	rows, err := svc.Breakdown(context.Background(), f, DimensionCountry)
	require.NoError(t, err)
	assert.Equal(t, []TableRow{
		{Key: "unknown", Label: "Unknown", DonationCount: 1, TotalAmount: 40},
		{Key: "GB", Label: "GB", DonationCount: 1, TotalAmount: 20},
		{Key: "US", Label: "US", DonationCount: 1, TotalAmount: 10},
	}, rows)
}

func TestMRRNormalization(t *testing.T) {
	tests := []struct {
		cadence string
		amount  float64
		want    float64
	}{
		{ledger.CadenceMonthly, 100, 100},
		{ledger.CadenceWeekly, 100, 433},
		{ledger.CadenceDaily, 10, 304.2},
		{ledger.CadenceYearly, 1200, 100},
		{"FORTNIGHTLY", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.cadence, func(t *testing.T) {
			svc := newTestService(&fakeStore{schedules: []ledger.Schedule{plan(1, at(2023, 12, 1, 0), tt.cadence, tt.amount)}}, nil)
			f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-10"})

			points, err := svc.Trend(context.Background(), f, MetricMRR)
			require.NoError(t, err)
			require.Len(t, points, 10)
			for _, p := range points {
				assert.Equal(t, tt.want, p.Value, p.Bucket)
			}
		})
	}
}

func TestPlanLifecycleCounts(t *testing.T) {
	incomplete := plan(3, at(2024, 1, 1, 0), ledger.CadenceMonthly, 50)
	incomplete.SubscriptionID = nil
	paused := plan(4, at(2024, 1, 2, 0), ledger.CadenceMonthly, 50)
	paused.Status = "PAUSED"
	otherAppeal := plan(5, at(2024, 1, 2, 0), ledger.CadenceMonthly, 50)
	otherAppeal.AppealID = u(9)

	p1 := plan(1, at(2023, 6, 1, 0), ledger.CadenceMonthly, 10)
	p1.AppealID = u(1)
	p2 := plan(2, at(2024, 1, 3, 8), ledger.CadenceMonthly, 10)
	p2.AppealID = u(1)
	paused.AppealID = u(1)
	incomplete.AppealID = u(1)

	store := &fakeStore{
		schedules: []ledger.Schedule{p1, p2, incomplete, paused, otherAppeal},
		cancellations: []ledger.CancellationEvent{
			{ID: 1, ScheduleID: 5, CanceledAt: at(2024, 1, 2, 12)},
			{ID: 2, ScheduleID: 4, CanceledAt: at(2024, 1, 2, 13)},
		},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-04", AppealIDs: "1"})

	active, err := svc.Trend(context.Background(), f, MetricActivePlans)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 2}, values(active))

	created, err := svc.Trend(context.Background(), f, MetricNewPlans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 0}, values(created), "paused plans are still new plans")

	canceled, err := svc.Trend(context.Background(), f, MetricCanceledPlans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 0, 0}, values(canceled), "cancellations ignore appeal filters")
}

func TestPlanStartDatesAreCalendarDatesOutsideUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := &fakeStore{
		// date columns come back as UTC midnight
		schedules: []ledger.Schedule{plan(1, at(2024, 1, 2, 0), ledger.CadenceMonthly, 100)},
		// 03:00 UTC on Jan 2 is still Jan 1 in New York
		txns: []ledger.Transaction{txn(1, at(2024, 1, 2, 3), 25)},
	}
	svc := NewService(store, NewExporter(), nil, Options{Timeout: time.Second, Location: ny, SybuntLimit: 2}, zap.NewNop())
	f, err := ResolveFilter(Query{StartDate: "2024-01-01", EndDate: "2024-01-03"}, ny)
	require.NoError(t, err)

	created, err := svc.Trend(context.Background(), f, MetricNewPlans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, values(created))

	mrr, err := svc.Trend(context.Background(), f, MetricMRR)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 100, 100}, values(mrr))

	active, err := svc.Trend(context.Background(), f, MetricActivePlans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, values(active))

	revenue, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 0, 0}, values(revenue))
}

func values(points []TrendPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func TestRecurringShareBounds(t *testing.T) {
	store := &fakeStore{txns: []ledger.Transaction{
		txn(1, at(2024, 1, 1, 9), 50, line(1, 50, 1)),
		txn(2, at(2024, 1, 1, 10), 150, line(1, 150, 0)),
		txn(3, at(2024, 1, 2, 10), 33.33, line(1, 33.33, 3)),
		txn(4, at(2024, 1, 2, 11), 66.67, line(1, 16.67, 0), line(2, 50, 4)),
	}}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03"})

	points, err := svc.Trend(context.Background(), f, MetricRecurringShare)
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 100, 0}, values(points))
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 100.0)
	}
}

func TestWeeklyTrendUsesReducerPerMetric(t *testing.T) {
	store := &fakeStore{
		txns: []ledger.Transaction{
			txn(1, at(2024, 1, 1, 9), 10),
			txn(2, at(2024, 1, 5, 9), 15),
			txn(3, at(2024, 1, 9, 9), 7),
		},
		schedules: []ledger.Schedule{plan(1, at(2024, 1, 3, 0), ledger.CadenceMonthly, 40)},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-14", Granularity: "weekly"})

	revenue, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Bucket: "2024-01-01", Value: 25, Count: 2},
		{Bucket: "2024-01-08", Value: 7, Count: 1},
	}, revenue)

	mrr, err := svc.Trend(context.Background(), f, MetricMRR)
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 40}, values(mrr), "snapshot metrics are not summed across days")
}

func TestBreakdownTrendKeepsActiveGroupsInEveryBucket(t *testing.T) {
	store := &fakeStore{
		txns: []ledger.Transaction{
			txn(1, at(2024, 1, 1, 9), 10, line(1, 10, 0)),
			txn(2, at(2024, 1, 2, 9), 5, line(2, 5, 0)),
		},
		appeals: ledger.Names{1: "Water", 2: "Schools"},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03"})

	series, err := svc.BreakdownTrend(context.Background(), f, DimensionAppeal, MetricRevenue)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "Water", series[0].Label)
	assert.Equal(t, []float64{10, 0, 0}, values(series[0].Points))
	assert.Equal(t, "Schools", series[1].Label)
	assert.Equal(t, []float64{0, 5, 0}, values(series[1].Points))

	_, err = svc.BreakdownTrend(context.Background(), f, DimensionAppeal, MetricMRR)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDistributionAsOfEndDate(t *testing.T) {
	late := plan(4, at(2024, 2, 1, 0), ledger.CadenceMonthly, 100)
	store := &fakeStore{schedules: []ledger.Schedule{
		plan(1, at(2023, 1, 1, 0), ledger.CadenceMonthly, 5),   // exactly 5 -> $5-11
		plan(2, at(2023, 1, 1, 0), ledger.CadenceWeekly, 1),    // 4.33 -> $0-5
		plan(3, at(2023, 1, 1, 0), ledger.CadenceYearly, 1200), // 100 -> $50+
		late,
	}}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-31"})

	rows, err := svc.Distribution(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []DistributionRow{
		{RangeLabel: "$0-5", Count: 1, Percentage: 33.33},
		{RangeLabel: "$5-11", Count: 1, Percentage: 33.33},
		{RangeLabel: "$11-21", Count: 0, Percentage: 0},
		{RangeLabel: "$21-50", Count: 0, Percentage: 0},
		{RangeLabel: "$50+", Count: 1, Percentage: 33.33},
	}, rows)
}

func TestHeatmapStartsOnMonday(t *testing.T) {
	store := &fakeStore{txns: []ledger.Transaction{
		txn(1, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), 12.5), // Monday
		txn(2, time.Date(2024, 1, 7, 23, 5, 0, 0, time.UTC), 7),     // Sunday
	}}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-07"})

	cells, err := svc.Heatmap(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, cells, 7*24)
	assert.Equal(t, HeatmapCell{Day: 0, Hour: 10, DonationCount: 1, TotalAmount: 12.5}, cells[10])
	assert.Equal(t, HeatmapCell{Day: 6, Hour: 23, DonationCount: 1, TotalAmount: 7}, cells[6*24+23])
}

func TestEmptyWindowIsNotAnError(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-02"})

	rows, err := svc.Breakdown(context.Background(), f, DimensionFund)
	require.NoError(t, err)
	assert.Empty(t, rows)

	summary, err := svc.Summary(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.RecurringShare)
	assert.Equal(t, 0.0, summary.AverageGift)
}

func TestCohortSegments(t *testing.T) {
	gift := func(id uint, donor *uint, email string, created time.Time, amount float64) ledger.Transaction {
		tx := txn(id, created, amount)
		tx.DonorID = donor
		tx.Email = email
		return tx
	}
	donors := []ledger.Donor{
		{ID: 1, FirstName: "Both", Email: "both@example.org"},
		{ID: 2, FirstName: "Last", Email: "last@example.org"},
		{ID: 3, FirstName: "Lapsed", Email: "lapsed@example.org"},
		{ID: 4, FirstName: "Old", Email: "old@example.org"},
	}
	store := &fakeStore{
		donors: donors,
		txns: []ledger.Transaction{
			gift(1, u(1), "", at(2023, 3, 1, 0), 50),
			gift(2, nil, "BOTH@example.org", at(2024, 2, 1, 0), 60), // linked by email
			gift(3, u(2), "", at(2023, 7, 1, 0), 900),
			gift(4, u(3), "", at(2022, 5, 1, 0), 1500),
			gift(5, u(4), "", at(2020, 5, 1, 0), 20),
			gift(6, u(4), "", at(2021, 5, 1, 0), 30),
			gift(7, nil, "walkin@example.org", at(2021, 8, 1, 0), 5),
			gift(8, u(2), "", at(2025, 1, 1, 0), 100), // after the evaluation year
		},
	}
	svc := newTestService(store, nil)

	lybunt, err := svc.Cohort(context.Background(), SegmentLYBUNT, 2024)
	require.NoError(t, err)
	require.Len(t, lybunt.Donors, 1)
	assert.Equal(t, "last@example.org", lybunt.Donors[0].Email)
	assert.Equal(t, "2023-07-01", lybunt.Donors[0].LastDonation)

	sybunt, err := svc.Cohort(context.Background(), SegmentSYBUNT, 2024)
	require.NoError(t, err)
	require.Len(t, sybunt.Donors, 2, "capped at the configured limit")
	assert.Equal(t, "lapsed@example.org", sybunt.Donors[0].Email)
	assert.Equal(t, "walkin@example.org", sybunt.Donors[1].Email)
	assert.Nil(t, sybunt.Donors[1].DonorID)

	tiers, err := svc.Cohort(context.Background(), SegmentValueTiers, 2024)
	require.NoError(t, err)
	require.Len(t, tiers.Tiers[TierTop], 1)
	assert.Equal(t, 1500.0, tiers.Tiers[TierTop][0].LifetimeTotal)
	require.Len(t, tiers.Tiers[TierMid], 2)
	assert.Equal(t, 900.0, tiers.Tiers[TierMid][0].LifetimeTotal)
	assert.Equal(t, 110.0, tiers.Tiers[TierMid][1].LifetimeTotal)
	require.Len(t, tiers.Tiers[TierLow], 2)
	assert.Equal(t, 50.0, tiers.Tiers[TierLow][0].LifetimeTotal)
	assert.Equal(t, 5, tiers.Count)

	for _, seg := range [][]CohortDonor{lybunt.Donors, sybunt.Donors} {
		for _, d := range seg {
			assert.NotEqual(t, "both@example.org", d.Email)
		}
	}
}

func TestTimeoutReturnsNoPartialResult(t *testing.T) {
	store := &fakeStore{delay: time.Second}
	svc := NewService(store, NewExporter(), nil, Options{Timeout: 20 * time.Millisecond}, zap.NewNop())
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-02"})

	points, err := svc.Trend(context.Background(), f, MetricRevenue)
	require.Error(t, err)
	assert.Nil(t, points)
	assert.True(t, apperror.Is(err, apperror.KindTimeout))
}

func TestStoreErrorSurfacesAsStoreKind(t *testing.T) {
	store := &fakeStore{err: apperror.Store("list transactions", errors.New("dial tcp: connection refused"))}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-02"})

	_, err := svc.Heatmap(context.Background(), f)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindStore))
	assert.Equal(t, "internal server error", apperror.PublicMessage(err))
}

func TestExportIsAudited(t *testing.T) {
	audit := &fakeAudit{}
	store := &fakeStore{txns: []ledger.Transaction{txn(1, at(2024, 1, 2, 15), 30, line(1, 30, 0))}}
	svc := newTestService(store, audit)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03"})

	file, err := svc.ExportBreakdown(context.Background(), f, DimensionPaymentMethod, FormatCSV, u(7), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.MimeType)
	assert.Contains(t, string(file.Data), "card,card,1,30.00")

	_, err = svc.ExportHeatmap(context.Background(), f, "docx", u(7), "10.0.0.1")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	assert.Equal(t, []auditCall{
		{action: "REPORT_EXPORTED", status: auditlog.StatusSuccess},
		{action: "REPORT_EXPORT_FAILED", status: auditlog.StatusFailure},
	}, audit.calls)
}

func TestTopDonorsRanksLinkedGivers(t *testing.T) {
	a := txn(1, at(2024, 1, 1, 9), 10)
	a.DonorID = u(1)
	b := txn(2, at(2024, 1, 2, 9), 25)
	b.Email = "ana@example.org"
	c := txn(3, at(2024, 1, 2, 9), 30)
	c.Email = "ben@example.org"

	store := &fakeStore{
		txns:   []ledger.Transaction{a, b, c},
		donors: []ledger.Donor{{ID: 1, FirstName: "Ana", LastName: "Diaz", Email: "ana@example.org"}},
	}
	svc := newTestService(store, nil)
	f := mustFilter(t, Query{StartDate: "2024-01-01", EndDate: "2024-01-03"})

	donors, err := svc.TopDonors(context.Background(), f, 5)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "Ana Diaz", donors[0].Name)
	assert.Equal(t, int64(2), donors[0].DonationCount)
	assert.Equal(t, 35.0, donors[0].TotalAmount)
	assert.Equal(t, "2024-01-02", donors[0].LastDonation)
	assert.Equal(t, "ben@example.org", donors[1].Email)
}
