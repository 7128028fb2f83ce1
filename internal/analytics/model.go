package analytics

import (
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
)

// DateLayout is the calendar date format used in requests and bucket keys.
const DateLayout = "2006-01-02"

type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
)

type Metric string

const (
	MetricRevenue        Metric = "revenue"
	MetricDonations      Metric = "donations"
	MetricMRR            Metric = "mrr"
	MetricRecurringShare Metric = "recurring_share"
	MetricActivePlans    Metric = "active_plans"
	MetricNewPlans       Metric = "new_plans"
	MetricCanceledPlans  Metric = "canceled_plans"
)

// TrendMetrics are accepted by the trend endpoint.
var TrendMetrics = []Metric{
	MetricRevenue, MetricDonations, MetricMRR, MetricRecurringShare,
	MetricActivePlans, MetricNewPlans, MetricCanceledPlans,
}

// BreakdownTrendMetrics are accepted by the per-dimension trend endpoint.
var BreakdownTrendMetrics = []Metric{MetricRevenue, MetricDonations}

type Dimension string

const (
	DimensionCountry       Dimension = "country"
	DimensionAppeal        Dimension = "appeal"
	DimensionFund          Dimension = "fund"
	DimensionPaymentMethod Dimension = "payment_method"
	DimensionFrequency     Dimension = "frequency"
)

var Dimensions = []Dimension{
	DimensionCountry, DimensionAppeal, DimensionFund, DimensionPaymentMethod, DimensionFrequency,
}

// FrequencyClass narrows transactions by the recurrence code of their lines.
type FrequencyClass string

const (
	ClassAny            FrequencyClass = ""
	ClassOneTime        FrequencyClass = "one-time"
	ClassRecurring      FrequencyClass = "recurring"
	ClassRecurringFirst FrequencyClass = "recurring-first"
	ClassRecurringNext  FrequencyClass = "recurring-next"
)

var FrequencyClasses = []FrequencyClass{ClassOneTime, ClassRecurring, ClassRecurringFirst, ClassRecurringNext}

type Segment string

const (
	SegmentLYBUNT     Segment = "lybunt"
	SegmentSYBUNT     Segment = "sybunt"
	SegmentValueTiers Segment = "value_tiers"
)

var Segments = []Segment{SegmentLYBUNT, SegmentSYBUNT, SegmentValueTiers}

// Value tier names.
const (
	TierTop = "top"
	TierMid = "mid"
	TierLow = "low"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// Query is the raw request as bound from the query string.
type Query struct {
	StartDate      string `form:"startDate"`
	EndDate        string `form:"endDate"`
	Granularity    string `form:"granularity"`
	Metric         string `form:"metric"`
	Dimension      string `form:"dimension"`
	AppealIDs      string `form:"appealIds"`
	FundIDs        string `form:"fundIds"`
	Countries      string `form:"countries"`
	PaymentTypes   string `form:"paymentTypes"`
	FrequencyClass string `form:"frequencyClass"`
	Limit          string `form:"limit"`
	Format         string `form:"format"`
}

// Filter is the resolved, immutable filter set consumed by the engine.
type Filter struct {
	Window       predicate.DateRange
	Granularity  Granularity
	Appeals      predicate.IDSet
	Funds        predicate.IDSet
	Countries    predicate.StringSet
	PaymentTypes predicate.StringSet
	Class        FrequencyClass
}

// hasLineFilter reports whether a transaction must have a matching detail line.
func (f Filter) hasLineFilter() bool {
	return !f.Appeals.Empty() || !f.Funds.Empty() || f.Class != ClassAny
}

// TrendPoint is one bucket of a trend series.
type TrendPoint struct {
	Bucket string  `json:"bucket"`
	Value  float64 `json:"value"`
	Count  int64   `json:"count"`
}

// TableRow is one group of a dimensional breakdown.
type TableRow struct {
	Key           string  `json:"key"`
	Label         string  `json:"label"`
	DonationCount int64   `json:"donationCount"`
	TotalAmount   float64 `json:"totalAmount"`
}

// GroupSeries is the trend of a single dimension value.
type GroupSeries struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Points []TrendPoint `json:"points"`
}

// DistributionRow is one monthly-equivalent amount range.
type DistributionRow struct {
	RangeLabel string  `json:"rangeLabel"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HeatmapCell aggregates one day-of-week and hour-of-day pair. Day 0 is Monday.
type HeatmapCell struct {
	Day           int     `json:"day"`
	Hour          int     `json:"hour"`
	DonationCount int64   `json:"donationCount"`
	TotalAmount   float64 `json:"totalAmount"`
}

// Summary holds the headline numbers of a dashboard window.
type Summary struct {
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	TotalRevenue   float64 `json:"totalRevenue"`
	DonationCount  int64   `json:"donationCount"`
	UniqueDonors   int64   `json:"uniqueDonors"`
	AverageGift    float64 `json:"averageGift"`
	RecurringShare float64 `json:"recurringShare"`
	ActivePlans    int64   `json:"activePlans"`
	MRR            float64 `json:"mrr"`
}

// DonorRef identifies a giver in report output.
type DonorRef struct {
	DonorID *uint  `json:"donorId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
}

// TopDonor is a donor ranked by giving inside the window.
type TopDonor struct {
	DonorRef
	DonationCount int64   `json:"donationCount"`
	TotalAmount   float64 `json:"totalAmount"`
	LastDonation  string  `json:"lastDonation"`
}

// CohortDonor is a donor with the metric that placed them in a segment.
type CohortDonor struct {
	DonorRef
	LastDonation  string  `json:"lastDonation"`
	LifetimeTotal float64 `json:"lifetimeTotal"`
}

// Segmentation is the result of one cohort classification pass.
type Segmentation struct {
	Segment Segment                  `json:"segment"`
	Year    int                      `json:"year"`
	Count   int                      `json:"count"`
	Donors  []CohortDonor            `json:"donors,omitempty"`
	Tiers   map[string][]CohortDonor `json:"tiers,omitempty"`
}

// Export is a rendered report file.
type Export struct {
	Data     []byte
	Filename string
	MimeType string
}
