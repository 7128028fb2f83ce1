package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"gorm.io/gorm"
)

// Gift is a slim reportable transaction used for donor history scans.
type Gift struct {
	TransactionID uint
	DonorID       *uint
	Email         string
	Amount        float64
	CreatedAt     time.Time
}

// Store is the read-only view of the ledger used by reporting.
type Store interface {
	// Reportable transactions created inside the window, details preloaded.
	ListTransactions(ctx context.Context, window predicate.DateRange) ([]Transaction, error)
	// Reportable gifts created before the given instant, oldest first.
	ListGifts(ctx context.Context, before time.Time) ([]Gift, error)
	// Donors referenced by id or by email (case-insensitive).
	ListDonorsFor(ctx context.Context, ids []uint, emails []string) ([]Donor, error)
	// Schedules whose start date is before the given date.
	ListSchedules(ctx context.Context, startedBefore time.Time) ([]Schedule, error)
	ListCancellations(ctx context.Context, window predicate.DateRange) ([]CancellationEvent, error)
	AppealNames(ctx context.Context, ids []uint) (Names, error)
	FundNames(ctx context.Context, ids []uint) (Names, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Store {
	return &repository{db: db}
}

func reportable(db *gorm.DB) *gorm.DB {
	return predicate.NewExactSet(ReportableStatuses...).Scope("status")(db)
}

// ==============================
// Transactions
// ==============================

func (r *repository) ListTransactions(ctx context.Context, window predicate.DateRange) ([]Transaction, error) {
	var txns []Transaction
	err := r.db.WithContext(ctx).
		Scopes(reportable, window.Scope("created_at")).
		Preload("Details").
		Order("created_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, apperror.FromStore("list transactions", err)
	}
	return txns, nil
}

func (r *repository) ListGifts(ctx context.Context, before time.Time) ([]Gift, error) {
	var gifts []Gift
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Select("id AS transaction_id, donor_id, email, total_amount AS amount, created_at").
		Scopes(reportable).
		Where("created_at < ?", before).
		Order("created_at ASC, id ASC").
		Scan(&gifts).Error
	if err != nil {
		return nil, apperror.FromStore("list gifts", err)
	}
	return gifts, nil
}

// ==============================
// Donors
// ==============================

func (r *repository) ListDonorsFor(ctx context.Context, ids []uint, emails []string) ([]Donor, error) {
	if len(ids) == 0 && len(emails) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			lowered = append(lowered, e)
		}
	}

	query := r.db.WithContext(ctx).Model(&Donor{})
	switch {
	case len(ids) > 0 && len(lowered) > 0:
		query = query.Where("id IN ? OR LOWER(TRIM(email)) IN ?", ids, lowered)
	case len(ids) > 0:
		query = query.Where("id IN ?", ids)
	default:
		query = query.Where("LOWER(TRIM(email)) IN ?", lowered)
	}

	var donors []Donor
	if err := query.Order("id ASC").Find(&donors).Error; err != nil {
		return nil, apperror.FromStore("list donors", err)
	}
	return donors, nil
}

// ==============================
// Recurring plans
// ==============================

func (r *repository) ListSchedules(ctx context.Context, startedBefore time.Time) ([]Schedule, error) {
	var schedules []Schedule
	err := r.db.WithContext(ctx).
		Where("start_date < ?", startedBefore).
		Where("plan_id IS NOT NULL AND plan_id <> ''").
		Where("subscription_id IS NOT NULL AND subscription_id <> ''").
		Order("start_date ASC, id ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, apperror.FromStore("list schedules", err)
	}
	return schedules, nil
}

func (r *repository) ListCancellations(ctx context.Context, window predicate.DateRange) ([]CancellationEvent, error) {
	var events []CancellationEvent
	err := r.db.WithContext(ctx).
		Scopes(window.Scope("canceled_at")).
		Order("canceled_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperror.FromStore("list cancellations", err)
	}
	return events, nil
}

// ==============================
// Name lookups
// ==============================

type nameRow struct {
	ID   uint
	Name string
}

func (r *repository) names(ctx context.Context, table string, ids []uint) (Names, error) {
	out := make(Names, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []nameRow
	err := r.db.WithContext(ctx).
		Table(table).
		Select("id, name").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.FromStore("load "+table+" names", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *repository) AppealNames(ctx context.Context, ids []uint) (Names, error) {
	return r.names(ctx, "appeals", ids)
}

func (r *repository) FundNames(ctx context.Context, ids []uint) (Names, error) {
	return r.names(ctx, "funds", ids)
}

// NormalizeEmail is the comparison form used for email linkage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
