package donor

import (
	"context"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"gorm.io/gorm"
)

// summaryRow is the raw aggregate behind GivingSummary.
type summaryRow struct {
	GiftCount  int64
	TotalGiven float64
	FirstGift  *time.Time
	LastGift   *time.Time
}

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]ledger.Donor, int64, error)
	GetByID(ctx context.Context, id uint) (*ledger.Donor, error)
	ListTransactions(ctx context.Context, d ledger.Donor, q TransactionQuery) ([]ledger.Transaction, int64, error)
	Summary(ctx context.Context, d ledger.Donor) (*summaryRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ==============================
// Donors
// ==============================

func (r *repository) List(ctx context.Context, q ListQuery) ([]ledger.Donor, int64, error) {
	query := r.db.WithContext(ctx).Model(&ledger.Donor{})
	if q.Search != "" {
		like := predicate.ContainsPattern(q.Search)
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			like, like, like, like,
		)
	}
	if q.Country != "" {
		query = query.Where("UPPER(country) = UPPER(?)", q.Country)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donors []ledger.Donor
	err := query.
		Order("id ASC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&donors).Error
	return donors, total, err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*ledger.Donor, error) {
	var d ledger.Donor
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ==============================
// Giving history
// ==============================

// linkedTo selects the transactions that resolve to d: rows referencing d by
// id, plus rows whose donor reference is empty or dangling and whose email
// matches d, unless a lower-id donor shares that email.
func linkedTo(d ledger.Donor) func(*gorm.DB) *gorm.DB {
	email := ledger.NormalizeEmail(d.Email)
	return func(db *gorm.DB) *gorm.DB {
		if email == "" {
			return db.Where("transactions.donor_id = ?", d.ID)
		}
		return db.Where(`transactions.donor_id = ? OR (
			(transactions.donor_id IS NULL OR NOT EXISTS (SELECT 1 FROM donors k WHERE k.id = transactions.donor_id))
			AND LOWER(TRIM(transactions.email)) = ?
			AND NOT EXISTS (SELECT 1 FROM donors o WHERE LOWER(TRIM(o.email)) = ? AND o.id < ?)
		)`, d.ID, email, email, d.ID)
	}
}

func reportable(db *gorm.DB) *gorm.DB {
	return predicate.NewExactSet(ledger.ReportableStatuses...).Scope("transactions.status")(db)
}

func (r *repository) ListTransactions(ctx context.Context, d ledger.Donor, q TransactionQuery) ([]ledger.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&ledger.Transaction{}).Scopes(linkedTo(d))
	if q.ReportableOnly {
		query = query.Scopes(reportable)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []ledger.Transaction
	err := query.
		Preload("Details").
		Order("transactions.created_at DESC, transactions.id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&txns).Error
	return txns, total, err
}

func (r *repository) Summary(ctx context.Context, d ledger.Donor) (*summaryRow, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Model(&ledger.Transaction{}).
		Select(`COUNT(transactions.id) AS gift_count,
			COALESCE(SUM(transactions.total_amount), 0) AS total_given,
			MIN(transactions.created_at) AS first_gift,
			MAX(transactions.created_at) AS last_gift`).
		Scopes(linkedTo(d), reportable).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
