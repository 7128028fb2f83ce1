package auditlog

import (
	"context"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*AuditLogResponse, error)
	CountByAction(ctx context.Context, since time.Time) ([]ActionCount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `
	al.id, al.user_id, al.action, al.details, al.ip_address, al.status, al.created_at,
	u.full_name as user_name
`

// Create inserts a new audit log entry
func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	var logs []AuditLogResponse
	var total int64

	query := r.db.WithContext(ctx).
		Table("audit_logs al").
		Joins("LEFT JOIN users u ON al.user_id = u.id")

	if filter.UserID != nil {
		query = query.Where("al.user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("al.action ILIKE ?", predicate.ContainsPattern(filter.Action))
	}
	if filter.Status != "" {
		query = query.Where("al.status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("al.created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("al.created_at < ?", *filter.ToDate)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Select(selectColumns).
		Order("al.created_at DESC, al.id DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// GetByID retrieves a specific audit log by ID
func (r *repository) GetByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	var log AuditLogResponse

	err := r.db.WithContext(ctx).
		Table("audit_logs al").
		Select(selectColumns).
		Joins("LEFT JOIN users u ON al.user_id = u.id").
		Where("al.id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}

	return &log, nil
}

// CountByAction aggregates entries per action and status.
func (r *repository) CountByAction(ctx context.Context, since time.Time) ([]ActionCount, error) {
	var rows []ActionCount
	err := r.db.WithContext(ctx).
		Model(&AuditLog{}).
		Select("action, status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("action, status").
		Order("action").
		Scan(&rows).Error
	return rows, err
}
