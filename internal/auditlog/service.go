package auditlog

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error)
	GetStats(ctx context.Context, since time.Time) (*Stats, error)
}

type service struct {
	repo      Repository
	publisher Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, publisher Publisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &service{repo: repo, publisher: publisher, logger: logger.Named("auditlog.service")}
}

// LogAction stores an audit entry and publishes it. A failed publish is logged
// and does not fail the call.
func (s *service) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSON(detailsJSON),
		IPAddress: ip,
		Status:    status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to store audit log", zap.String("action", action), zap.Error(err))
		return apperror.FromStore("create audit log", err)
	}

	event := Event{
		ID:        entry.ID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
		Status:    status,
		CreatedAt: entry.CreatedAt,
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish audit event", zap.String("action", action), zap.Uint("audit_id", entry.ID), zap.Error(err))
	}
	return nil
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, apperror.FromStore("list audit logs", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetAuditLogByID retrieves a specific audit log by ID
func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("audit log", id, err)
	}
	return log, nil
}

// GetStats tallies actions recorded since the given time.
func (s *service) GetStats(ctx context.Context, since time.Time) (*Stats, error) {
	rows, err := s.repo.CountByAction(ctx, since)
	if err != nil {
		return nil, apperror.FromStore("audit log stats", err)
	}

	stats := &Stats{Since: since, ActionBreakdown: make(map[string]int64)}
	for _, row := range rows {
		stats.Total += row.Count
		if row.Status == StatusSuccess {
			stats.SuccessCount += row.Count
		} else {
			stats.FailureCount += row.Count
		}
		stats.ActionBreakdown[row.Action] += row.Count
	}
	return stats, nil
}
