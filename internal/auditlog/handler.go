package auditlog

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/utils"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("auditlog.handler"), now: time.Now}
}

// GetAuditLogs handles GET /auditlogs - retrieves audit logs with filtering and pagination
// @Summary Get audit logs
// @Description Retrieve audit logs with optional filters and pagination (admin only)
// @Tags AuditLog
// @Produce json
// @Param user_id query uint false "Filter by user ID"
// @Param action query string false "Filter by action (partial match)"
// @Param status query string false "Filter by status"
// @Param from_date query string false "Filter from date (YYYY-MM-DD)"
// @Param to_date query string false "Filter to date (YYYY-MM-DD), inclusive"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Number of records per page (default: 20)"
// @Success 200 {object} PaginatedAuditLogs
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/auditlogs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	filter := AuditLogFilter{}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := strconv.ParseUint(userIDStr, 10, 32); err == nil {
			uid := uint(userID)
			filter.UserID = &uid
		}
	}

	filter.Action = c.Query("action")
	filter.Status = c.Query("status")

	if fromDateStr := c.Query("from_date"); fromDateStr != "" {
		fromDate, err := time.Parse("2006-01-02", fromDateStr)
		if err != nil {
			utils.RespondError(c, h.logger, apperror.Validation("invalid from_date format, use YYYY-MM-DD"))
			return
		}
		filter.FromDate = &fromDate
	}

	if toDateStr := c.Query("to_date"); toDateStr != "" {
		toDate, err := time.Parse("2006-01-02", toDateStr)
		if err != nil {
			utils.RespondError(c, h.logger, apperror.Validation("invalid to_date format, use YYYY-MM-DD"))
			return
		}
		// exclusive upper bound
		nextDay := toDate.AddDate(0, 0, 1)
		filter.ToDate = &nextDay
	}

	filter.Page = 1
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}

	filter.Limit = 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	utils.RespondOK(c, result)
}

// GetAuditLogByID handles GET /auditlogs/:id - retrieves a specific audit log by ID
// @Summary Get audit log by ID
// @Tags AuditLog
// @Produce json
// @Param id path uint true "Audit Log ID"
// @Success 200 {object} AuditLogResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/auditlogs/{id} [get]
func (h *Handler) GetAuditLogByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("invalid audit log id"))
		return
	}

	log, err := h.service.GetAuditLogByID(c.Request.Context(), uint(id))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	utils.RespondOK(c, log)
}

// GetAuditLogStats handles GET /auditlogs/stats - action counts for the last days
// @Summary Get audit log statistics
// @Tags AuditLog
// @Produce json
// @Param days query int false "Look-back window in days (default: 7, max: 90)"
// @Success 200 {object} Stats
// @Failure 500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/auditlogs/stats [get]
func (h *Handler) GetAuditLogStats(c *gin.Context) {
	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 && d <= 90 {
			days = d
		}
	}

	stats, err := h.service.GetStats(c.Request.Context(), h.now().AddDate(0, 0, -days))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	utils.RespondOK(c, stats)
}
