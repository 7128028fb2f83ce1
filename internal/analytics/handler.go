package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"github.com/sharath018/donor-backoffice-backend/utils"
	"go.uber.org/zap"
)

// Handler exposes the reporting engine over HTTP
type Handler struct {
	service Service
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(svc Service, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: svc, loc: loc, now: time.Now, logger: logger.Named("analytics.handler")}
}

// bind reads the query string and resolves the common filter set.
func (h *Handler) bind(c *gin.Context) (Query, Filter, bool) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("invalid query parameters"))
		return q, Filter{}, false
	}
	f, err := ResolveFilter(q, h.loc)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return q, Filter{}, false
	}
	return q, f, true
}

func (h *Handler) sendFile(c *gin.Context, file *Export, err error) {
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondFile(c, file.Filename, file.MimeType, file.Data)
}

// GetTrend handles GET /analytics/trend
// @Summary Daily or weekly trend of one metric
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param granularity query string false "daily (default) or weekly"
// @Param metric query string true "revenue|donations|mrr|recurring_share|active_plans|new_plans|canceled_plans"
// @Param appealIds query string false "Comma-separated appeal ids"
// @Param fundIds query string false "Comma-separated fund ids"
// @Param countries query string false "Comma-separated country codes"
// @Param paymentTypes query string false "Comma-separated payment methods"
// @Param frequencyClass query string false "one-time|recurring|recurring-first|recurring-next"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/trend [get]
func (h *Handler) GetTrend(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	metric, err := ResolveMetric(q.Metric, TrendMetrics)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	points, err := h.service.Trend(c.Request.Context(), f, metric)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{
		"metric":      metric,
		"granularity": f.Granularity,
		"points":      points,
	})
}

// GetBreakdown handles GET /analytics/breakdown
// @Summary Revenue and distinct donations grouped by a dimension
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param dimension query string true "country|appeal|fund|payment_method|frequency"
// @Param format query string false "csv|excel|pdf, JSON when empty"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/breakdown [get]
func (h *Handler) GetBreakdown(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	dim, err := ResolveDimension(q.Dimension)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	format, err := ResolveFormat(q.Format)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	if format != "" {
		file, err := h.service.ExportBreakdown(c.Request.Context(), f, dim, format, middleware.GetUserID(c), middleware.GetIPFromContext(c))
		h.sendFile(c, file, err)
		return
	}

	rows, err := h.service.Breakdown(c.Request.Context(), f, dim)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{"dimension": dim, "rows": rows})
}

// GetBreakdownTrend handles GET /analytics/breakdown-trend
// @Summary Per-group trend with a fixed set of active groups
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param dimension query string true "country|appeal|fund|payment_method|frequency"
// @Param metric query string true "revenue|donations"
// @Param granularity query string false "daily (default) or weekly"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/breakdown-trend [get]
func (h *Handler) GetBreakdownTrend(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	dim, err := ResolveDimension(q.Dimension)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	metric, err := ResolveMetric(q.Metric, BreakdownTrendMetrics)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	series, err := h.service.BreakdownTrend(c.Request.Context(), f, dim, metric)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{
		"dimension":   dim,
		"metric":      metric,
		"granularity": f.Granularity,
		"series":      series,
	})
}

// GetDistribution handles GET /analytics/distribution
// @Summary Active plans by monthly-equivalent amount range, as of endDate
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv|excel|pdf, JSON when empty"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/distribution [get]
func (h *Handler) GetDistribution(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	format, err := ResolveFormat(q.Format)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	if format != "" {
		file, err := h.service.ExportDistribution(c.Request.Context(), f, format, middleware.GetUserID(c), middleware.GetIPFromContext(c))
		h.sendFile(c, file, err)
		return
	}

	rows, err := h.service.Distribution(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{"asOf": f.Window.To.Format(DateLayout), "rows": rows})
}

// GetHeatmap handles GET /analytics/heatmap
// @Summary Donations by day of week (Monday=0) and hour of day
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv|excel|pdf, JSON when empty"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/heatmap [get]
func (h *Handler) GetHeatmap(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	format, err := ResolveFormat(q.Format)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	if format != "" {
		file, err := h.service.ExportHeatmap(c.Request.Context(), f, format, middleware.GetUserID(c), middleware.GetIPFromContext(c))
		h.sendFile(c, file, err)
		return
	}

	cells, err := h.service.Heatmap(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{"cells": cells})
}

// GetSummary handles GET /analytics/summary
// @Summary Headline totals for the window
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} Summary
// @Security BearerAuth
// @Router /api/v1/analytics/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	_, f, ok := h.bind(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, summary)
}

// GetTopDonors handles GET /analytics/top-donors
// @Summary Donors ranked by giving inside the window
// @Tags Analytics
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param limit query int false "Number of donors (default 10, max 100)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/top-donors [get]
func (h *Handler) GetTopDonors(c *gin.Context) {
	q, f, ok := h.bind(c)
	if !ok {
		return
	}
	limit, err := ResolveLimit(q.Limit, 10, 100)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	donors, err := h.service.TopDonors(c.Request.Context(), f, limit)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, gin.H{"donors": donors})
}

// GetCohorts handles GET /analytics/cohorts
// @Summary Donor lapse cohorts and lifetime value tiers
// @Tags Analytics
// @Produce json
// @Param segment query string true "lybunt|sybunt|value_tiers"
// @Param year query int false "Evaluation year, defaults to the current year"
// @Param format query string false "csv|excel|pdf, JSON when empty"
// @Success 200 {object} Segmentation
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/analytics/cohorts [get]
func (h *Handler) GetCohorts(c *gin.Context) {
	segment, err := ResolveSegment(c.Query("segment"))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	year, err := ResolveYear(c.Query("year"), h.now(), h.loc)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	format, err := ResolveFormat(c.Query("format"))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}

	if format != "" {
		file, err := h.service.ExportCohort(c.Request.Context(), segment, year, format, middleware.GetUserID(c), middleware.GetIPFromContext(c))
		h.sendFile(c, file, err)
		return
	}

	seg, err := h.service.Cohort(c.Request.Context(), segment, year)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, seg)
}
