package donor

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/utils"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("donor.handler")}
}

func donorID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// ListDonors handles GET /donors
// @Summary List donors
// @Tags Donors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name, email or phone"
// @Param country query string false "ISO country code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/donors [get]
func (h *Handler) ListDonors(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.service.List(c.Request.Context(), ListQuery{
		Search:  c.Query("search"),
		Country: c.Query("country"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, result)
}

// GetDonor handles GET /donors/:id
// @Summary Donor profile with giving summary
// @Tags Donors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/donors/{id} [get]
func (h *Handler) GetDonor(c *gin.Context) {
	id, ok := donorID(c)
	if !ok {
		utils.RespondError(c, h.logger, apperror.Validation("invalid donor id"))
		return
	}
	profile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, profile)
}

// GetDonorTransactions handles GET /donors/:id/transactions
// @Summary Donor giving history
// @Tags Donors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donor ID"
// @Param reportable query bool false "Only Completed and pending transactions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/donors/{id}/transactions [get]
func (h *Handler) GetDonorTransactions(c *gin.Context) {
	id, ok := donorID(c)
	if !ok {
		utils.RespondError(c, h.logger, apperror.Validation("invalid donor id"))
		return
	}
	page, limit := pageParams(c)
	reportableOnly, _ := strconv.ParseBool(c.Query("reportable"))

	result, err := h.service.Transactions(c.Request.Context(), id, TransactionQuery{
		ReportableOnly: reportableOnly,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, result)
}
