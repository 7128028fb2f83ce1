package catalog

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"github.com/sharath018/donor-backoffice-backend/utils"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("catalog.handler")}
}

func actorFrom(c *gin.Context) auditlog.Actor {
	return auditlog.Actor{UserID: middleware.GetUserID(c), IP: middleware.GetIPFromContext(c)}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func optionalUint(raw string) *uint {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil
	}
	v := uint(id)
	return &v
}

func optionalBool(raw string) *bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// listQuery reads search, filters and pagination from the query string.
func listQuery(c *gin.Context) ListQuery {
	q := ListQuery{
		Search:     c.Query("search"),
		CategoryID: optionalUint(c.Query("category_id")),
		CountryID:  optionalUint(c.Query("country_id")),
		Enabled:    optionalBool(c.Query("enabled")),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return q
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("invalid input: %v", err))
		return false
	}
	return true
}

func (h *Handler) invalidID(c *gin.Context, entity string) {
	utils.RespondError(c, h.logger, apperror.Validation("invalid %s id", entity))
}

func (h *Handler) respond(c *gin.Context, created bool, data interface{}, err error) {
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	if created {
		utils.RespondCreated(c, data)
		return
	}
	utils.RespondOK(c, data)
}

// ========================= CATEGORIES =============================

// CreateCategory handles POST /categories
// @Summary Create a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body CategoryRequest true "Category"
// @Success 201 {object} Category
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), req, actorFrom(c))
	h.respond(c, true, category, err)
}

// UpdateCategory handles PUT /categories/:id
// @Summary Update a category
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body CategoryRequest true "Fields to change"
// @Success 200 {object} Category
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "category")
		return
	}
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.service.UpdateCategory(c.Request.Context(), id, req, actorFrom(c))
	h.respond(c, false, category, err)
}

// GetCategory handles GET /categories/:id
// @Summary Get a category
// @Tags Catalog
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} Category
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/categories/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "category")
		return
	}
	category, err := h.service.GetCategory(c.Request.Context(), id)
	h.respond(c, false, category, err)
}

// ListCategories handles GET /categories
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Param search query string false "Name contains"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	page, err := h.service.ListCategories(c.Request.Context(), listQuery(c))
	h.respond(c, false, page, err)
}

// ========================= COUNTRIES =============================

// CreateCountry handles POST /countries
// @Summary Create a country
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body CountryRequest true "Country"
// @Success 201 {object} Country
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/countries [post]
func (h *Handler) CreateCountry(c *gin.Context) {
	var req CountryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	country, err := h.service.CreateCountry(c.Request.Context(), req, actorFrom(c))
	h.respond(c, true, country, err)
}

// UpdateCountry handles PUT /countries/:id
// @Summary Update a country
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Country ID"
// @Param body body CountryRequest true "Fields to change"
// @Success 200 {object} Country
// @Security BearerAuth
// @Router /api/v1/countries/{id} [put]
func (h *Handler) UpdateCountry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "country")
		return
	}
	var req CountryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	country, err := h.service.UpdateCountry(c.Request.Context(), id, req, actorFrom(c))
	h.respond(c, false, country, err)
}

// GetCountry handles GET /countries/:id
// @Summary Get a country
// @Tags Catalog
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} Country
// @Security BearerAuth
// @Router /api/v1/countries/{id} [get]
func (h *Handler) GetCountry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "country")
		return
	}
	country, err := h.service.GetCountry(c.Request.Context(), id)
	h.respond(c, false, country, err)
}

// ListCountries handles GET /countries
// @Summary List countries
// @Tags Catalog
// @Produce json
// @Param search query string false "Name or code contains"
// @Param enabled query bool false "Only enabled or disabled"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/countries [get]
func (h *Handler) ListCountries(c *gin.Context) {
	page, err := h.service.ListCountries(c.Request.Context(), listQuery(c))
	h.respond(c, false, page, err)
}

// ========================= APPEALS =============================

// CreateAppeal handles POST /appeals
// @Summary Create an appeal
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body AppealRequest true "Appeal"
// @Success 201 {object} Appeal
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/appeals [post]
func (h *Handler) CreateAppeal(c *gin.Context) {
	var req AppealRequest
	if !h.bindJSON(c, &req) {
		return
	}
	appeal, err := h.service.CreateAppeal(c.Request.Context(), req, actorFrom(c))
	h.respond(c, true, appeal, err)
}

// UpdateAppeal handles PUT /appeals/:id
// @Summary Update an appeal
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param body body AppealRequest true "Fields to change"
// @Success 200 {object} Appeal
// @Security BearerAuth
// @Router /api/v1/appeals/{id} [put]
func (h *Handler) UpdateAppeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	var req AppealRequest
	if !h.bindJSON(c, &req) {
		return
	}
	appeal, err := h.service.UpdateAppeal(c.Request.Context(), id, req, actorFrom(c))
	h.respond(c, false, appeal, err)
}

// GetAppeal handles GET /appeals/:id
// @Summary Get an appeal with its amounts and funds
// @Tags Catalog
// @Produce json
// @Param id path int true "Appeal ID"
// @Success 200 {object} Appeal
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/appeals/{id} [get]
func (h *Handler) GetAppeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	appeal, err := h.service.GetAppeal(c.Request.Context(), id)
	h.respond(c, false, appeal, err)
}

// ListAppeals handles GET /appeals
// @Summary List appeals
// @Tags Catalog
// @Produce json
// @Param search query string false "Name or description contains"
// @Param category_id query int false "Category"
// @Param country_id query int false "Country"
// @Param enabled query bool false "Only enabled or disabled"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/appeals [get]
func (h *Handler) ListAppeals(c *gin.Context) {
	page, err := h.service.ListAppeals(c.Request.Context(), listQuery(c))
	h.respond(c, false, page, err)
}

// ========================= AMOUNTS & FUNDS =============================

// CreateAmount handles POST /appeals/:id/amounts
// @Summary Add a suggested amount to an appeal
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param body body AmountRequest true "Amount"
// @Success 201 {object} Amount
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/amounts [post]
func (h *Handler) CreateAmount(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	var req AmountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, err := h.service.CreateAmount(c.Request.Context(), appealID, req, actorFrom(c))
	h.respond(c, true, amount, err)
}

// UpdateAmount handles PUT /appeals/:id/amounts/:amountId
// @Summary Update a suggested amount
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param amountId path int true "Amount ID"
// @Param body body AmountRequest true "Fields to change"
// @Success 200 {object} Amount
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/amounts/{amountId} [put]
func (h *Handler) UpdateAmount(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	id, ok := pathID(c, "amountId")
	if !ok {
		h.invalidID(c, "amount")
		return
	}
	var req AmountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, err := h.service.UpdateAmount(c.Request.Context(), appealID, id, req, actorFrom(c))
	h.respond(c, false, amount, err)
}

// ListAmounts handles GET /appeals/:id/amounts
// @Summary List suggested amounts of an appeal
// @Tags Catalog
// @Produce json
// @Param id path int true "Appeal ID"
// @Success 200 {array} Amount
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/amounts [get]
func (h *Handler) ListAmounts(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	amounts, err := h.service.ListAmounts(c.Request.Context(), appealID)
	h.respond(c, false, amounts, err)
}

// CreateFund handles POST /appeals/:id/funds
// @Summary Add a fund to an appeal
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param body body FundRequest true "Fund"
// @Success 201 {object} Fund
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/funds [post]
func (h *Handler) CreateFund(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	var req FundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	fund, err := h.service.CreateFund(c.Request.Context(), appealID, req, actorFrom(c))
	h.respond(c, true, fund, err)
}

// UpdateFund handles PUT /appeals/:id/funds/:fundId
// @Summary Update a fund
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Appeal ID"
// @Param fundId path int true "Fund ID"
// @Param body body FundRequest true "Fields to change"
// @Success 200 {object} Fund
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/funds/{fundId} [put]
func (h *Handler) UpdateFund(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	id, ok := pathID(c, "fundId")
	if !ok {
		h.invalidID(c, "fund")
		return
	}
	var req FundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	fund, err := h.service.UpdateFund(c.Request.Context(), appealID, id, req, actorFrom(c))
	h.respond(c, false, fund, err)
}

// ListFunds handles GET /appeals/:id/funds
// @Summary List funds of an appeal
// @Tags Catalog
// @Produce json
// @Param id path int true "Appeal ID"
// @Success 200 {array} Fund
// @Security BearerAuth
// @Router /api/v1/appeals/{id}/funds [get]
func (h *Handler) ListFunds(c *gin.Context) {
	appealID, ok := pathID(c, "id")
	if !ok {
		h.invalidID(c, "appeal")
		return
	}
	funds, err := h.service.ListFunds(c.Request.Context(), appealID)
	h.respond(c, false, funds, err)
}
