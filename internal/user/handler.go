package user

import (
	"errors"
	"net/http"
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
	return &Handler{service: service, logger: logger.Named("user.handler")}
}

func actorFrom(c *gin.Context) auditlog.Actor {
	return auditlog.Actor{UserID: middleware.GetUserID(c), IP: middleware.GetIPFromContext(c)}
}

func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchanges email and password for a bearer access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("email and password are required"))
		return
	}

	token, err := h.service.Login(c.Request.Context(), req, middleware.GetIPFromContext(c))
	if errors.Is(err, ErrInvalidCredentials) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, token)
}

// Me handles GET /auth/me
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated"})
		return
	}
	u, err := h.service.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, u)
}

// CreateUser handles POST /users
// @Summary Create a back office user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequest true "User"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("invalid input: %v", err))
		return
	}
	u, err := h.service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondCreated(c, u)
}

// GetUser handles GET /users/:id
// @Summary Get a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		utils.RespondError(c, h.logger, apperror.Validation("invalid user id"))
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, u)
}

// UpdateUser handles PUT /users/:id
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		utils.RespondError(c, h.logger, apperror.Validation("invalid user id"))
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, h.logger, apperror.Validation("invalid input: %v", err))
		return
	}
	u, err := h.service.Update(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, u)
}

// ListUsers handles GET /users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email"
// @Param role query string false "Role"
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	q := ListQuery{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}
	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, h.logger, err)
		return
	}
	utils.RespondOK(c, result)
}
