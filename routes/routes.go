package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/donor-backoffice-backend/config"
	"github.com/sharath018/donor-backoffice-backend/internal/analytics"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/internal/catalog"
	"github.com/sharath018/donor-backoffice-backend/internal/donor"
	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/sharath018/donor-backoffice-backend/internal/user"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/sharath018/donor-backoffice-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the shared clients built in main.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher auditlog.Publisher
	Logger    *zap.Logger
}

func Setup(r *gin.Engine, cfg *config.Config, deps Deps) {
	logger := deps.Logger

	r.GET("/healthz", healthz(deps))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, deps.Redis, logger))
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(deps.DB)
	auditSvc := auditlog.NewService(auditRepo, deps.Publisher, logger)
	auditHandler := auditlog.NewHandler(auditSvc, logger)

	// ========== Users & Auth ==========
	userRepo := user.NewRepository(deps.DB)
	userSvc := user.NewService(userRepo, auditSvc, cfg, logger)
	userHandler := user.NewHandler(userSvc, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", userHandler.Login)
		authGroup.GET("/me", middleware.AuthMiddleware(cfg, userSvc.Caller), userHandler.Me)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, userSvc.Caller))
	protected.Use(middleware.RequireWriteAccess())

	// ========== Analytics ==========
	ledgerStore := ledger.NewRepository(deps.DB)
	analyticsSvc := analytics.NewService(ledgerStore, analytics.NewExporter(), auditSvc, analytics.Options{
		Timeout:     cfg.ReportTimeout(),
		Location:    cfg.Location(),
		SybuntLimit: cfg.SybuntLimit,
	}, logger)
	analyticsHandler := analytics.NewHandler(analyticsSvc, cfg.Location(), logger)

	analyticsRoutes := protected.Group("/analytics")
	{
		analyticsRoutes.GET("/trend", analyticsHandler.GetTrend)
		analyticsRoutes.GET("/breakdown", analyticsHandler.GetBreakdown)
		analyticsRoutes.GET("/breakdown-trend", analyticsHandler.GetBreakdownTrend)
		analyticsRoutes.GET("/distribution", analyticsHandler.GetDistribution)
		analyticsRoutes.GET("/heatmap", analyticsHandler.GetHeatmap)
		analyticsRoutes.GET("/summary", analyticsHandler.GetSummary)
		analyticsRoutes.GET("/top-donors", analyticsHandler.GetTopDonors)
		analyticsRoutes.GET("/cohorts", analyticsHandler.GetCohorts)
	}

	// ========== Catalog ==========
	catalogSvc := catalog.NewService(catalog.NewRepository(deps.DB), auditSvc, logger)
	catalogHandler := catalog.NewHandler(catalogSvc, logger)

	categoryRoutes := protected.Group("/categories")
	{
		categoryRoutes.GET("", catalogHandler.ListCategories)
		categoryRoutes.POST("", catalogHandler.CreateCategory)
		categoryRoutes.GET("/:id", catalogHandler.GetCategory)
		categoryRoutes.PUT("/:id", catalogHandler.UpdateCategory)
	}

	countryRoutes := protected.Group("/countries")
	{
		countryRoutes.GET("", catalogHandler.ListCountries)
		countryRoutes.POST("", catalogHandler.CreateCountry)
		countryRoutes.GET("/:id", catalogHandler.GetCountry)
		countryRoutes.PUT("/:id", catalogHandler.UpdateCountry)
	}

	appealRoutes := protected.Group("/appeals")
	{
		appealRoutes.GET("", catalogHandler.ListAppeals)
		appealRoutes.POST("", catalogHandler.CreateAppeal)
		appealRoutes.GET("/:id", catalogHandler.GetAppeal)
		appealRoutes.PUT("/:id", catalogHandler.UpdateAppeal)

		appealRoutes.GET("/:id/amounts", catalogHandler.ListAmounts)
		appealRoutes.POST("/:id/amounts", catalogHandler.CreateAmount)
		appealRoutes.PUT("/:id/amounts/:amountId", catalogHandler.UpdateAmount)

		appealRoutes.GET("/:id/funds", catalogHandler.ListFunds)
		appealRoutes.POST("/:id/funds", catalogHandler.CreateFund)
		appealRoutes.PUT("/:id/funds/:fundId", catalogHandler.UpdateFund)
	}

	// ========== Donors ==========
	donorHandler := donor.NewHandler(donor.NewService(donor.NewRepository(deps.DB), logger), logger)

	donorRoutes := protected.Group("/donors")
	{
		donorRoutes.GET("", donorHandler.ListDonors)
		donorRoutes.GET("/:id", donorHandler.GetDonor)
		donorRoutes.GET("/:id/transactions", donorHandler.GetDonorTransactions)
	}

	// ========== User management (admin only) ==========
	userRoutes := protected.Group("/users")
	userRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		userRoutes.GET("", userHandler.ListUsers)
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.GET("/:id", userHandler.GetUser)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
	}

	// ========== Audit Logs ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleManager))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/stats", auditHandler.GetAuditLogStats)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}

// healthz reports OK when the database answers a ping.
func healthz(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "OK", "database": "up"}
		code := http.StatusOK

		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			deps.Logger.Warn("health check: database unreachable", zap.Error(err))
			status["status"] = "DEGRADED"
			status["database"] = "down"
			code = http.StatusServiceUnavailable
		}

		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				status["redis"] = "down"
			} else {
				status["redis"] = "up"
			}
		}

		c.JSON(code, status)
	}
}
