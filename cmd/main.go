package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/donor-backoffice-backend/config"
	"github.com/sharath018/donor-backoffice-backend/database"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/internal/catalog"
	"github.com/sharath018/donor-backoffice-backend/internal/user"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"github.com/sharath018/donor-backoffice-backend/routes"
	"go.uber.org/zap"
)

// @title Donor Back Office API
// @version 1.0
// @description Catalog, donor directory and reporting endpoints of the donor back office.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}

	logger.Info("running database migrations")
	if err := database.Migrate(db,
		&auditlog.AuditLog{},
		&user.User{},
		&catalog.Category{},
		&catalog.Country{},
		&catalog.Appeal{},
		&catalog.Amount{},
		&catalog.Fund{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	rdb := connectRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher := auditlog.NewNoopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		publisher = auditlog.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic, logger)
		logger.Info("audit events publish to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaAuditTopic),
		)
	}
	defer publisher.Close()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(cors.New(corsConfig(cfg)))

	routes.Setup(router, cfg, routes.Deps{
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// exports can take up to the report timeout plus rendering
		WriteTimeout: cfg.ReportTimeout() + 30*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// rate limiter then keeps its counters in memory.
func connectRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-memory rate limits", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		rdb.Close()
		return nil
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return rdb
}

func corsConfig(cfg *config.Config) cors.Config {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
