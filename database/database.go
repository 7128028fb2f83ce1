package database

import (
	"fmt"
	"time"

	"github.com/sharath018/donor-backoffice-backend/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

// DB is the shared connection set by Connect.
var DB *gorm.DB

// DSN builds the postgres connection string. Timestamps are read in UTC;
// report bucketing applies the configured report timezone itself.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

// Connect opens the database, retrying while postgres comes up.
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	logger = logger.Named("database")

	level := gormlogger.Warn
	if cfg.IsDev() {
		level = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(DSN(cfg)), gormCfg)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	DB = db
	return db, nil
}

// Migrate creates the tables owned by the back office. Ledger tables are
// managed by the payment system and only read here.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
