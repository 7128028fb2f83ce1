package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REPORT_TIMEOUT_SECONDS", "REPORT_TIMEZONE", "SYBUNT_LIMIT", "RATE_LIMIT_PER_MINUTE", "KAFKA_BROKERS", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReportTimeout())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 500, cfg.SybuntLimit)
	assert.Equal(t, int64(100), cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REPORT_TIMEOUT_SECONDS", "5")
	t.Setenv("REPORT_TIMEZONE", "Europe/London")
	t.Setenv("SYBUNT_LIMIT", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("APP_ENV", "dev")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.ReportTimeout())
	assert.Equal(t, "Europe/London", cfg.Location().String())
	assert.Equal(t, 500, cfg.SybuntLimit)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.IsDev())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{ReportTimezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
