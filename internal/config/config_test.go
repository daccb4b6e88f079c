package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "JWT_REFRESH_TTL", "REFRESH_STRICT", "KAFKA_BROKERS", "ES_INDEX"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.False(t, cfg.RefreshStrict)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "login_events", cfg.ESIndex)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("DB_DRIVER", "pq")
	t.Setenv("JWT_REFRESH_TTL", "336h")
	t.Setenv("REFRESH_STRICT", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, "pq", cfg.DBDriver)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTTL)
	assert.True(t, cfg.RefreshStrict)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	t.Parallel()

	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_REFRESH_TTL")
}
