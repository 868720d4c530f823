package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("DB_HOST", "db.internal")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TTL_A", "90s")
	t.Setenv("TTL_B", "120")
	t.Setenv("TTL_C", "soon")

	assert.Equal(t, 90*time.Second, getDuration("TTL_A", time.Minute))
	assert.Equal(t, 2*time.Minute, getDuration("TTL_B", time.Minute))
	assert.Equal(t, time.Minute, getDuration("TTL_C", time.Minute))
	assert.Equal(t, time.Hour, getDuration("TTL_MISSING", time.Hour))
}
