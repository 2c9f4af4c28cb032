package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "CART_BACKEND", "CART_ID", "IDEMPOTENCY_TTL", "SERIALIZE_LINE_OPS", "RUN_LOCAL", "HTTP_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "default", cfg.CartID)
	assert.Equal(t, 48*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.SerializeLineOps)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_BACKEND", " DynamoDB ")
	t.Setenv("CART_ID", "kiosk-7")
	t.Setenv("IDEMPOTENCY_TTL", "15m")
	t.Setenv("SERIALIZE_LINE_OPS", "true")
	t.Setenv("RUN_LOCAL", "1")

	cfg := Load()
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, "kiosk-7", cfg.CartID)
	assert.Equal(t, 15*time.Minute, cfg.IdempotencyTTL)
	assert.True(t, cfg.SerializeLineOps)
	assert.True(t, cfg.RunLocal)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CART_BACKEND", "postgres")
	t.Setenv("IDEMPOTENCY_TTL", "-1h")
	t.Setenv("SERIALIZE_LINE_OPS", "maybe")

	cfg := Load()
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 48*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.SerializeLineOps)
}
