package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitForRole(t *testing.T) {
	cfg := &Config{DailyLimit: 50}

	assert.Equal(t, int64(50), cfg.limitFor(RoleFree))
	assert.Equal(t, int64(0), cfg.limitFor(RolePro), "pro is unlimited")
	assert.Equal(t, int64(0), cfg.limitFor(RoleAdmin), "admin is unlimited")
	assert.Equal(t, int64(50), cfg.limitFor(Role("unknown")), "unknown roles get the free limit")
}

func TestNewConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "memcached")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("QUOTA_BACKEND", "")
	t.Setenv("QUOTA_DAILY_LIMIT", "")

	cfg, err := NewConfig()
	assert.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, int64(50), cfg.DailyLimit)
}
