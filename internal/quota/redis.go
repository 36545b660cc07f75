package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter keys live for two days so a key written just before midnight
// still expires without a sweeper.
const counterTTLSeconds = 172800

// commitScript atomically increments today's counter and rolls the
// increment back when it would cross the limit. ARGV[1] is the limit
// (0 = unlimited), ARGV[2] the key TTL in seconds. Returns -1 when the
// budget is exhausted, otherwise the new count.
const commitScript = `
local current = redis.call("incr", KEYS[1])
if current == 1 then
	redis.call("expire", KEYS[1], ARGV[2])
end
local limit = tonumber(ARGV[1])
if limit > 0 and current > limit then
	redis.call("decr", KEYS[1])
	return -1
end
return current
`

// RedisService counts messages in day-keyed redis counters.
type RedisService struct {
	client *redis.Client
	cfg    *Config
	now    func() time.Time
}

var _ Service = (*RedisService)(nil)

// NewRedisService connects to redis and verifies the connection.
func NewRedisService(cfg *Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("quota: redis ping: %w", err)
	}

	return &RedisService{client: client, cfg: cfg, now: time.Now}, nil
}

// key is day-scoped, so the date boundary reset is just a new key.
func (s *RedisService) key(userID int64) string {
	return fmt.Sprintf("quota:%d:%s", userID, s.now().Format("2006-01-02"))
}

// Check reports whether the user still has budget today.
func (s *RedisService) Check(ctx context.Context, userID int64, role Role) error {
	limit := s.cfg.limitFor(role)
	if limit == 0 {
		return nil
	}

	used, err := s.client.Get(ctx, s.key(userID)).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("quota: redis get: %w", err)
	}
	if used >= limit {
		return ErrQuotaExceeded
	}
	return nil
}

// Commit consumes one unit via the atomic Lua script.
func (s *RedisService) Commit(ctx context.Context, userID int64, role Role) error {
	limit := s.cfg.limitFor(role)

	result, err := s.client.Eval(ctx, commitScript, []string{s.key(userID)}, limit, counterTTLSeconds).Int64()
	if err != nil {
		return fmt.Errorf("quota: redis eval: %w", err)
	}
	if result == -1 {
		return ErrQuotaExceeded
	}
	return nil
}

// Usage reports today's count and the applicable limit.
func (s *RedisService) Usage(ctx context.Context, userID int64, role Role) (int64, int64, error) {
	used, err := s.client.Get(ctx, s.key(userID)).Int64()
	if err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("quota: redis get: %w", err)
	}
	return used, s.cfg.limitFor(role), nil
}

// Close releases the redis connection.
func (s *RedisService) Close() error {
	return s.client.Close()
}
