package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a disposable redis instance.
func setupRedisContainer(ctx context.Context, t *testing.T) (host string, port int) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err = container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return host, mapped.Int()
}

func newRedisQuota(t *testing.T, host string, port int, limit int64) *RedisService {
	t.Helper()
	svc, err := NewRedisService(&Config{
		Backend:    BackendRedis,
		DailyLimit: limit,
		RedisHost:  host,
		RedisPort:  port,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRedisQuota(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port := setupRedisContainer(ctx, t)

	t.Run("CheckAndCommit", func(t *testing.T) {
		svc := newRedisQuota(t, host, port, 3)
		userID := int64(100)

		require.NoError(t, svc.Check(ctx, userID, RoleFree))

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.Commit(ctx, userID, RoleFree))
		}

		err := svc.Check(ctx, userID, RoleFree)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))

		err = svc.Commit(ctx, userID, RoleFree)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))

		used, limit, err := svc.Usage(ctx, userID, RoleFree)
		require.NoError(t, err)
		assert.Equal(t, int64(3), used, "a refused commit must not change the counter")
		assert.Equal(t, int64(3), limit)
	})

	t.Run("UnlimitedRoles", func(t *testing.T) {
		svc := newRedisQuota(t, host, port, 1)
		userID := int64(101)

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.Commit(ctx, userID, RolePro))
		}
		assert.NoError(t, svc.Check(ctx, userID, RoleAdmin))
	})

	t.Run("ConcurrentCommitsNeverExceedLimit", func(t *testing.T) {
		const limit = 5
		svc := newRedisQuota(t, host, port, limit)
		userID := int64(102)

		var wg sync.WaitGroup
		results := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- svc.Commit(ctx, userID, RoleFree)
			}()
		}
		wg.Wait()
		close(results)

		committed := 0
		refused := 0
		for err := range results {
			switch {
			case err == nil:
				committed++
			case errors.Is(err, ErrQuotaExceeded):
				refused++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, limit, committed)
		assert.Equal(t, 15, refused)

		used, _, err := svc.Usage(ctx, userID, RoleFree)
		require.NoError(t, err)
		assert.Equal(t, int64(limit), used)
	})

	t.Run("DateBoundaryResetsCounter", func(t *testing.T) {
		svc := newRedisQuota(t, host, port, 2)
		userID := int64(103)

		require.NoError(t, svc.Commit(ctx, userID, RoleFree))
		require.NoError(t, svc.Commit(ctx, userID, RoleFree))
		require.Error(t, svc.Commit(ctx, userID, RoleFree))

		// Move the clock to tomorrow: a fresh key, a fresh budget.
		svc.now = func() time.Time { return time.Now().AddDate(0, 0, 1) }

		require.NoError(t, svc.Check(ctx, userID, RoleFree))
		require.NoError(t, svc.Commit(ctx, userID, RoleFree))

		used, _, err := svc.Usage(ctx, userID, RoleFree)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used)
	})

	t.Run("KeyIsDayScoped", func(t *testing.T) {
		svc := newRedisQuota(t, host, port, 2)
		svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
		assert.Equal(t, fmt.Sprintf("quota:%d:2026-08-30", 9), svc.key(9))
	})
}
