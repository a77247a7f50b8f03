package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis connects to TEST_REDIS_ADDR (default localhost:6379) and
// skips the test when no server answers.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("test redis not available: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// RedisTestKey returns a key unique to the running test.
func RedisTestKey(t *testing.T) string {
	return "storefront:test:" + strings.ReplaceAll(t.Name(), "/", ":")
}
