package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T, image string) *redis.Client {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run against a Redis container")
	}
	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func limitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New()
	app.Post("/api/upload", rl.ByIP(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func checkBlocksAfterLimit(t *testing.T, rdb *redis.Client) {
	t.Helper()
	app := limitedApp(NewRateLimiter(rdb, "test-upload", 2, time.Minute, zap.NewNop().Sugar()))

	want := []int{200, 200, 429}
	for i, code := range want {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != code {
			t.Errorf("request %d: status = %d, want %d", i+1, resp.StatusCode, code)
		}
	}

	keys, err := rdb.Keys(context.Background(), "test-upload:*").Result()
	if err != nil || len(keys) != 1 {
		t.Fatalf("keys = %v, err %v", keys, err)
	}
	ttl, err := rdb.TTL(context.Background(), keys[0]).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("window ttl = %v", ttl)
	}
}

// Redis 6 lacks EXPIRE NX, so the window must be set with a plain EXPIRE.
func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	for _, image := range []string{"redis:6-alpine", "redis:7-alpine"} {
		t.Run(image, func(t *testing.T) {
			checkBlocksAfterLimit(t, startRedis(t, image))
		})
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	// nothing listens on this port
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	app := limitedApp(NewRateLimiter(rdb, "test-upload", 1, time.Minute, zap.NewNop().Sugar()))

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200 while Redis is down", resp.StatusCode)
		}
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	app := limitedApp(NewRateLimiter(nil, "test-upload", 0, time.Minute, zap.NewNop().Sugar()))
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
