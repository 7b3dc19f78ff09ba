package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "missing", value: "", want: DefaultCooldown},
		{name: "seconds", value: "12", want: 12 * time.Second},
		{name: "zero", value: "0", want: DefaultCooldown},
		{name: "garbage", value: "soon", want: DefaultCooldown},
		{name: "capped", value: "86400", want: MaxCooldown},
		{name: "http date", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestTracker_LocalCooldown(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(nil, 0, 1, zerolog.Nop())

	if err := tracker.ShouldAllowRequest(ctx); err != nil {
		t.Fatalf("fresh tracker blocked request: %v", err)
	}

	// Non-429 responses leave the state alone.
	if err := tracker.UpdateFromResponse(ctx, http.StatusInternalServerError, http.Header{}); err != nil {
		t.Fatalf("UpdateFromResponse(500): %v", err)
	}
	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if state.CoolingDown() {
		t.Fatal("500 response must not start a cooldown")
	}

	headers := http.Header{}
	headers.Set("Retry-After", "60")
	if err := tracker.UpdateFromResponse(ctx, http.StatusTooManyRequests, headers); err != nil {
		t.Fatalf("UpdateFromResponse(429): %v", err)
	}

	state, err = tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if !state.CoolingDown() {
		t.Fatal("expected cooldown after 429")
	}
	if state.LastStatus != http.StatusTooManyRequests {
		t.Errorf("LastStatus = %d, want 429", state.LastStatus)
	}

	err = tracker.ShouldAllowRequest(ctx)
	if !errors.Is(err, ErrCoolingDown) {
		t.Errorf("ShouldAllowRequest() error = %v, want ErrCoolingDown", err)
	}
}

func TestTracker_PacingRespectsContext(t *testing.T) {
	tracker := NewTracker(nil, 0.001, 1, zerolog.Nop())

	ctx := context.Background()
	if err := tracker.ShouldAllowRequest(ctx); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tracker.ShouldAllowRequest(ctx); err == nil {
		t.Error("expected limiter wait to fail once the burst is spent")
	}
}

// setupTestRedis creates a test Redis client.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestTracker_SharedCooldown(t *testing.T) {
	redisClient := setupTestRedis(t)
	ctx := context.Background()

	first := NewTracker(redisClient, 0, 1, zerolog.Nop())
	second := NewTracker(redisClient, 0, 1, zerolog.Nop())

	state, err := second.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState on empty redis: %v", err)
	}
	if state.CoolingDown() {
		t.Fatal("empty redis should report no cooldown")
	}

	headers := http.Header{}
	headers.Set("Retry-After", "30")
	if err := first.UpdateFromResponse(ctx, http.StatusTooManyRequests, headers); err != nil {
		t.Fatalf("UpdateFromResponse: %v", err)
	}

	if err := second.ShouldAllowRequest(ctx); !errors.Is(err, ErrCoolingDown) {
		t.Errorf("second tracker error = %v, want ErrCoolingDown", err)
	}

	ttl, err := redisClient.TTL(ctx, RedisKeyCooldownUntil).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Errorf("cooldown key TTL = %v, want (0, 30s]", ttl)
	}
}
