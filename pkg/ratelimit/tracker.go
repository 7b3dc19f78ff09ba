package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit tracking.
var (
	comicCooldownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "comic_rate_limit_cooldown_seconds",
		Help: "Remaining upstream cooldown in seconds at the last update",
	})

	comicRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comic_rate_limit_blocks_total",
		Help: "Total number of requests refused during an upstream cooldown",
	})

	comicRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comic_rate_limit_wait_seconds",
		Help:    "Time requests spent waiting on the local pacing limiter",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// ErrCoolingDown is returned when the upstream asked us to back off.
var ErrCoolingDown = errors.New("upstream cooldown active")

// Tracker paces outgoing requests and gates them during upstream cooldowns.
type Tracker struct {
	limiter *rate.Limiter
	redis   *redis.Client
	logger  zerolog.Logger

	mu    sync.Mutex
	local RateLimitState
}

// NewTracker creates a new rate limit tracker allowing perSecond requests with
// the given burst. redisClient may be nil, in which case state stays in process.
func NewTracker(redisClient *redis.Client, perSecond float64, burst int, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Tracker{
		limiter: rate.NewLimiter(limit, burst),
		redis:   redisClient,
		logger:  logger,
	}
}

// GetState retrieves the current cooldown state.
// Returns a zero (healthy) state if nothing has been recorded.
func (t *Tracker) GetState(ctx context.Context) (*RateLimitState, error) {
	if t.redis == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		state := t.local
		return &state, nil
	}

	vals, err := t.redis.MGet(ctx, RedisKeyCooldownUntil, RedisKeyLastStatus, RedisKeyLastUpdate).Result()
	if err != nil {
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	state := &RateLimitState{}
	if unix, ok := parseInt64(vals[0]); ok && unix > 0 {
		state.CooldownUntil = time.Unix(0, unix)
	}
	if status, ok := parseInt64(vals[1]); ok {
		state.LastStatus = int(status)
	}
	if unix, ok := parseInt64(vals[2]); ok && unix > 0 {
		state.LastUpdate = time.Unix(0, unix)
	}

	return state, nil
}

// UpdateFromResponse records the outcome of an upstream response. Only 429
// responses change the cooldown; the Retry-After header sets its length.
func (t *Tracker) UpdateFromResponse(ctx context.Context, status int, headers http.Header) error {
	if status != http.StatusTooManyRequests {
		return nil
	}

	now := time.Now()
	cooldown := parseRetryAfter(headers.Get("Retry-After"), now)
	state := RateLimitState{
		CooldownUntil: now.Add(cooldown),
		LastStatus:    status,
		LastUpdate:    now,
	}

	if t.redis == nil {
		t.mu.Lock()
		t.local = state
		t.mu.Unlock()
	} else {
		pipe := t.redis.Pipeline()
		pipe.Set(ctx, RedisKeyCooldownUntil, state.CooldownUntil.UnixNano(), cooldown)
		pipe.Set(ctx, RedisKeyLastStatus, status, 0)
		pipe.Set(ctx, RedisKeyLastUpdate, now.UnixNano(), 0)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("store rate limit state in redis: %w", err)
		}
	}

	comicCooldownSeconds.Set(cooldown.Seconds())

	t.logger.Warn().
		Dur("cooldown", cooldown).
		Time("cooldown_until", state.CooldownUntil).
		Msg("Upstream rate limited - cooling down")

	return nil
}

// ShouldAllowRequest refuses requests with ErrCoolingDown during an upstream
// cooldown and otherwise waits for a slot on the pacing limiter.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		return err
	}

	if state.CoolingDown() {
		t.logger.Warn().
			Dur("remaining", state.TimeUntilReset()).
			Msg("Upstream cooldown active - blocking request")
		comicRateLimitBlocksTotal.Inc()
		return fmt.Errorf("%w for %s", ErrCoolingDown, state.TimeUntilReset().Round(time.Second))
	}

	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}
	comicRateLimitWaitSeconds.Observe(time.Since(start).Seconds())

	return nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return DefaultCooldown
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return DefaultCooldown
	}

	switch {
	case d <= 0:
		return DefaultCooldown
	case d > MaxCooldown:
		return MaxCooldown
	default:
		return d
	}
}

func parseInt64(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
