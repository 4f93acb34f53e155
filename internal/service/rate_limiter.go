package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"demosim/internal/config"
)

// Rate limit key prefixes
const (
	rateLimitProjectPrefix = "ratelimit:project:"
	rateLimitGlobalKey     = "ratelimit:global"
)

// RateLimitStore counts demo runs per fixed window. Implementations live in
// internal/cache (in-memory and Redis). The caller passes its notion of "now"
// so the limiter's clock stays injectable.
type RateLimitStore interface {
	// Count returns the current count and window reset time for a key without
	// mutating it. An expired or absent window reads as zero.
	Count(ctx context.Context, key string, now time.Time) (int, time.Time, error)
	// Incr adds one run to the key's window, starting a fresh window of the
	// given length when the previous one has expired.
	Incr(ctx context.Context, key string, window time.Duration, now time.Time) error
	// Sweep drops expired windows. Stores with native expiry may no-op.
	Sweep(ctx context.Context, now time.Time) error
}

// LimitStatus is the outcome of a rate limit check
type LimitStatus struct {
	Allowed bool      `json:"allowed"`
	Scope   string    `json:"scope,omitempty"` // "project" or "global" when denied
	ResetAt time.Time `json:"resetAt,omitempty"`
}

// RateLimiter enforces the demo run quotas: per-project runs per day and
// global runs per hour. Check never consumes quota; Increment is called only
// after a run actually kicks off.
type RateLimiter struct {
	store  RateLimitStore
	cfg    config.RateLimitConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewRateLimiter creates a rate limiter over the given store. The now func is
// injectable for tests; pass time.Now in production.
func NewRateLimiter(store RateLimitStore, cfg config.RateLimitConfig, now func() time.Time, logger *zap.Logger) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		store:  store,
		cfg:    cfg,
		now:    now,
		logger: logger,
	}
}

// Check reports whether a run for the project would be admitted right now.
// It inspects both windows without consuming quota.
func (r *RateLimiter) Check(ctx context.Context, projectID string) (*LimitStatus, error) {
	now := r.now()

	count, resetAt, err := r.store.Count(ctx, rateLimitProjectPrefix+projectID, now)
	if err != nil {
		return nil, err
	}
	if count >= r.cfg.ProjectLimit {
		return &LimitStatus{Allowed: false, Scope: "project", ResetAt: resetAt}, nil
	}

	count, resetAt, err = r.store.Count(ctx, rateLimitGlobalKey, now)
	if err != nil {
		return nil, err
	}
	if count >= r.cfg.GlobalLimit {
		return &LimitStatus{Allowed: false, Scope: "global", ResetAt: resetAt}, nil
	}

	return &LimitStatus{Allowed: true}, nil
}

// Increment consumes one unit of quota in both windows
func (r *RateLimiter) Increment(ctx context.Context, projectID string) error {
	now := r.now()
	if err := r.store.Incr(ctx, rateLimitProjectPrefix+projectID, r.cfg.ProjectWindow, now); err != nil {
		return err
	}
	return r.store.Incr(ctx, rateLimitGlobalKey, r.cfg.GlobalWindow, now)
}

// StartSweeper periodically evicts expired windows until ctx is cancelled
func (r *RateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.store.Sweep(ctx, r.now()); err != nil {
					r.logger.Warn("rate limit sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
