package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
)

const keyPrefix = "rl:"

// CounterStore is an atomic counter with expiry, such as Redis INCR/EXPIRE
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Result represents the outcome of an admit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the time until the window resets, rounded up to seconds
func (r *Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// Service implements a fixed-window request counter.
// A caller may see up to 2x limit requests across a window boundary.
type Service struct {
	store   CounterStore
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewService creates a new rate limit service
func NewService(store CounterStore, logger *zap.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// BucketKey returns the counter key for scopeKey in the window containing now
func BucketKey(scopeKey string, window time.Duration, now time.Time) string {
	secs := int64(window / time.Second)
	return fmt.Sprintf("%s%s:%d", keyPrefix, scopeKey, now.Unix()/secs)
}

// ScopeKey joins a route scope and a caller ID
func ScopeKey(scope, callerID string) string {
	return scope + ":" + callerID
}

// Admit counts one request against scopeKey. When the count exceeds limit
// it returns a non-allowed result together with a rate_limited error.
func (s *Service) Admit(ctx context.Context, scopeKey string, limit int, window time.Duration) (*Result, error) {
	if limit <= 0 || window < time.Second {
		return nil, services.NewDomainError(services.ErrorTypeInternal,
			fmt.Sprintf("invalid rate limit %d per %s", limit, window), nil)
	}

	now := s.now()
	secs := int64(window / time.Second)
	bucket := BucketKey(scopeKey, window, now)
	resetAt := time.Unix((now.Unix()/secs+1)*secs, 0)

	count, err := s.store.Incr(ctx, bucket)
	if err != nil {
		s.logger.Error("rate limit counter increment failed", zap.String("bucket", bucket), zap.Error(err))
		return nil, services.NewDomainError(services.ErrorTypeRateLimiterUnavailable, "rate limiter unavailable", err)
	}

	if count == 1 {
		if err := s.store.Expire(ctx, bucket, time.Duration(secs)*time.Second); err != nil {
			s.logger.Error("rate limit counter expiry failed", zap.String("bucket", bucket), zap.Error(err))
			return nil, services.NewDomainError(services.ErrorTypeRateLimiterUnavailable, "rate limiter unavailable", err)
		}
	}

	result := &Result{
		Allowed: count <= int64(limit),
		Limit:   limit,
		ResetAt: resetAt,
	}
	if result.Allowed {
		result.Remaining = limit - int(count)
		s.metrics.RecordRateLimit(scopeOf(scopeKey), "allowed")
		return result, nil
	}

	s.metrics.RecordRateLimit(scopeOf(scopeKey), "rejected")
	s.logger.Debug("rate limit exceeded",
		zap.String("scope_key", scopeKey),
		zap.Int64("count", count),
		zap.Int("limit", limit))

	return result, services.NewDomainError(services.ErrorTypeRateLimited,
		fmt.Sprintf("limit of %d requests per %s exceeded", limit, window), nil).
		WithDetail("limit", limit).
		WithDetail("reset_at", resetAt.Unix())
}

// scopeOf returns the route scope part of a scope key for metric labels
func scopeOf(scopeKey string) string {
	scope, _, _ := strings.Cut(scopeKey, ":")
	return scope
}
