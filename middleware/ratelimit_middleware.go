package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/services"
	"github.com/upb/wellchat-api/services/ratelimit"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// Admitter counts a request against a scope key
type Admitter interface {
	Admit(ctx context.Context, scopeKey string, limit int, window time.Duration) (*ratelimit.Result, error)
}

// RateLimitMiddleware applies per-identity fixed-window limits
type RateLimitMiddleware struct {
	limiter Admitter
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware
func NewRateLimitMiddleware(limiter Admitter, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// Limit allows each identity at most limit requests per window on scope.
// It must run after RequireAuth or RequireAdmin.
func (m *RateLimitMiddleware) Limit(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, ok := IdentityFromContext(ctx)
			if !ok {
				m.logger.Error("rate limit applied without identity",
					observability.RequestIDField(ctx),
					zap.String("scope", scope))
				_ = utils.WriteInternalServerError(w, "")
				return
			}

			result, err := m.limiter.Admit(ctx, ratelimit.ScopeKey(scope, identity.ID), limit, window)
			if result != nil {
				setRateLimitHeaders(w, result)
			}
			if err != nil {
				m.writeError(w, r, scope, identity.ID, result, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) writeError(w http.ResponseWriter, r *http.Request, scope, subject string, result *ratelimit.Result, err error) {
	if services.IsRateLimitError(err) && result != nil {
		retryAfter := result.RetryAfter(m.now())
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter/time.Second), 10))
		m.logger.Warn("rate limit exceeded",
			observability.RequestIDField(r.Context()),
			zap.String("scope", scope),
			zap.String("subject", subject))
		_ = utils.WriteTooManyRequests(w, "", services.GetErrorDetails(err))
		return
	}

	m.logger.Error("rate limit check failed",
		observability.RequestIDField(r.Context()),
		zap.String("scope", scope),
		zap.Error(err))
	if services.HTTPStatus(err) == http.StatusServiceUnavailable {
		_ = utils.WriteServiceUnavailable(w, "Rate limiter unavailable")
		return
	}
	_ = utils.WriteInternalServerError(w, "")
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
