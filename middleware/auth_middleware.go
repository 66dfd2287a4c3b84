package middleware

import (
	"context"
	"net/http"

	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/services"
	"github.com/upb/wellchat-api/utils"
	"go.uber.org/zap"
)

// Authenticator resolves an Authorization header to an identity
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.Identity, error)
	AuthenticateAdmin(ctx context.Context, header string) (*models.Identity, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// RequireAuth admits requests carrying a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.guard(m.auth.Authenticate, next)
}

// RequireAdmin admits requests whose provisioned identity is an admin
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.guard(m.auth.AuthenticateAdmin, next)
}

func (m *AuthMiddleware) guard(authenticate func(context.Context, string) (*models.Identity, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := authenticate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			m.logger.Warn("request rejected",
				observability.RequestIDField(ctx),
				zap.String("path", r.URL.Path),
				zap.String("reason", string(services.GetErrorType(err))),
				zap.Error(err))
			writeAuthError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// writeAuthError maps a gate error onto its HTTP response
func writeAuthError(w http.ResponseWriter, err error) {
	switch status := services.HTTPStatus(err); status {
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		msg := "Invalid or expired token"
		if services.GetErrorType(err) == services.ErrorTypeMissingCredential {
			msg = "Missing or invalid authorization"
		}
		_ = utils.WriteUnauthorized(w, msg)
	case http.StatusForbidden:
		_ = utils.WriteForbidden(w, "Admin role required")
	case http.StatusServiceUnavailable:
		_ = utils.WriteServiceUnavailable(w, "Authentication temporarily unavailable")
	default:
		_ = utils.WriteInternalServerError(w, "")
	}
}
