package provisioning

import (
	"context"
	"errors"

	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/repositories"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
)

// maxAttempts bounds upserts that keep losing a uniqueness race
const maxAttempts = 3

// Claims is the verified token data provisioning reads
type Claims interface {
	Subject() string
	Email() string
	RoleHint() string
	Subscription() string
}

// Service maps verified identities onto local user records
type Service struct {
	users   repositories.UserRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewService creates a new provisioning service
func NewService(users repositories.UserRepository, logger *zap.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		users:   users,
		logger:  logger,
		metrics: metrics,
	}
}

// RoleFor derives the local role from the token's role hint.
// Only the exact value "admin" grants admin.
func RoleFor(hint string) models.UserRole {
	if hint == string(models.RoleAdmin) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// Provision creates the local user for claims or refreshes its email and
// role. The subscription tier is recorded only when the user is created.
func (s *Service) Provision(ctx context.Context, claims Claims) (*models.Identity, error) {
	subject := claims.Subject()
	if subject == "" {
		return nil, services.NewDomainError(services.ErrorTypeProvisioning, "claims have no subject", nil)
	}

	params := repositories.UpsertUserParams{
		Email:                optional(claims.Email()),
		Role:                 RoleFor(claims.RoleHint()),
		SubscriptionIfAbsent: optional(claims.Subscription()),
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		user, err := s.users.UpsertBySubject(ctx, subject, params)
		if err == nil {
			s.metrics.RecordProvisioning(true)
			s.logger.Debug("user provisioned",
				zap.String("subject", subject),
				zap.String("role", string(user.Role)),
				zap.Int("attempt", attempt))
			return user.ToIdentity(), nil
		}

		lastErr = err
		if !errors.Is(err, repositories.ErrConflict) || ctx.Err() != nil {
			break
		}
		s.logger.Debug("upsert conflict, retrying",
			zap.String("subject", subject),
			zap.Int("attempt", attempt))
	}

	s.metrics.RecordProvisioning(false)
	s.logger.Error("failed to provision user",
		zap.String("subject", subject),
		zap.Error(lastErr))
	return nil, services.NewDomainError(services.ErrorTypeProvisioning, "failed to provision user", lastErr)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
