package auth

import (
	"context"

	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/models"
	"github.com/upb/wellchat-api/services"
	"github.com/upb/wellchat-api/services/provisioning"
	"github.com/upb/wellchat-api/supabase"
	"go.uber.org/zap"
)

const (
	guardUser  = "user"
	guardAdmin = "admin"
	outcomeOK  = "ok"
)

// TokenVerifier validates an Authorization header value
type TokenVerifier interface {
	Verify(ctx context.Context, header string) (*supabase.VerifiedClaims, error)
}

// Provisioner maps verified claims onto a local identity
type Provisioner interface {
	Provision(ctx context.Context, claims provisioning.Claims) (*models.Identity, error)
}

// Gate authenticates requests
type Gate struct {
	verifier    TokenVerifier
	provisioner Provisioner
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewGate creates a new gate
func NewGate(verifier TokenVerifier, provisioner Provisioner, logger *zap.Logger, metrics *observability.Metrics) *Gate {
	return &Gate{
		verifier:    verifier,
		provisioner: provisioner,
		logger:      logger,
		metrics:     metrics,
	}
}

// Authenticate verifies the credential in header and provisions its subject
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.Identity, error) {
	identity, err := g.authenticate(ctx, header)
	g.record(guardUser, err)
	return identity, err
}

// AuthenticateAdmin is Authenticate restricted to admin identities
func (g *Gate) AuthenticateAdmin(ctx context.Context, header string) (*models.Identity, error) {
	identity, err := g.authenticate(ctx, header)
	if err == nil && !identity.IsAdmin() {
		err = services.NewDomainError(services.ErrorTypeForbidden, "admin role required", nil).
			WithDetail("subject", identity.ID)
		identity = nil
	}
	g.record(guardAdmin, err)
	return identity, err
}

func (g *Gate) authenticate(ctx context.Context, header string) (*models.Identity, error) {
	claims, err := g.verifier.Verify(ctx, header)
	if err != nil {
		return nil, err
	}

	identity, err := g.provisioner.Provision(ctx, claims)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("request authenticated",
		observability.RequestIDField(ctx),
		zap.String("subject", identity.ID),
		zap.String("role", string(identity.Role)),
		zap.String("issuer", claims.Issuer()),
		zap.Strings("audience", claims.Audience()),
		zap.Time("issued_at", claims.IssuedAt()),
		zap.Time("expires_at", claims.ExpiresAt()))
	return identity, nil
}

func (g *Gate) record(guard string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = string(services.GetErrorType(err))
		if outcome == "" {
			outcome = string(services.ErrorTypeInternal)
		}
	}
	g.metrics.RecordAuthOutcome(guard, outcome)
}
