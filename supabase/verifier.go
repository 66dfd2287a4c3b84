package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
)

const bearerScheme = "bearer"

var allowedAlgorithms = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodES384.Alg(),
	jwt.SigningMethodES512.Alg(),
}

// VerifierConfig holds the expected token issuer and audience
type VerifierConfig struct {
	Issuer   string
	Audience string

	// Now overrides the clock used for nbf/exp checks
	Now func() time.Time
}

// Verifier validates Supabase access tokens
type Verifier struct {
	keys     KeyResolver
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
	logger   *zap.Logger
}

// NewVerifier creates a verifier that resolves signing keys through keys
func NewVerifier(keys KeyResolver, cfg VerifierConfig, logger *zap.Logger) *Verifier {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		keys:     keys,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      now,
		// Time claims are checked by Verify after issuer and audience
		parser: jwt.NewParser(
			jwt.WithValidMethods(allowedAlgorithms),
			jwt.WithoutClaimsValidation(),
		),
		logger: logger,
	}
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", services.ErrMissingCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", services.ErrMissingCredential
	}
	return token, nil
}

// Verify checks the bearer credential in header and returns its claims.
// Checks run in order: credential presence, signature, issuer, audience,
// validity window.
func (v *Verifier) Verify(ctx context.Context, header string) (*VerifiedClaims, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims := &tokenClaims{}
	_, err = v.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("kid header not found")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, services.ErrKeySetUnavailable) {
			return nil, err
		}
		return nil, services.NewDomainError(services.ErrorTypeInvalidSignature, "token signature could not be verified", err)
	}

	if claims.Issuer != v.issuer {
		return nil, services.NewDomainError(services.ErrorTypeInvalidIssuer,
			fmt.Sprintf("expected %s, got %s", v.issuer, claims.Issuer), nil)
	}

	if !containsAudience(claims.Audience, v.audience) {
		return nil, services.NewDomainError(services.ErrorTypeInvalidAudience,
			fmt.Sprintf("audience %q not accepted", v.audience), nil)
	}

	now := v.now()
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return nil, services.NewDomainError(services.ErrorTypeTokenNotYetValid,
			fmt.Sprintf("token valid from %s", claims.NotBefore.Time.UTC().Format(time.RFC3339)), nil)
	}
	if claims.ExpiresAt == nil {
		return nil, services.NewDomainError(services.ErrorTypeTokenExpired, "token has no expiry", nil)
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, services.NewDomainError(services.ErrorTypeTokenExpired,
			fmt.Sprintf("token expired at %s", claims.ExpiresAt.Time.UTC().Format(time.RFC3339)), nil)
	}

	if claims.Subject == "" {
		return nil, services.NewDomainError(services.ErrorTypeInvalidSignature, "token has no subject", nil)
	}

	v.logger.Debug("token verified", zap.String("sub", claims.Subject))
	return newVerifiedClaims(claims), nil
}

// containsAudience checks if the audience list contains the expected value
func containsAudience(audiences jwt.ClaimStrings, expected string) bool {
	for _, aud := range audiences {
		if aud == expected {
			return true
		}
	}
	return false
}
