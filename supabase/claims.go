package supabase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the decoded JWT payload issued by Supabase Auth
type tokenClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// VerifiedClaims is the payload of a token that passed every check of
// Verifier.Verify. It can only be obtained from Verify.
type VerifiedClaims struct {
	subject   string
	email     string
	metadata  map[string]interface{}
	issuer    string
	audience  []string
	issuedAt  time.Time
	expiresAt time.Time
}

func newVerifiedClaims(c *tokenClaims) *VerifiedClaims {
	vc := &VerifiedClaims{
		subject:  c.Subject,
		email:    c.Email,
		metadata: make(map[string]interface{}, len(c.UserMetadata)),
		issuer:   c.Issuer,
		audience: append([]string(nil), c.Audience...),
	}
	for k, v := range c.UserMetadata {
		vc.metadata[k] = v
	}
	if c.IssuedAt != nil {
		vc.issuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		vc.expiresAt = c.ExpiresAt.Time
	}
	return vc
}

// Subject returns the provider's stable user ID
func (c *VerifiedClaims) Subject() string { return c.subject }

// Email returns the email claim, empty when absent
func (c *VerifiedClaims) Email() string { return c.email }

// Issuer returns the iss claim
func (c *VerifiedClaims) Issuer() string { return c.issuer }

// Audience returns a copy of the aud claim
func (c *VerifiedClaims) Audience() []string { return append([]string(nil), c.audience...) }

// IssuedAt returns the iat claim, zero when absent
func (c *VerifiedClaims) IssuedAt() time.Time { return c.issuedAt }

// ExpiresAt returns the exp claim
func (c *VerifiedClaims) ExpiresAt() time.Time { return c.expiresAt }

// RoleHint returns user_metadata.role when it is a string
func (c *VerifiedClaims) RoleHint() string { return c.metadataString("role") }

// Subscription returns user_metadata.subscription when it is a string
func (c *VerifiedClaims) Subscription() string { return c.metadataString("subscription") }

func (c *VerifiedClaims) metadataString(key string) string {
	s, _ := c.metadata[key].(string)
	return s
}
