package supabase

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/services"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownKey is returned when a key ID is absent from the key set even
// after a refresh
var ErrUnknownKey = errors.New("signing key not found in key set")

// KeyResolver returns the public key for a token's kid header
type KeyResolver interface {
	Key(ctx context.Context, kid string) (crypto.PublicKey, error)
}

// ResolverConfig holds configuration for JWKSResolver
type ResolverConfig struct {
	URL         string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

// JWKSResolver fetches the provider's JSON Web Key Set and caches it in
// memory. The set is loaded on first use, refreshed once when a kid is
// missing, and refreshed when older than CacheTTL. Concurrent refreshes
// share a single outstanding fetch.
type JWKSResolver struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]crypto.PublicKey
	fetchedAt time.Time

	group singleflight.Group
}

// NewJWKSResolver creates a resolver for the key set at cfg.URL
func NewJWKSResolver(cfg ResolverConfig, logger *zap.Logger, metrics *observability.Metrics) *JWKSResolver {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 1 * time.Hour
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &JWKSResolver{
		url:        cfg.URL,
		httpClient: client,
		ttl:        cfg.CacheTTL,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Key returns the public key for kid
func (r *JWKSResolver) Key(ctx context.Context, kid string) (crypto.PublicKey, error) {
	keys, fetchedAt := r.snapshot()
	// at most one fetch per lookup
	fetched := false

	switch {
	case keys == nil:
		var err error
		keys, err = r.refresh(ctx)
		if err != nil {
			return nil, services.NewDomainError(services.ErrorTypeKeySetUnavailable, "failed to load signing keys", err)
		}
		fetched = true
	case r.now().Sub(fetchedAt) >= r.ttl:
		fetched = true
		if fresh, err := r.refresh(ctx); err == nil {
			keys = fresh
		} else {
			r.logger.Warn("serving stale signing keys after refresh failure", zap.Error(err))
		}
	}

	if key, ok := keys[kid]; ok {
		return key, nil
	}
	if fetched {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
	}

	// Possible key rotation: one refresh before giving up
	fresh, err := r.refresh(ctx)
	if err != nil {
		r.logger.Warn("signing key refresh for unknown kid failed",
			zap.String("kid", kid),
			zap.Error(err))
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
	}
	if key, ok := fresh[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
}

func (r *JWKSResolver) snapshot() (map[string]crypto.PublicKey, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys, r.fetchedAt
}

// refresh fetches the key set, coalescing concurrent callers
func (r *JWKSResolver) refresh(ctx context.Context) (map[string]crypto.PublicKey, error) {
	ch := r.group.DoChan("jwks", func() (interface{}, error) {
		// Detach from the first caller's cancellation; the HTTP client
		// timeout bounds the fetch.
		keys, err := r.fetch(context.WithoutCancel(ctx))
		r.metrics.RecordJWKSRefresh(err == nil)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.keys = keys
		r.fetchedAt = r.now()
		r.mu.Unlock()

		r.logger.Debug("signing keys refreshed", zap.Int("keys", len(keys)))
		return keys, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]crypto.PublicKey), nil
	}
}

func (r *JWKSResolver) fetch(ctx context.Context) (map[string]crypto.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch JWKS: status code %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	return publicKeys(set), nil
}

// publicKeys indexes the signature keys of set by kid
func publicKeys(set jose.JSONWebKeySet) map[string]crypto.PublicKey {
	keys := make(map[string]crypto.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.KeyID == "" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		switch key := jwk.Key.(type) {
		case *rsa.PublicKey:
			keys[jwk.KeyID] = key
		case *ecdsa.PublicKey:
			keys[jwk.KeyID] = key
		}
	}
	return keys
}

// StaticKeyResolver serves a fixed key set
type StaticKeyResolver map[string]crypto.PublicKey

// Key returns the key for kid or ErrUnknownKey
func (s StaticKeyResolver) Key(_ context.Context, kid string) (crypto.PublicKey, error) {
	key, ok := s[kid]
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
	}
	return key, nil
}
