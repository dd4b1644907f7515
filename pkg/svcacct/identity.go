package svcacct

import (
	"context"
	"sync"
	"time"
)

// IdentityTokenOptions configures an identity-token handle.
type IdentityTokenOptions struct {
	// Audience is the aud the issued identity token must assert, typically
	// the URL of the service that will verify it. Required.
	Audience string
}

// IdentityTokenSource is a lazily refreshing handle on one identity token.
// The first Token call fetches; later calls reuse the cached token until it
// goes stale, then refetch exactly once. Safe for concurrent use.
type IdentityTokenSource struct {
	creds    *Credentials
	audience string

	mu      sync.RWMutex
	tok     Token
	staleAt time.Time
	have    bool
}

// IdentityToken returns a handle minting OIDC identity tokens that assert
// opts.Audience. Identity tokens always come from the exchange endpoint:
// verifiers trust the issuer's signing chain, not the account key, so there
// is no self-signed variant.
func (c *Credentials) IdentityToken(opts IdentityTokenOptions) (*IdentityTokenSource, error) {
	if opts.Audience == "" {
		return nil, ErrNoAudience
	}
	if c.cfg.TokenURL == "" {
		return nil, ErrNoTokenURL
	}
	return &IdentityTokenSource{creds: c, audience: opts.Audience}, nil
}

// Token returns the current identity token, fetching on first use and
// refetching once the cached one passes its safety window. The fetch runs
// under the handle's write lock, so concurrent callers piggyback on a
// single in-flight refresh.
func (s *IdentityTokenSource) Token(ctx context.Context) (Token, error) {
	s.mu.RLock()
	if s.have && s.creds.cfg.Clock.Now().Before(s.staleAt) {
		tok := s.tok
		s.mu.RUnlock()
		return tok, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if s.have && s.creds.cfg.Clock.Now().Before(s.staleAt) {
		return s.tok, nil
	}

	tok, staleAt, err := s.creds.fetchIdentityToken(ctx, s.audience)
	if err != nil {
		return Token{}, err
	}

	s.tok = tok
	s.staleAt = staleAt
	s.have = true
	return tok, nil
}

// Audience reports the audience this handle asserts.
func (s *IdentityTokenSource) Audience() string { return s.audience }
