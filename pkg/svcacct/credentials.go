package svcacct

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/cryptox"
	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
)

// Token is a bearer token plus the metadata callers need to reuse it.
type Token struct {
	// Value is the compact token string, ready for an Authorization header.
	Value string

	// Type is the token scheme, TokenTypeBearer unless the exchange
	// endpoint declared otherwise.
	Type string

	// Expiry is the instant the token itself expires, before any safety
	// window. Cached reuse stops ExpiryWindow ahead of this.
	Expiry time.Time

	// Generation identifies the mint that produced this token. Two Tokens
	// from the same credential with equal Generation came out of one cache
	// entry; a new Generation means a fresh mint or fetch.
	Generation uint64
}

// Credentials is a service account identity with its token caches. The
// identity itself is immutable: WithScopes and WithSubject derive new
// instances rather than mutating. Safe for concurrent use.
type Credentials struct {
	cfg Config
	key *rsa.PrivateKey

	selfSigner   jwtx.Signer // kid-less, headers stay byte-stable
	assertSigner jwtx.Signer // carries the configured kid for assertions

	gen atomic.Uint64

	mu     sync.Mutex
	cache  *tokenCache
	remote *cacheEntry // single slot for exchanged access tokens
}

// New builds credentials from cfg. Key material is parsed and validated
// here; malformed keys and conflicting options fail now, never at token
// time.
func New(cfg Config) (*Credentials, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	key := cfg.Key
	if key == nil {
		parsed, err := cryptox.ParseRSAPrivateKeyPEM(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("svcacct: load private key: %w", err)
		}
		key = parsed
	}

	selfSigner, err := jwtx.NewSignerRS256FromKey("", key)
	if err != nil {
		return nil, err
	}
	assertSigner, err := jwtx.NewSignerRS256FromKey(cfg.PrivateKeyID, key)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		cfg:          cfg,
		key:          key,
		selfSigner:   selfSigner,
		assertSigner: assertSigner,
		cache:        newTokenCache(cfg.CacheSize),
	}, nil
}

// AccessToken returns a bearer token for calls against targetURI. With
// explicit scopes and no UseJWTAccessWithScopes the token comes from the
// exchange endpoint and targetURI is ignored; otherwise it is minted
// locally with targetURI as the audience. Either way a still-fresh cached
// token is returned as-is.
func (c *Credentials) AccessToken(ctx context.Context, targetURI string) (Token, error) {
	if c.cfg.remoteMode() {
		return c.exchangedAccessToken(ctx)
	}
	return c.selfSignedToken(targetURI)
}

// HandleUnauthorized reacts to a 401 observed by the caller's transport
// while using one of our tokens. It reports whether the credential accounts
// for the failure. Self-signed mode: nothing to invalidate, a stale local
// token re-mints on its own at the next AccessToken call, so the 401 is
// acknowledged without any remote traffic. Remote mode: the cached token is
// dropped so the next call fetches a fresh one. Non-401 responses are not
// ours to handle.
func (c *Credentials) HandleUnauthorized(resp *http.Response) bool {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return false
	}
	if !c.cfg.remoteMode() {
		return true
	}

	c.mu.Lock()
	c.remote = nil
	c.mu.Unlock()
	return true
}

// WithScopes derives a credential configured with exactly the given scopes.
// The derivative shares the parsed key and clock with the receiver but owns
// a fresh, empty cache; the receiver is untouched. Calling with no
// arguments still counts as configuring scopes (an explicitly empty set),
// which selects remote issuance.
func (c *Credentials) WithScopes(scopes ...string) *Credentials {
	cloned := make([]string, len(scopes))
	copy(cloned, scopes)
	return c.derive(func(cfg *Config) {
		cfg.Scopes = cloned
	})
}

// WithSubject derives a credential that impersonates subject: minted claims
// carry it as sub while the issuer stays the account email. Same sharing
// rules as WithScopes.
func (c *Credentials) WithSubject(subject string) *Credentials {
	return c.derive(func(cfg *Config) {
		cfg.Subject = subject
	})
}

// WithJWTAccess derives a credential with UseJWTAccessWithScopes set to
// use: scoped issuance stays local, the minted JWT carrying a scope claim
// in place of aud. Same sharing rules as WithScopes.
func (c *Credentials) WithJWTAccess(use bool) *Credentials {
	return c.derive(func(cfg *Config) {
		cfg.UseJWTAccessWithScopes = use
	})
}

func (c *Credentials) derive(override func(*Config)) *Credentials {
	cfg := c.cfg
	override(&cfg)
	return &Credentials{
		cfg:          cfg,
		key:          c.key,
		selfSigner:   c.selfSigner,
		assertSigner: c.assertSigner,
		cache:        newTokenCache(cfg.CacheSize),
	}
}

// Email returns the service account identifier.
func (c *Credentials) Email() string { return c.cfg.Email }

// ProjectID returns the owning project, if one was configured.
func (c *Credentials) ProjectID() string { return c.cfg.ProjectID }

// Scopes returns a copy of the configured scopes, nil when none were.
func (c *Credentials) Scopes() []string {
	if c.cfg.Scopes == nil {
		return nil
	}
	scopes := make([]string, len(c.cfg.Scopes))
	copy(scopes, c.cfg.Scopes)
	return scopes
}

// subject is the JWT sub claim: the impersonated user when configured,
// otherwise the account itself.
func (c *Credentials) subject() string {
	if c.cfg.Subject != "" {
		return c.cfg.Subject
	}
	return c.cfg.Email
}
