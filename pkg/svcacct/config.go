package svcacct

import (
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/clockx"
	"github.com/aussiebroadwan/svcauth/pkg/httpx"
)

// Reference values for token lifecycle. Lifetime is how long a minted JWT
// claims to live; ExpiryWindow is subtracted from that for cache staleness
// so a token is replaced before any verifier would reject it.
const (
	DefaultLifetime     = time.Hour
	DefaultExpiryWindow = 5 * time.Minute
	DefaultCacheSize    = 10

	defaultHTTPTimeout = 10 * time.Second
)

// TokenTypeBearer is the token_type issued for every token kind here.
const TokenTypeBearer = "Bearer"

// Config describes a service account identity. It is consumed by New and
// never mutated afterwards; derive variants with WithScopes or WithSubject
// on the constructed credential.
type Config struct {
	// Email is the service account identifier, used as the JWT issuer and
	// default subject. Required.
	Email string

	// Subject optionally impersonates a user: it overrides the JWT sub
	// claim while Email stays the issuer.
	Subject string

	// TokenURL is the token-exchange endpoint. Required whenever issuance
	// is remote (explicit scopes without UseJWTAccessWithScopes, or any
	// identity token).
	TokenURL string

	// ProjectID optionally records the owning project. Informational.
	ProjectID string

	// Scopes holds the OAuth scopes this credential was configured with.
	// A nil slice means "no scopes configured" and selects self-signed
	// issuance; a non-nil slice (even one set empty by derivation) counts
	// as explicitly configured.
	Scopes []string

	// UseJWTAccessWithScopes keeps issuance local even when Scopes are
	// configured: the minted JWT carries a scope claim instead of aud and
	// every target URI shares one cache slot.
	UseJWTAccessWithScopes bool

	// PrivateKey is the PEM-encoded RSA private key (PKCS#1 or PKCS#8).
	// Exactly one of PrivateKey and Key must be set.
	PrivateKey []byte

	// Key is an already-parsed RSA private key, for callers that loaded
	// key material themselves (e.g. out of a PKCS#12 bundle).
	Key *rsa.PrivateKey

	// PrivateKeyID, when set, is stamped as the kid header on assertions
	// sent to the token endpoint so the issuer can pick the right public
	// key. Self-signed access tokens never carry it.
	PrivateKeyID string

	// Lifetime is the validity period claimed by minted JWTs and assumed
	// for exchanged tokens whose response omits one. Defaults to
	// DefaultLifetime.
	Lifetime time.Duration

	// ExpiryWindow is how long before real expiry a cached token stops
	// being served. Defaults to DefaultExpiryWindow.
	ExpiryWindow time.Duration

	// CacheSize bounds the self-signed token cache. Defaults to
	// DefaultCacheSize.
	CacheSize int

	// HTTPClient performs exchange requests. Defaults to a plain client
	// with a 10 second timeout.
	HTTPClient *http.Client

	// Clock supplies the current UTC instant for iat/exp and staleness
	// checks. Defaults to the system clock; tests inject clockx.Fake.
	Clock clockx.Clock

	// Retry classifies failed exchange attempts. The zero value performs
	// a single attempt.
	Retry httpx.RetryPolicy
}

// scopesExplicit reports whether scopes were supplied by configuration,
// independent of whether the list is empty.
func (c Config) scopesExplicit() bool {
	return c.Scopes != nil
}

// remoteMode reports whether access tokens come from the exchange endpoint
// rather than local signing.
func (c Config) remoteMode() bool {
	return c.scopesExplicit() && !c.UseJWTAccessWithScopes
}

func (c Config) validate() error {
	if c.Email == "" {
		return ErrNoEmail
	}
	if c.PrivateKey == nil && c.Key == nil {
		return ErrNoKey
	}
	if c.PrivateKey != nil && c.Key != nil {
		return ErrConflictingKeys
	}
	if c.scopesExplicit() && len(c.Scopes) == 0 && c.UseJWTAccessWithScopes {
		return ErrEmptyScopes
	}
	if c.remoteMode() && c.TokenURL == "" {
		return ErrNoTokenURL
	}
	return nil
}

// withDefaults fills the zero-valued knobs. The returned config owns its
// own scope slice so later derivations can't alias the caller's.
func (c Config) withDefaults() Config {
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLifetime
	}
	if c.ExpiryWindow <= 0 {
		c.ExpiryWindow = DefaultExpiryWindow
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.Clock == nil {
		c.Clock = clockx.System()
	}
	if c.Scopes != nil {
		scopes := make([]string, len(c.Scopes))
		copy(scopes, c.Scopes)
		c.Scopes = scopes
	}
	return c
}
