package svcacct

import (
	"strings"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
)

// scopedCacheKey is the single slot shared by every target URI when scoped
// local JWTs are in play: the token carries scope instead of aud, so the
// target doesn't distinguish entries.
const scopedCacheKey = "scoped"

// selfSignedToken serves the local path. Lookup, mint, and insert happen
// under one lock so concurrent callers never observe a torn cache.
func (c *Credentials) selfSignedToken(targetURI string) (Token, error) {
	scoped := c.cfg.scopesExplicit() && c.cfg.UseJWTAccessWithScopes

	key := targetURI
	if scoped {
		key = scopedCacheKey
	} else if targetURI == "" {
		return Token{}, ErrNoTargetURI
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.Clock.Now()
	if tok, ok := c.cache.get(key, now); ok {
		return tok, nil
	}

	tok, err := c.mintJWT(targetURI, scoped, now)
	if err != nil {
		return Token{}, err
	}

	c.cache.put(key, tok, now.Add(c.cfg.Lifetime-c.cfg.ExpiryWindow))
	return tok, nil
}

// mintJWT signs a fresh access token. Unscoped tokens assert the target URI
// as aud; scoped tokens carry the space-joined scope list instead. Never
// both.
func (c *Credentials) mintJWT(targetURI string, scoped bool, now time.Time) (Token, error) {
	claims := jwtx.ClaimSet{
		Issuer:    c.cfg.Email,
		Subject:   c.subject(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(c.cfg.Lifetime).Unix(),
	}
	if scoped {
		claims.Scope = strings.Join(c.cfg.Scopes, " ")
	} else {
		claims.Audience = targetURI
	}

	value, err := c.selfSigner.Sign(claims)
	if err != nil {
		return Token{}, err
	}

	return Token{
		Value:      value,
		Type:       TokenTypeBearer,
		Expiry:     time.Unix(claims.ExpiresAt, 0).UTC(),
		Generation: c.gen.Add(1),
	}, nil
}
