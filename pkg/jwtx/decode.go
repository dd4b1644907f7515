package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry reports a token whose payload carries no exp claim.
var ErrNoExpiry = errors.New("jwtx: token has no exp claim")

// DecodeUnverified splits a compact JWT into its header and claims without
// checking the signature. Use it for inspection and expiry bookkeeping only;
// nothing decoded this way is trustworthy.
func DecodeUnverified(token string) (header, claims map[string]any, err error) {
	mc := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, mc)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: decode token: %w", err)
	}
	return parsed.Header, map[string]any(mc), nil
}

// Expiry extracts the exp claim from a compact JWT without verification.
// Remote issuers don't always declare a lifetime beside the token, so the
// token itself is the fallback source of truth for refresh scheduling.
func Expiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("jwtx: decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time.UTC(), nil
}
