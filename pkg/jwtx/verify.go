package jwtx

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyRS256 parses a compact token, checks its signature against pub, and
// validates the time claims against the wall clock. Tokens signed with any
// other algorithm are rejected before the signature check. ClaimSet.Validate
// runs as part of parsing, so the aud/scope layout is enforced too.
func VerifyRS256(token string, pub *rsa.PublicKey) (ClaimSet, error) {
	if pub == nil {
		return ClaimSet{}, ErrNilKey
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))

	var claims ClaimSet
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}); err != nil {
		return ClaimSet{}, fmt.Errorf("jwtx: verify: %w", err)
	}
	return claims, nil
}
