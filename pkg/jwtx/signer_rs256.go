package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/svcauth/pkg/cryptox"
)

// ErrNilKey reports a signer constructed without usable key material.
var ErrNilKey = errors.New("jwtx: nil RSA key")

// RS256Signer signs claim sets with RSA SHA-256. PKCS#1 v1.5 signatures are
// deterministic, so a fixed key, claims, and clock produce a fixed token.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
	alg string
}

func newRS256Signer(kid string, pemKey []byte) (*RS256Signer, error) {
	key, err := cryptox.ParseRSAPrivateKeyPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: load RSA key: %w", err)
	}
	return newRS256SignerFromKey(kid, key)
}

func newRS256SignerFromKey(kid string, key *rsa.PrivateKey) (*RS256Signer, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	return &RS256Signer{
		kid: kid,
		key: key,
		alg: jwt.SigningMethodRS256.Alg(),
	}, nil
}

func (s *RS256Signer) Alg() string { return s.alg }
func (s *RS256Signer) KID() string { return s.kid }

// Sign validates the claims and turns them into a signed compact token:
// base64url(header) "." base64url(claims) "." base64url(signature), no
// padding anywhere. The kid header rides along only when the signer has one.
func (s *RS256Signer) Sign(claims ClaimSet) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if err := claims.Validate(); err != nil {
		return "", err
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.key)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *RS256Signer) Validate() error {
	if s.key == nil {
		return ErrNilKey
	}
	return nil
}
