// Package jwtx mints the compact RS256 tokens that service-account
// credentials hand to callers and to token-exchange endpoints. It is not a
// general JWT library: one algorithm, one claim layout, byte-stable output.
package jwtx

import "crypto/rsa"

// Signer is our interface for anything that can sign a ClaimSet into a
// compact token.
type Signer interface {
	Alg() string
	KID() string
	Sign(ClaimSet) (string, error)
	Validate() error
}

// NewSignerRS256 creates an RS256 signer from PEM key bytes. An empty kid
// leaves the header at exactly {"alg":"RS256","typ":"JWT"}.
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}

// NewSignerRS256FromKey creates an RS256 signer from an already-parsed key,
// e.g. one pulled out of a PKCS#12 archive or a TLS certificate.
func NewSignerRS256FromKey(kid string, key *rsa.PrivateKey) (Signer, error) {
	return newRS256SignerFromKey(kid, key)
}
