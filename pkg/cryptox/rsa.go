// Package cryptox loads service-account key material. Keys are parsed once
// at credential construction and never serialized back out.
package cryptox

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	// ErrNoPEM reports bytes that contain no decodable PEM block.
	ErrNoPEM = errors.New("cryptox: no PEM block found")

	// ErrNotRSA reports a parsed key of a non-RSA type.
	ErrNotRSA = errors.New("cryptox: not an RSA private key")
)

// ParseRSAPrivateKeyPEM parses an RSA private key from PEM bytes. Handles
// both PKCS1 and PKCS8 because key files come in both and we would rather
// not chase that bug twice.
func ParseRSAPrivateKeyPEM(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, ErrNoPEM
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: parse PKCS1: %w", err)
		}
		return key, nil

	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: parse PKCS8: %w", err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrNotRSA
		}
		return key, nil

	default:
		return nil, fmt.Errorf("cryptox: unsupported PEM type %q", block.Type)
	}
}

// RSAKeyFromCertificate extracts the RSA private key embedded in a
// tls.Certificate, e.g. one assembled from a client-cert keypair.
func RSAKeyFromCertificate(cert tls.Certificate) (*rsa.PrivateKey, error) {
	if cert.PrivateKey == nil {
		return nil, errors.New("cryptox: certificate carries no private key")
	}

	key, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return key, nil
}
