package cryptox

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"golang.org/x/crypto/pkcs12"
)

// ParsePKCS12 extracts the RSA private key and certificate from a PKCS#12
// archive. Legacy service-account key archives ship this way, typically
// protected with the well-known password "notasecret".
//
// Only archives using the legacy SHA1/3DES PBE suite decode; modern AES-PBES2
// archives need converting to PEM first (openssl pkcs12 -nodes).
func ParsePKCS12(data []byte, password string) (*rsa.PrivateKey, *x509.Certificate, error) {
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptox: decode PKCS#12: %w", err)
	}

	key, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, ErrNotRSA
	}
	return key, cert, nil
}
