package cryptox_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/svcauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestParseRSAPrivateKeyPEMPKCS1(t *testing.T) {
	key := genKey(t)
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	parsed, err := cryptox.ParseRSAPrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.N.Cmp(key.N))
}

func TestParseRSAPrivateKeyPEMPKCS8(t *testing.T) {
	key := genKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	parsed, err := cryptox.ParseRSAPrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.N.Cmp(key.N))
}

func TestParseRSAPrivateKeyPEMErrors(t *testing.T) {
	_, err := cryptox.ParseRSAPrivateKeyPEM([]byte("not pem at all"))
	require.ErrorIs(t, err, cryptox.ErrNoPEM)

	// Valid PEM, wrong block type
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x01}})
	_, err = cryptox.ParseRSAPrivateKeyPEM(pemBytes)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported PEM type")

	// PKCS8 block holding garbage
	pemBytes = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{0xde, 0xad}})
	_, err = cryptox.ParseRSAPrivateKeyPEM(pemBytes)
	require.Error(t, err)
}

func TestRSAKeyFromCertificate(t *testing.T) {
	key := genKey(t)

	cert := tls.Certificate{PrivateKey: key}
	got, err := cryptox.RSAKeyFromCertificate(cert)
	require.NoError(t, err)
	require.Equal(t, 0, got.N.Cmp(key.N))

	_, err = cryptox.RSAKeyFromCertificate(tls.Certificate{})
	require.Error(t, err)
}
