package cryptox_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"os"
	"testing"

	"github.com/aussiebroadwan/svcauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestParsePKCS12(t *testing.T) {
	data, err := os.ReadFile("testdata/client.p12")
	require.NoError(t, err)

	key, cert, err := cryptox.ParsePKCS12(data, "notasecret")
	require.NoError(t, err)
	require.NotNil(t, key)
	require.NotNil(t, cert)
	require.Equal(t, "svcauth test", cert.Subject.CommonName)

	// The extracted key must be usable for RS256 signing
	digest := sha256.Sum256([]byte("probe"))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	require.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))
}

func TestParsePKCS12WrongPassword(t *testing.T) {
	data, err := os.ReadFile("testdata/client.p12")
	require.NoError(t, err)

	_, _, err = cryptox.ParsePKCS12(data, "wrong")
	require.Error(t, err)
}

func TestParsePKCS12Garbage(t *testing.T) {
	_, _, err := cryptox.ParsePKCS12([]byte("definitely not DER"), "notasecret")
	require.Error(t, err)
}
