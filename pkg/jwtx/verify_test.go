package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
)

func liveClaims() jwtx.ClaimSet {
	now := time.Now()
	return jwtx.ClaimSet{
		Issuer:    "ci-robot@svc.example.com",
		Subject:   "ci-robot@svc.example.com",
		Audience:  "https://ledger.example.com/records",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256FromKey("", key)
	require.NoError(t, err)

	want := liveClaims()
	token, err := signer.Sign(want)
	require.NoError(t, err)

	got, err := jwtx.VerifyRS256(token, &key.PublicKey)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestVerifyRS256WrongKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256FromKey("", key)
	require.NoError(t, err)
	token, err := signer.Sign(liveClaims())
	require.NoError(t, err)

	_, err = jwtx.VerifyRS256(token, &other.PublicKey)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestVerifyRS256Expired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256FromKey("", key)
	require.NoError(t, err)

	claims := liveClaims()
	claims.IssuedAt = time.Now().Add(-2 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = jwtx.VerifyRS256(token, &key.PublicKey)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRS256RejectsOtherAlgorithms(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, liveClaims()).
		SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = jwtx.VerifyRS256(hmacToken, &key.PublicKey)
	require.Error(t, err)
}

func TestVerifyRS256NilKey(t *testing.T) {
	_, err := jwtx.VerifyRS256(fixtureToken, nil)
	require.ErrorIs(t, err, jwtx.ErrNilKey)
}

func TestVerifyRS256EnforcesClaimLayout(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// Signed directly so both aud and scope ride in the payload, which Sign
	// would refuse to produce.
	bad := jwt.MapClaims{
		"iss":   "ci-robot@svc.example.com",
		"sub":   "ci-robot@svc.example.com",
		"aud":   "https://ledger.example.com/records",
		"scope": "ledger:read",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, bad).SignedString(key)
	require.NoError(t, err)

	_, err = jwtx.VerifyRS256(token, &key.PublicKey)
	require.ErrorIs(t, err, jwtx.ErrAudienceScope)
}
