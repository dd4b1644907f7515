package svcauth_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/svcauth/internal/cli"
	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
	"github.com/aussiebroadwan/svcauth/pkg/svcacct"
)

// runFetch performs one full run the way the CLI does: load the config,
// resolve the profile, build credentials from the key file, open the store,
// fetch. Each call builds everything from scratch, so a second call only
// shares state through the store on disk.
func runFetch(t *testing.T, cfgPath, kind, audience string) (svcacct.Token, error) {
	t.Helper()

	file, err := cli.LoadFile(cfgPath)
	require.NoError(t, err)
	name, profile, err := file.Resolve("")
	require.NoError(t, err)

	creds, err := cli.BuildCredentials(profile)
	require.NoError(t, err)

	st, err := cli.OpenStore(profile.Store, nil)
	require.NoError(t, err)
	if st != nil {
		defer st.Close()
	}

	ctx := context.Background()
	if kind == "identity" {
		return cli.FetchIdentityToken(ctx, creds, audience, cli.FetchOptions{
			Store:  st,
			Key:    cli.StoreKey(name, "identity", nil, audience),
			Window: time.Duration(profile.ExpiryWindow),
		})
	}
	return cli.FetchAccessToken(ctx, creds, profile.RemoteMode(), audience, cli.FetchOptions{
		Store:  st,
		Key:    cli.StoreKey(name, "access", profile.Scopes, audience),
		Window: time.Duration(profile.ExpiryWindow),
	})
}

func TestExchangeFlowReusesStoredToken(t *testing.T) {
	iss := newIssuer(t)
	dir := t.TempDir()
	keyPath := writeKeyJSON(t, dir, iss.URL())
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`
default_profile: ci
profiles:
  ci:
    key_file: %s
    scopes: [ledger:read, ledger:write]
    store: sqlite:%s
    expiry_window: 2m
`, keyPath, filepath.Join(dir, "tokens.db")))

	first, err := runFetch(t, cfgPath, "access", "")
	require.NoError(t, err)
	require.Equal(t, "issued-ledger:read ledger:write", first.Value)
	require.Equal(t, "Bearer", first.Type)
	require.EqualValues(t, 1, iss.hits.Load())

	// A separate run reads the stored token instead of exchanging again.
	second, err := runFetch(t, cfgPath, "access", "")
	require.NoError(t, err)
	require.Equal(t, first.Value, second.Value)
	require.EqualValues(t, 1, iss.hits.Load())
}

func TestSelfSignedFlowMintsVerifiableTokens(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeKeyJSON(t, dir, "https://unused.example.com/token")
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`
profiles:
  deploy:
    key_file: %s
`, keyPath))

	const target = "https://ledger.example.com/records"
	tok, err := runFetch(t, cfgPath, "access", target)
	require.NoError(t, err)

	claims, err := jwtx.VerifyRS256(tok.Value, &fixtureKey(t).PublicKey)
	require.NoError(t, err)
	require.Equal(t, e2eEmail, claims.Issuer)
	require.Equal(t, e2eEmail, claims.Subject)
	require.Equal(t, target, claims.Audience)
	require.Empty(t, claims.Scope)

	var out bytes.Buffer
	require.NoError(t, cli.Inspect(&out, tok.Value, time.Now()))
	require.Contains(t, out.String(), `"alg": "RS256"`)
	require.Contains(t, out.String(), "Expiry: ")
}

func TestIdentityFlow(t *testing.T) {
	iss := newIssuer(t)
	dir := t.TempDir()
	keyPath := writeKeyJSON(t, dir, iss.URL())
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`
profiles:
  deploy:
    key_file: %s
    store: sqlite:%s
`, keyPath, filepath.Join(dir, "tokens.db")))

	const audience = "https://deploy.example.com/"
	tok, err := runFetch(t, cfgPath, "identity", audience)
	require.NoError(t, err)
	require.EqualValues(t, 1, iss.hits.Load())

	claims, err := jwtx.VerifyRS256(tok.Value, &fixtureKey(t).PublicKey)
	require.NoError(t, err)
	require.Equal(t, iss.URL(), claims.Issuer)
	require.Equal(t, audience, claims.Audience)

	// The issuer omits expires_in, so the expiry must come off the token.
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)

	again, err := runFetch(t, cfgPath, "identity", audience)
	require.NoError(t, err)
	require.Equal(t, tok.Value, again.Value)
	require.EqualValues(t, 1, iss.hits.Load())
}

func TestExchangeRetriesOnServerErrors(t *testing.T) {
	iss := newIssuer(t)
	iss.fail.Store(2)

	dir := t.TempDir()
	keyPath := writeKeyJSON(t, dir, iss.URL())
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`
profiles:
  ci:
    key_file: %s
    scopes: [audit:read]
    retry:
      max_attempts: 3
      on_error: true
      status_codes: [503]
`, keyPath))

	tok, err := runFetch(t, cfgPath, "access", "")
	require.NoError(t, err)
	require.Equal(t, "issued-audit:read", tok.Value)
	require.EqualValues(t, 3, iss.hits.Load())
}

func TestRejectedAssertion(t *testing.T) {
	iss := newIssuer(t)

	// A key the issuer has never seen.
	rogue, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(rogue)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "rogue.pem")
	require.NoError(t, os.WriteFile(keyPath, pemBytes, 0o600))
	cfgPath := writeConfig(t, dir, fmt.Sprintf(`
profiles:
  rogue:
    key_file: %s
    email: %s
    token_url: %s
    scopes: [ledger:read]
`, keyPath, e2eEmail, iss.URL()))

	_, err = runFetch(t, cfgPath, "access", "")
	var exchErr *svcacct.ExchangeError
	require.ErrorAs(t, err, &exchErr)
	require.Equal(t, http.StatusUnauthorized, exchErr.StatusCode)
	require.Equal(t, svcacct.ErrorCodeInvalidGrant, exchErr.Code)
	require.EqualValues(t, 1, iss.hits.Load())
}
