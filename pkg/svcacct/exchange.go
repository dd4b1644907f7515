package svcacct

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/httpx"
	"github.com/aussiebroadwan/svcauth/pkg/idx"
	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
	"github.com/aussiebroadwan/svcauth/pkg/slogx"
)

// grantJWTBearer is the RFC 7523 grant type for key-signed assertions.
const grantJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// tokenResponse is the JSON body the exchange endpoint returns.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (r *tokenResponse) tokenType() string {
	if r.TokenType == "" {
		return TokenTypeBearer
	}
	return r.TokenType
}

// exchangedAccessToken serves the remote path: one cached slot per
// credential, refreshed once past its safety window. Concurrent misses may
// both fetch; each result is a valid token and the last write wins.
func (c *Credentials) exchangedAccessToken(ctx context.Context) (Token, error) {
	c.mu.Lock()
	if c.remote != nil && c.cfg.Clock.Now().Before(c.remote.staleAt) {
		tok := c.remote.tok
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	if c.cfg.TokenURL == "" {
		return Token{}, ErrNoTokenURL
	}

	assertion, err := c.assertSigner.Sign(c.assertionClaims(c.cfg.Clock.Now()))
	if err != nil {
		return Token{}, err
	}

	form := url.Values{
		"grant_type": {grantJWTBearer},
		"assertion":  {assertion},
	}
	// Scope rides as a form parameter, not an assertion claim; the
	// assertion's aud is the endpoint itself.
	if scope := strings.Join(c.cfg.Scopes, " "); scope != "" {
		form.Set("scope", scope)
	}

	tr, err := c.exchange(ctx, form)
	if err != nil {
		return Token{}, err
	}
	if tr.AccessToken == "" {
		return Token{}, fmt.Errorf("svcacct: exchange response missing access_token")
	}

	now := c.cfg.Clock.Now()
	expiry := now.Add(c.cfg.Lifetime)
	if tr.ExpiresIn > 0 {
		expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	tok := Token{
		Value:      tr.AccessToken,
		Type:       tr.tokenType(),
		Expiry:     expiry,
		Generation: c.gen.Add(1),
	}

	c.mu.Lock()
	c.remote = &cacheEntry{tok: tok, staleAt: expiry.Add(-c.cfg.ExpiryWindow)}
	c.mu.Unlock()

	return tok, nil
}

// fetchIdentityToken performs one OIDC exchange asserting audience. The
// returned staleness instant sits ExpiryWindow ahead of the token's expiry.
func (c *Credentials) fetchIdentityToken(ctx context.Context, audience string) (Token, time.Time, error) {
	claims := c.assertionClaims(c.cfg.Clock.Now())
	claims.TargetAudience = audience

	assertion, err := c.assertSigner.Sign(claims)
	if err != nil {
		return Token{}, time.Time{}, err
	}

	form := url.Values{
		"grant_type": {grantJWTBearer},
		"assertion":  {assertion},
	}

	tr, err := c.exchange(ctx, form)
	if err != nil {
		return Token{}, time.Time{}, err
	}
	if tr.IDToken == "" {
		return Token{}, time.Time{}, fmt.Errorf("svcacct: exchange response missing id_token")
	}

	now := c.cfg.Clock.Now()
	expiry := now.Add(c.cfg.Lifetime)
	if tr.ExpiresIn > 0 {
		expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else if exp, err := jwtx.Expiry(tr.IDToken); err == nil {
		// The token's own exp claim beats the configured fallback.
		expiry = exp
	}

	tok := Token{
		Value:      tr.IDToken,
		Type:       tr.tokenType(),
		Expiry:     expiry,
		Generation: c.gen.Add(1),
	}
	return tok, expiry.Add(-c.cfg.ExpiryWindow), nil
}

// assertionClaims is the base claim set for every assertion sent to the
// token endpoint: the endpoint itself is the audience.
func (c *Credentials) assertionClaims(now time.Time) jwtx.ClaimSet {
	return jwtx.ClaimSet{
		Issuer:    c.cfg.Email,
		Subject:   c.subject(),
		Audience:  c.cfg.TokenURL,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(c.cfg.Lifetime).Unix(),
	}
}

// exchange POSTs form to the token endpoint and decodes the response.
// Transport failures pass through unwrapped; non-2xx responses come back as
// *ExchangeError.
func (c *Credentials) exchange(ctx context.Context, form url.Values) (*tokenResponse, error) {
	reqID := idx.New()
	log := slogx.FromContext(ctx).With("req_id", reqID.String(), "endpoint", c.cfg.TokenURL)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.TokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("svcacct: build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-Id", reqID.String())

	resp, err := httpx.Do(c.cfg.HTTPClient, req, c.cfg.Retry)
	if err != nil {
		return nil, err
	}
	defer httpx.DrainClose(resp.Body)

	body, err := httpx.ReadBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("svcacct: read exchange response: %w", err)
	}

	if err := parseExchangeError(resp, body); err != nil {
		log.Warn("token exchange rejected", "status", resp.StatusCode)
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("svcacct: decode exchange response: %w", err)
	}

	log.Debug("token exchanged")
	return &tr, nil
}
