/*
Package svcacct mints and caches bearer tokens for machine-to-machine
authentication backed by a service account's private key.

# Overview

A service account authenticates without a user present. Two token kinds come
out of this package:

  - Self-signed JWT access tokens, minted entirely locally with the account's
    RSA key. No network round trip. The verifier trusts the account's public
    key directly.
  - Exchanged tokens, fetched from a remote token endpoint with a signed
    assertion (OAuth2 access tokens for scoped grants, OIDC identity tokens
    for audience-asserted calls).

Which kind a call produces depends on configuration, not on the call site:

	creds, err := svcacct.New(svcacct.Config{
		Email:      "ci-robot@svc.example.com",
		PrivateKey: pemBytes,
	})

	// Self-signed: no scopes configured, so the JWT is minted locally
	// with aud set to the target URI.
	tok, err := creds.AccessToken(ctx, "https://ledger.example.com/records")

Configure explicit scopes and the credential switches to the remote
exchange, unless UseJWTAccessWithScopes keeps issuance local:

	scoped := creds.WithScopes("ledger:read", "ledger:write")
	tok, err := scoped.AccessToken(ctx, "") // exchanged at cfg.TokenURL

# Token Caching

Self-signed tokens land in a bounded cache keyed by target URI, one entry
per distinct URI, oldest insertion evicted at capacity. With scoped local
JWTs every target shares a single slot. Exchanged access tokens occupy one
slot per credential. A cached token is reused until a safety window before
its real expiry, then transparently re-minted; staleness is never an error.

Token.Generation increments on every fresh mint, so two Tokens with equal
Generation came from the same cache entry. Tests lean on this instead of
comparing strings.

# Identity Tokens

Identity tokens are always issued remotely, since the verifier trusts the
issuer's chain rather than the account key. IdentityToken returns a handle
that refreshes itself lazily:

	src, err := creds.IdentityToken(svcacct.IdentityTokenOptions{
		Audience: "https://ledger.example.com",
	})
	tok, err := src.Token(ctx) // fetches on first use, then caches

Concurrent callers of one handle share a single in-flight refresh.

# Deriving Credentials

Credentials are immutable. WithScopes and WithSubject return derived
instances sharing the parsed key and clock with the original, but never its
cache:

	asUser := creds.WithSubject("reporting@svc.example.com")

# Error Handling

Configuration problems (bad key material, conflicting options, missing
endpoint for a remote mode) fail at construction. Derived credentials are
the exception: WithScopes can switch an instance to remote mode after
validation has run, so a missing endpoint surfaces as ErrNoTokenURL at
first use instead.
Transport failures from the exchange endpoint propagate to the caller
untouched; non-2xx responses surface as *ExchangeError. Retry behaviour is
the caller's policy, wired through Config.Retry; the minting path itself
performs no retries. A 401 from a resource server goes through
HandleUnauthorized, which in self-signed mode is a no-op acknowledgement:
the local token regenerates on its own schedule and a 401 alone says
nothing about cache validity.
*/
package svcacct
