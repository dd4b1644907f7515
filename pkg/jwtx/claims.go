package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoIssuer reports a claim set missing the iss field.
	ErrNoIssuer = errors.New("jwtx: missing issuer")

	// ErrNoSubject reports a claim set missing the sub field. We always
	// emit sub, even when it repeats iss.
	ErrNoSubject = errors.New("jwtx: missing subject")

	// ErrAudienceScope reports a claim set violating the aud/scope rule.
	ErrAudienceScope = errors.New("jwtx: claims need exactly one of aud or scope")

	// ErrTargetAudience reports target_audience on a claim set without aud.
	ErrTargetAudience = errors.New("jwtx: target_audience requires aud")

	// ErrBadLifetime reports exp not strictly after iat.
	ErrBadLifetime = errors.New("jwtx: exp must follow iat")
)

// ClaimSet is the payload of a service-account JWT. Field order here is the
// wire order; it feeds the signed bytes, so keep it stable.
//
// Exactly one of Audience or Scope must be set: audience for a token pinned
// to a single target URI, scope for a token carrying an OAuth scope grant.
// TargetAudience only appears on assertions that ask a token exchange to
// issue an identity token for that audience.
type ClaimSet struct {
	Issuer         string `json:"iss"`
	Subject        string `json:"sub"`
	Audience       string `json:"aud,omitempty"`
	Scope          string `json:"scope,omitempty"`
	IssuedAt       int64  `json:"iat"`
	ExpiresAt      int64  `json:"exp"`
	TargetAudience string `json:"target_audience,omitempty"`
}

// Validate checks the structural rules before signing. Violations are
// configuration bugs, so they fail the mint rather than producing a token
// a verifier would bounce.
func (c ClaimSet) Validate() error {
	if c.Issuer == "" {
		return ErrNoIssuer
	}
	if c.Subject == "" {
		return ErrNoSubject
	}
	if (c.Audience == "") == (c.Scope == "") {
		return ErrAudienceScope
	}
	if c.TargetAudience != "" && c.Audience == "" {
		return ErrTargetAudience
	}
	if c.ExpiresAt <= c.IssuedAt {
		return ErrBadLifetime
	}
	return nil
}

// The jwt.Claims methods below let a ClaimSet ride through golang-jwt
// signing untouched, keeping our JSON layout instead of MapClaims ordering.

func (c ClaimSet) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c ClaimSet) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c ClaimSet) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c ClaimSet) GetIssuer() (string, error) { return c.Issuer, nil }

func (c ClaimSet) GetSubject() (string, error) { return c.Subject, nil }

func (c ClaimSet) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}
