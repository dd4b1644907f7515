package jwtx_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestClaimSetValidate(t *testing.T) {
	base := jwtx.ClaimSet{
		Issuer:    "svc@example.com",
		Subject:   "svc@example.com",
		Audience:  "https://api.example.com/",
		IssuedAt:  1700000000,
		ExpiresAt: 1700003600,
	}

	t.Run("valid audience claims", func(t *testing.T) {
		require.NoError(t, base.Validate())
	})

	t.Run("valid scope claims", func(t *testing.T) {
		c := base
		c.Audience = ""
		c.Scope = "ledger.read ledger.write"
		require.NoError(t, c.Validate())
	})

	t.Run("aud and scope both set", func(t *testing.T) {
		c := base
		c.Scope = "ledger.read"
		require.ErrorIs(t, c.Validate(), jwtx.ErrAudienceScope)
	})

	t.Run("aud and scope both absent", func(t *testing.T) {
		c := base
		c.Audience = ""
		require.ErrorIs(t, c.Validate(), jwtx.ErrAudienceScope)
	})

	t.Run("missing issuer", func(t *testing.T) {
		c := base
		c.Issuer = ""
		require.ErrorIs(t, c.Validate(), jwtx.ErrNoIssuer)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := base
		c.Subject = ""
		require.ErrorIs(t, c.Validate(), jwtx.ErrNoSubject)
	})

	t.Run("target_audience without aud", func(t *testing.T) {
		c := base
		c.Audience = ""
		c.Scope = "ledger.read"
		c.TargetAudience = "https://svc.example.com/"
		require.ErrorIs(t, c.Validate(), jwtx.ErrTargetAudience)
	})

	t.Run("exp not after iat", func(t *testing.T) {
		c := base
		c.ExpiresAt = c.IssuedAt
		require.ErrorIs(t, c.Validate(), jwtx.ErrBadLifetime)
	})
}

// The claims JSON is part of the signed bytes; its field order must never
// drift, so pin the exact serialized form.
func TestClaimSetMarshalOrder(t *testing.T) {
	t.Run("audience form", func(t *testing.T) {
		got, err := json.Marshal(jwtx.ClaimSet{
			Issuer:    "svc@example.com",
			Subject:   "user@example.com",
			Audience:  "https://api.example.com/",
			IssuedAt:  1,
			ExpiresAt: 2,
		})
		require.NoError(t, err)
		require.Equal(t,
			`{"iss":"svc@example.com","sub":"user@example.com","aud":"https://api.example.com/","iat":1,"exp":2}`,
			string(got))
	})

	t.Run("scope form", func(t *testing.T) {
		got, err := json.Marshal(jwtx.ClaimSet{
			Issuer:    "svc@example.com",
			Subject:   "svc@example.com",
			Scope:     "a b",
			IssuedAt:  1,
			ExpiresAt: 2,
		})
		require.NoError(t, err)
		require.Equal(t,
			`{"iss":"svc@example.com","sub":"svc@example.com","scope":"a b","iat":1,"exp":2}`,
			string(got))
	})

	t.Run("assertion with target_audience", func(t *testing.T) {
		got, err := json.Marshal(jwtx.ClaimSet{
			Issuer:         "svc@example.com",
			Subject:        "svc@example.com",
			Audience:       "https://issuer.example.com/token",
			IssuedAt:       1,
			ExpiresAt:      2,
			TargetAudience: "https://api.example.com/",
		})
		require.NoError(t, err)
		require.Equal(t,
			`{"iss":"svc@example.com","sub":"svc@example.com","aud":"https://issuer.example.com/token","iat":1,"exp":2,"target_audience":"https://api.example.com/"}`,
			string(got))
	})
}

func TestClaimSetJWTAccessors(t *testing.T) {
	c := jwtx.ClaimSet{
		Issuer:    "svc@example.com",
		Subject:   "user@example.com",
		Audience:  "https://api.example.com/",
		IssuedAt:  1700000000,
		ExpiresAt: 1700003600,
	}

	exp, err := c.GetExpirationTime()
	require.NoError(t, err)
	require.Equal(t, time.Unix(1700003600, 0).UTC(), exp.Time.UTC())

	iat, err := c.GetIssuedAt()
	require.NoError(t, err)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), iat.Time.UTC())

	nbf, err := c.GetNotBefore()
	require.NoError(t, err)
	require.Nil(t, nbf)

	iss, err := c.GetIssuer()
	require.NoError(t, err)
	require.Equal(t, "svc@example.com", iss)

	sub, err := c.GetSubject()
	require.NoError(t, err)
	require.Equal(t, "user@example.com", sub)

	aud, err := c.GetAudience()
	require.NoError(t, err)
	require.Equal(t, []string{"https://api.example.com/"}, []string(aud))

	// Scope-form claims expose no audience
	c.Audience = ""
	c.Scope = "a"
	aud, err = c.GetAudience()
	require.NoError(t, err)
	require.Empty(t, aud)
}
