package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/svcauth/pkg/clockx"
	"github.com/aussiebroadwan/svcauth/pkg/slogx"
	"github.com/aussiebroadwan/svcauth/pkg/svcacct"
	"github.com/aussiebroadwan/svcauth/pkg/tokenstore"
)

// OpenStore opens the persistent token store named by dsn: "sqlite:PATH" or
// a redis:// (rediss://) URL. An empty dsn means no persistence and returns
// a nil Store.
func OpenStore(dsn string, clock clockx.Clock) (tokenstore.Store, error) {
	switch {
	case dsn == "":
		return nil, nil

	case strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(dsn, "sqlite:")
		if path == "" {
			return nil, NewError("sqlite store DSN has no path", ExitConfigError)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, Errorf(ExitStoreError, "create store directory: %v", err)
			}
		}
		st, err := tokenstore.NewSQLite(path, clock)
		if err != nil {
			return nil, Errorf(ExitStoreError, "open sqlite store: %v", err)
		}
		return st, nil

	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, Errorf(ExitConfigError, "parse redis store DSN: %v", err)
		}
		return tokenstore.NewRedis(redis.NewClient(opts), "svcauth", clock), nil

	default:
		return nil, Errorf(ExitConfigError, "unknown store DSN %q (want sqlite:PATH or redis://...)", dsn)
	}
}

// StoreKey derives the persistent-store key for a token request. Profile,
// grant kind, and scope set or audience each get a segment so unrelated
// grants never collide.
func StoreKey(profile, kind string, scopes []string, audience string) string {
	target := audience
	if len(scopes) > 0 {
		target = strings.Join(scopes, " ")
	}
	return profile + "/" + kind + "/" + target
}

// FetchOptions wires the optional persistence layer into a token fetch.
type FetchOptions struct {
	// Store persists exchanged tokens across runs. nil keeps everything
	// in process.
	Store tokenstore.Store

	// Key addresses the entry in Store.
	Key string

	// Window is subtracted from a token's expiry before storing so a
	// reused entry still has useful life left. Zero means the SDK
	// default.
	Window time.Duration
}

func (o FetchOptions) window() time.Duration {
	if o.Window > 0 {
		return o.Window
	}
	return svcacct.DefaultExpiryWindow
}

// FetchAccessToken returns an access token for the profile's grant mode.
// Exchanged tokens go through the persistent store when one is configured.
// Locally signed tokens are minted fresh every run; minting is cheaper than
// a store read and the store would otherwise fill up with one entry per
// audience. A degraded store logs a warning and falls back to the network.
func FetchAccessToken(ctx context.Context, creds *svcacct.Credentials, remote bool, audience string, opts FetchOptions) (svcacct.Token, error) {
	if opts.Store == nil || !remote {
		return creds.AccessToken(ctx, audience)
	}

	if e, err := opts.Store.Get(ctx, opts.Key); err == nil {
		return svcacct.Token{Value: e.Token, Type: e.Type, Expiry: e.Expiry}, nil
	} else if !errors.Is(err, tokenstore.ErrNotFound) {
		slogx.FromContext(ctx).Warn("token store read failed", "error", err)
	}

	tok, err := creds.AccessToken(ctx, audience)
	if err != nil {
		return svcacct.Token{}, err
	}
	storeToken(ctx, opts, tok)
	return tok, nil
}

// FetchIdentityToken returns an OIDC identity token for audience, consulting
// the persistent store the same way FetchAccessToken does.
func FetchIdentityToken(ctx context.Context, creds *svcacct.Credentials, audience string, opts FetchOptions) (svcacct.Token, error) {
	src, err := creds.IdentityToken(svcacct.IdentityTokenOptions{Audience: audience})
	if err != nil {
		return svcacct.Token{}, err
	}

	if opts.Store != nil {
		if e, err := opts.Store.Get(ctx, opts.Key); err == nil {
			return svcacct.Token{Value: e.Token, Type: e.Type, Expiry: e.Expiry}, nil
		} else if !errors.Is(err, tokenstore.ErrNotFound) {
			slogx.FromContext(ctx).Warn("token store read failed", "error", err)
		}
	}

	tok, err := src.Token(ctx)
	if err != nil {
		return svcacct.Token{}, err
	}
	if opts.Store != nil {
		storeToken(ctx, opts, tok)
	}
	return tok, nil
}

func storeToken(ctx context.Context, opts FetchOptions, tok svcacct.Token) {
	entry := tokenstore.Entry{
		Key:    opts.Key,
		Token:  tok.Value,
		Type:   tok.Type,
		Expiry: tok.Expiry.Add(-opts.window()),
	}
	if err := opts.Store.Put(ctx, entry); err != nil {
		slogx.FromContext(ctx).Warn("token store write failed", "error", err)
	}
}
