package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/aussiebroadwan/svcauth/pkg/httpx"
	"github.com/aussiebroadwan/svcauth/pkg/svcacct"
)

// EnvKeyPassphrase supplies the PKCS#12 passphrase non-interactively.
const EnvKeyPassphrase = "SVCAUTH_KEY_PASSPHRASE"

// BuildCredentials loads the profile's key file and assembles SDK
// credentials with the profile's overrides applied.
func BuildCredentials(p Profile) (*svcacct.Credentials, error) {
	if p.KeyFile == "" {
		return nil, NewError("profile has no key_file", ExitConfigError)
	}

	data, err := os.ReadFile(p.KeyFile)
	if err != nil {
		return nil, Errorf(ExitKeyError, "read key file: %v", err)
	}

	var (
		cfg      svcacct.Config
		password string
	)

	ext := strings.ToLower(filepath.Ext(p.KeyFile))
	switch ext {
	case ".json":
		cfg, err = svcacct.ConfigFromJSONKey(data)
		if err != nil {
			return nil, Errorf(ExitKeyError, "%s: %v", p.KeyFile, err)
		}
	case ".pem", ".key":
		cfg = svcacct.Config{PrivateKey: data}
	case ".p12", ".pfx":
		password, err = keyPassphrase()
		if err != nil {
			return nil, err
		}
	default:
		return nil, Errorf(ExitKeyError, "unsupported key file type %q", ext)
	}

	applyProfile(&cfg, p)

	var creds *svcacct.Credentials
	if ext == ".p12" || ext == ".pfx" {
		creds, err = svcacct.NewFromPKCS12(data, password, cfg)
	} else {
		creds, err = svcacct.New(cfg)
	}
	if err != nil {
		return nil, Errorf(ExitKeyError, "build credentials: %v", err)
	}
	return creds, nil
}

// applyProfile lays the profile's overrides over a key-file config. Scopes
// stay untouched when the profile omits them so the key file's grant mode
// wins.
func applyProfile(cfg *svcacct.Config, p Profile) {
	if p.Email != "" {
		cfg.Email = p.Email
	}
	if p.Subject != "" {
		cfg.Subject = p.Subject
	}
	if p.TokenURL != "" {
		cfg.TokenURL = p.TokenURL
	}
	if p.Scopes != nil {
		cfg.Scopes = p.Scopes
	}
	if p.UseJWTAccess {
		cfg.UseJWTAccessWithScopes = true
	}
	if p.Lifetime > 0 {
		cfg.Lifetime = time.Duration(p.Lifetime)
	}
	if p.ExpiryWindow > 0 {
		cfg.ExpiryWindow = time.Duration(p.ExpiryWindow)
	}

	cfg.Retry = httpx.RetryPolicy{
		RetryOnError:     p.Retry.OnError,
		RetryStatusCodes: p.Retry.StatusCodes,
		MaxAttempts:      p.Retry.MaxAttempts,
	}

	rl := httpx.RateLimitConfig{
		RequestsPerWindow: p.RateLimit.RequestsPerWindow,
		Window:            time.Duration(p.RateLimit.Window),
		Burst:             p.RateLimit.Burst,
	}
	if rl.Limiter() != nil {
		cfg.HTTPClient = httpx.NewRateLimitedClient(rl, 10*time.Second)
	}
}

// keyPassphrase returns the PKCS#12 passphrase: from the environment when
// set, otherwise prompted on the controlling terminal so stdin stays free
// for piped input.
func keyPassphrase() (string, error) {
	if pw, ok := os.LookupEnv(EnvKeyPassphrase); ok {
		return pw, nil
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		return "", NewError("no terminal available for passphrase prompt; set "+EnvKeyPassphrase, ExitKeyError)
	}
	defer func() { _ = tty.Close() }()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return "", NewError("no terminal available for passphrase prompt; set "+EnvKeyPassphrase, ExitKeyError)
	}

	_, _ = fmt.Fprint(os.Stderr, "Key passphrase: ")
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", Errorf(ExitKeyError, "read passphrase: %v", err)
	}
	return string(pw), nil
}
