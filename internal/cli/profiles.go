// Package cli holds the logic behind the svcauth commands: profile loading,
// credential assembly, persistent-store plumbing, and output rendering. The
// cobra commands under cmd/svcauth stay thin wrappers over this package.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvProfile selects the profile when --profile is not given.
const EnvProfile = "SVCAUTH_PROFILE"

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("cli: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// RateLimit throttles calls to the profile's token endpoint.
type RateLimit struct {
	RequestsPerWindow int      `yaml:"requests_per_window"`
	Window            Duration `yaml:"window"`
	Burst             int      `yaml:"burst,omitempty"`
}

// Retry re-runs failed exchange calls. The zero value means one attempt.
type Retry struct {
	MaxAttempts int   `yaml:"max_attempts,omitempty"`
	OnError     bool  `yaml:"on_error,omitempty"`
	StatusCodes []int `yaml:"status_codes,omitempty"`
}

// Profile is one named service-account configuration.
type Profile struct {
	// KeyFile points at the credential: a .json service-account key file,
	// a bare .pem private key, or a .p12/.pfx bundle.
	KeyFile string `yaml:"key_file"`

	// Email identifies the service account when the key file does not
	// carry it (bare PEM and PKCS#12 keys).
	Email string `yaml:"email,omitempty"`

	// Subject overrides the sub claim for delegation setups.
	Subject string `yaml:"subject,omitempty"`

	// TokenURL overrides the exchange endpoint from the key file.
	TokenURL string `yaml:"token_url,omitempty"`

	// Scopes switches the profile to exchanged tokens unless
	// use_jwt_access keeps minting local.
	Scopes []string `yaml:"scopes,omitempty"`

	// UseJWTAccess carries the scopes as a claim in a locally minted
	// token instead of exchanging them.
	UseJWTAccess bool `yaml:"use_jwt_access,omitempty"`

	// Lifetime and ExpiryWindow tune token validity. Zero keeps the SDK
	// defaults.
	Lifetime     Duration `yaml:"lifetime,omitempty"`
	ExpiryWindow Duration `yaml:"expiry_window,omitempty"`

	// Store is the persistent token cache DSN, "sqlite:PATH" or a
	// redis:// URL. Empty disables persistence.
	Store string `yaml:"store,omitempty"`

	// RateLimit throttles exchange calls client side.
	RateLimit RateLimit `yaml:"rate_limit,omitempty"`

	// Retry controls exchange retries.
	Retry Retry `yaml:"retry,omitempty"`
}

// RemoteMode reports whether the profile produces exchanged tokens rather
// than locally signed ones.
func (p Profile) RemoteMode() bool {
	return p.Scopes != nil && !p.UseJWTAccess
}

// File is the on-disk profile collection.
type File struct {
	DefaultProfile string             `yaml:"default_profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Names lists the configured profile names, sorted.
func (f File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve picks the requested profile and returns its name alongside it.
// Precedence: the name argument (the --profile flag), the SVCAUTH_PROFILE
// environment variable, the file's default_profile, then a lone profile when
// exactly one is configured.
func (f File) Resolve(name string) (string, Profile, error) {
	if name == "" {
		name = os.Getenv(EnvProfile)
	}
	if name == "" {
		name = f.DefaultProfile
	}
	if name == "" && len(f.Profiles) == 1 {
		name = f.Names()[0]
	}
	if name == "" {
		return "", Profile{}, Errorf(ExitConfigError,
			"no profile selected; use --profile or set %s (available: %s)",
			EnvProfile, strings.Join(f.Names(), ", "))
	}

	p, ok := f.Profiles[name]
	if !ok {
		return "", Profile{}, Errorf(ExitConfigError,
			"unknown profile %q (available: %s)", name, strings.Join(f.Names(), ", "))
	}
	return name, p, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/svcauth/config.yaml, falling
// back to ~/.config when the variable is unset.
func DefaultConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "svcauth", "config.yaml"), nil
}

// LoadFile reads and parses the profile file at path. An empty path uses the
// default location.
func LoadFile(path string) (File, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return File{}, Errorf(ExitConfigError, "resolve config path: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, Errorf(ExitConfigError, "read config: %v", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, Errorf(ExitConfigError, "parse config %s: %v", path, err)
	}
	return f, nil
}
