package svcacct

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/svcauth/pkg/cryptox"
)

// keyFileType is the type discriminator provisioned key files carry.
const keyFileType = "service_account"

// ErrBadKeyFile reports JSON that is not a usable service account key file.
var ErrBadKeyFile = errors.New("svcacct: not a service account key file")

// KeyFile is the JSON document a service account is provisioned with.
type KeyFile struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ConfigFromJSONKey parses provisioned key file bytes into a Config. Only
// identity fields are filled; scopes, lifetime and collaborators stay zero
// for the caller to set before New.
func ConfigFromJSONKey(data []byte) (Config, error) {
	var kf KeyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return Config{}, fmt.Errorf("svcacct: parse key file: %w", err)
	}
	if kf.Type != keyFileType {
		return Config{}, ErrBadKeyFile
	}
	if kf.ClientEmail == "" || kf.PrivateKey == "" {
		return Config{}, ErrBadKeyFile
	}

	return Config{
		Email:        kf.ClientEmail,
		TokenURL:     kf.TokenURI,
		ProjectID:    kf.ProjectID,
		PrivateKey:   []byte(kf.PrivateKey),
		PrivateKeyID: kf.PrivateKeyID,
	}, nil
}

// NewFromJSONKey builds credentials straight from key file bytes. Passing
// scopes configures them explicitly, which selects remote issuance unless
// the caller derives with WithJWTAccess(true).
func NewFromJSONKey(data []byte, scopes ...string) (*Credentials, error) {
	cfg, err := ConfigFromJSONKey(data)
	if err != nil {
		return nil, err
	}
	if len(scopes) > 0 {
		cfg.Scopes = scopes
	}
	return New(cfg)
}

// NewFromPKCS12 builds credentials from a PKCS#12 archive, the distribution
// format for certificate-bundled account keys. cfg carries everything the
// archive doesn't, Email at minimum; its key fields are overwritten.
func NewFromPKCS12(data []byte, password string, cfg Config) (*Credentials, error) {
	key, _, err := cryptox.ParsePKCS12(data, password)
	if err != nil {
		return nil, err
	}
	cfg.Key = key
	cfg.PrivateKey = nil
	return New(cfg)
}
