package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/jwtx"
	"github.com/aussiebroadwan/svcauth/pkg/svcacct"
)

// PrintToken writes the bare token value and a newline so output pipes
// straight into an Authorization header.
func PrintToken(w io.Writer, tok svcacct.Token) {
	_, _ = fmt.Fprintln(w, tok.Value)
}

// Inspect decodes a JWT without verifying it and renders the header, claims,
// and remaining validity.
func Inspect(w io.Writer, token string, now time.Time) error {
	header, claims, err := jwtx.DecodeUnverified(token)
	if err != nil {
		return Errorf(ExitGeneralError, "decode token: %v", err)
	}

	if err := printJSON(w, "Header", header); err != nil {
		return err
	}
	if err := printJSON(w, "Claims", claims); err != nil {
		return err
	}

	exp, err := jwtx.Expiry(token)
	switch {
	case errors.Is(err, jwtx.ErrNoExpiry):
		_, _ = fmt.Fprintln(w, "Expiry: none")
	case err != nil:
		return Errorf(ExitGeneralError, "decode expiry: %v", err)
	case now.Before(exp):
		_, _ = fmt.Fprintf(w, "Expiry: %s (in %s)\n",
			exp.Format(time.RFC3339), exp.Sub(now).Round(time.Second))
	default:
		_, _ = fmt.Fprintf(w, "Expiry: %s (expired %s ago)\n",
			exp.Format(time.RFC3339), now.Sub(exp).Round(time.Second))
	}
	return nil
}

func printJSON(w io.Writer, label string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Errorf(ExitGeneralError, "render %s: %v", label, err)
	}
	_, _ = fmt.Fprintf(w, "%s:\n%s\n", label, data)
	return nil
}

// PrintVersion writes human-readable build information.
func PrintVersion(w io.Writer, version, commit, date string) {
	_, _ = fmt.Fprintf(w, "svcauth %s (commit %s, built %s)\n", version, commit, date)
}

// PrintVersionJSON writes build information as a JSON object.
func PrintVersionJSON(w io.Writer, version, commit, date string) {
	_ = json.NewEncoder(w).Encode(map[string]string{
		"version": version,
		"commit":  commit,
		"date":    date,
	})
}
