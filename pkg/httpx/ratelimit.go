package httpx

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig throttles outbound requests to a token endpoint. Exchange
// services meter assertions per client, so the SDK can self-limit instead of
// burning attempts on 429s. The zero value disables limiting.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Limiter builds the token bucket for the config, or nil when the config is
// unset or nonsensical.
func (c RateLimitConfig) Limiter() *rate.Limiter {
	if c.RequestsPerWindow <= 0 || c.Window <= 0 {
		return nil
	}
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	perSecond := float64(c.RequestsPerWindow) / c.Window.Seconds()
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// RateLimitedTransport delays outbound requests until the limiter admits
// them. A nil Limiter passes everything straight through.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip waits for limiter clearance, honouring the request context, then
// delegates to the base transport.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewRateLimitedClient returns an *http.Client whose requests pass through a
// RateLimitedTransport built from cfg. A zero cfg yields a plain client.
func NewRateLimitedClient(cfg RateLimitConfig, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &RateLimitedTransport{
			Limiter: cfg.Limiter(),
		},
	}
}
