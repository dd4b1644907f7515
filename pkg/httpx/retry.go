// Package httpx carries the HTTP plumbing shared by the credential SDK and
// the CLI: retry classification, client-side rate limiting, and bounded
// response reads. Token minting itself never retries; anything here runs at
// the transport layer around it.
package httpx

import (
	"fmt"
	"net/http"
	"slices"
)

// RetryPolicy decides whether a failed request should be attempted again.
// The zero value never retries: one attempt, report the failure.
type RetryPolicy struct {
	// RetryOnError enables retrying attempts that died before an HTTP
	// status arrived (connection resets, timeouts and friends).
	RetryOnError bool

	// RetryStatusCodes lists response codes worth retrying, e.g. 500, 503.
	RetryStatusCodes []int

	// MaxAttempts caps total attempts, first try included. Zero or one
	// means a single attempt.
	MaxAttempts int
}

// DefaultRetryPolicy retries transport errors up to three attempts total.
// Status-code retries stay opt-in.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RetryOnError: true,
		MaxAttempts:  3,
	}
}

// Attempts returns the attempt budget, never below one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// ShouldRetry reports whether another attempt is warranted after attempt
// (1-based) ended with resp/err. At most one of resp and err is meaningful.
func (p RetryPolicy) ShouldRetry(attempt int, resp *http.Response, err error) bool {
	if attempt >= p.Attempts() {
		return false
	}
	if err != nil {
		return p.RetryOnError
	}
	if resp == nil {
		return false
	}
	return slices.Contains(p.RetryStatusCodes, resp.StatusCode)
}

// Do executes req with client, retrying per policy. Bodies of abandoned
// responses are drained and closed so connections get reused. The final
// outcome is returned as-is: the response, or the raw transport error,
// unwrapped, so callers can still type-assert on it.
func Do(client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 1; ; attempt++ {
		resp, err = client.Do(req)
		if !policy.ShouldRetry(attempt, resp, err) {
			return resp, err
		}

		// A consumed request body that can't be rewound ends the retry
		// loop with whatever we have.
		if req.Body != nil && req.GetBody == nil {
			return resp, err
		}

		if resp != nil {
			DrainClose(resp.Body)
		}

		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, fmt.Errorf("httpx: rewind request body: %w", berr)
			}
			req.Body = body
		}
	}
}
