// Package httpx implements the shared HTTP client policy every probe uses:
// bounded per-request deadlines, redirect limits, a canonical user agent,
// optional bearer credentials, and the per-probe concurrency/pacing guards
// every probe needs to stay a well-behaved client of third-party APIs.
//
// Transient failures are never retried here — the client only classifies
// them into an Outcome and hands the decision back to the probe.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
)

// Outcome classifies the result of a single round trip so probes can decide
// what, if anything, to do about it without inspecting raw errors.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTransientError
	OutcomeRateLimited
	OutcomeNotFound
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTransientError:
		return "transient_error"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DefaultRequestDeadline is the per-request timeout applied unless a probe
// asks for the archive ceiling.
const DefaultRequestDeadline = 10 * time.Second

// ArchiveRequestDeadline is the ceiling for archive/large-body endpoints
// (e.g. the Wayback Machine).
const ArchiveRequestDeadline = 20 * time.Second

// MaxRedirects bounds the number of redirect hops the client follows.
const MaxRedirects = 5

// UserAgent is the canonical identifier sent on every outbound request.
const UserAgent = "trace-osint/1.0 (+self-assessment scan)"

// Policy configures a Client. Zero value is usable: defaults apply.
type Policy struct {
	// CodeHostToken, when non-empty, is sent as a bearer credential to
	// code-hosting APIs (GitHub/GitLab). It is never a compile-time
	// constant — callers must source it from configuration.
	CodeHostToken string
}

// Client is the shared HTTP policy value every probe composes rather than
// inherits from, per the design notes' "composition over inheritance"
// guidance.
type Client struct {
	http   *http.Client
	policy Policy
}

// New builds a Client around a pooled transport (hashicorp/go-cleanhttp),
// matching the pattern used elsewhere in the retrieval pack for
// infrastructure-facing HTTP clients.
func New(policy Policy) *Client {
	transport := cleanhttp.DefaultPooledTransport()
	hc := &http.Client{
		// No Timeout here: it would race the per-request context deadline
		// applied in Do and, fixed at DefaultRequestDeadline, would silently
		// cap WithArchiveDeadline's longer ceiling too.
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("httpx: stopped after %d redirects", MaxRedirects)
			}
			return nil
		},
	}
	return &Client{http: hc, policy: policy}
}

// Do executes req with the canonical user agent and, when WithBearerAuth is
// passed and a code-host token is configured, a bearer credential. It does
// not retry; callers interpret the returned Outcome.
func (c *Client) Do(ctx context.Context, req *http.Request, opts ...RequestOption) (*http.Response, Outcome, error) {
	cfg := requestConfig{deadline: DefaultRequestDeadline}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.deadline)
	defer cancel()
	req = req.WithContext(ctx)

	req.Header.Set("User-Agent", UserAgent)
	if cfg.bearerAuth && c.policy.CodeHostToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.policy.CodeHostToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, OutcomeTransientError, ctx.Err()
		}
		return nil, OutcomeTransientError, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return resp, OutcomeRateLimited, nil
	case resp.StatusCode == http.StatusNotFound:
		return resp, OutcomeNotFound, nil
	case resp.StatusCode >= 500:
		return resp, OutcomeTransientError, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp, OutcomeOK, nil
	default:
		return resp, OutcomeOK, nil
	}
}

type requestConfig struct {
	deadline   time.Duration
	bearerAuth bool
}

// RequestOption customizes a single Client.Do call.
type RequestOption func(*requestConfig)

// WithArchiveDeadline raises the per-request deadline to the archive
// ceiling, for endpoints known to return large bodies slowly.
func WithArchiveDeadline() RequestOption {
	return func(c *requestConfig) { c.deadline = ArchiveRequestDeadline }
}

// WithDeadline sets a custom per-request deadline.
func WithDeadline(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.deadline = d }
}

// WithBearerAuth attaches the configured code-host bearer credential, if
// any, to this request.
func WithBearerAuth() RequestOption {
	return func(c *requestConfig) { c.bearerAuth = true }
}
