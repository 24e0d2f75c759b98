package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tmc/internal/debug"
	apperrors "tmc/internal/errors"
)

const (
	apiPrefix  = "/api/v8/core"
	userAgent  = "tmc-cli"
	maxErrBody = 4 << 10
)

var errServer = errors.New("server error")

// Options configures HTTPClient.
type Options struct {
	// BaseURL is the server root, e.g. https://tmc.mooc.fi.
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// PollInterval is the delay between submission status checks.
	PollInterval time.Duration
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// RetryAttempts is how many times idempotent requests are retried on
	// network or 5xx errors.
	RetryAttempts   int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration
	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		PollInterval:    2 * time.Second,
		Timeout:         5 * time.Minute,
		RetryAttempts:   3,
		RetryBackoff:    500 * time.Millisecond,
		RetryMaxBackoff: 10 * time.Second,
	}
}

// HTTPClient implements Client against the course server's JSON API.
type HTTPClient struct {
	opts   Options
	base   *url.URL
	client *http.Client
}

// NewHTTPClient validates opts and creates a client.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	defaults := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.RetryAttempts < 0 {
		opts.RetryAttempts = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaults.RetryBackoff
	}
	if opts.RetryMaxBackoff <= 0 {
		opts.RetryMaxBackoff = defaults.RetryMaxBackoff
	}

	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, apperrors.New(apperrors.CodeConfigurationError, "server url is not configured", nil)
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.New(apperrors.CodeConfigurationError, fmt.Sprintf("invalid server url %q", raw), err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPClient{opts: opts, base: base, client: hc}, nil
}

func (c *HTTPClient) endpoint(format string, args ...any) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + fmt.Sprintf(format, args...)
	return u.String()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	return req, nil
}

// get performs a GET with retries on network and 5xx errors. The caller
// closes the returned response body.
func (c *HTTPClient) get(ctx context.Context, target string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			debug.Logf("course: retrying GET %s (attempt %d): %v", target, attempt+1, lastErr)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := c.newRequest(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", errServer, resp.Status)
			continue
		}
		if err := checkResponse(resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
	return nil, apperrors.New(apperrors.CodeRemoteFailed,
		fmt.Sprintf("GET %s failed after %d attempts", target, c.opts.RetryAttempts+1), lastErr)
}

func (c *HTTPClient) getJSON(ctx context.Context, target string, out any) error {
	resp, err := c.get(ctx, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.New(apperrors.CodeParseFailed, "decode response from "+target, err)
	}
	return nil
}

// backoff waits for an exponentially increasing duration with jitter.
func (c *HTTPClient) backoff(ctx context.Context, attempt int) error {
	wait := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if wait > c.opts.RetryMaxBackoff {
		wait = c.opts.RetryMaxBackoff
	}
	wait = time.Duration(float64(wait) * (0.5 + rand.Float64()))
	return sleep(ctx, wait)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type apiError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// checkResponse maps non-2xx responses to structured errors and closes the
// body when it does.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	msg := resp.Status
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	var body apiError
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			msg = body.Error
		case len(body.Errors) > 0:
			msg = strings.Join(body.Errors, "; ")
		}
	}

	code := apperrors.CodeRemoteFailed
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = apperrors.CodeUnauthorized
	case http.StatusNotFound:
		code = apperrors.CodeNotFound
	}
	return apperrors.New(code, fmt.Sprintf("%s %s: %s", resp.Request.Method, resp.Request.URL.Path, msg), nil)
}
