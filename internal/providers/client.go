package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"abhaya/internal/providers/metrics"
	"abhaya/pkg/platform/circuit"
)

const (
	defaultTimeout = 3 * time.Second
	maxBodyBytes   = 1 << 20
)

// upstream is one HTTP data source guarded by a circuit breaker.
type upstream struct {
	name    string
	baseURL string
	client  *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*upstream)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(u *upstream) {
		if c != nil {
			u.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(u *upstream) {
		if d > 0 {
			u.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(u *upstream) {
		if b != nil {
			u.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *upstream) {
		if logger != nil {
			u.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(u *upstream) {
		u.metrics = m
	}
}

func newUpstream(name, baseURL string, opts ...Option) *upstream {
	u := &upstream{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.breaker == nil {
		u.breaker = circuit.New(name, circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1))
	}
	return u
}

func (u *upstream) configured() bool {
	return u.baseURL != ""
}

// do performs one request and decodes a JSON response into dst.
func (u *upstream) do(ctx context.Context, req *http.Request, dst any) error {
	if !u.breaker.Allow() {
		return NewProviderError(ErrorCircuitOpen, u.name, "circuit open", nil)
	}

	err := u.roundTrip(req, dst)
	if err != nil && countsAgainstBreaker(err) {
		_, change := u.breaker.RecordFailure()
		if change.Opened {
			u.metrics.SetBreakerOpen(u.name, true)
			u.logger.WarnContext(ctx, "provider circuit opened", "provider", u.name)
		}
	} else if err == nil {
		_, change := u.breaker.RecordSuccess()
		if change.Closed {
			u.metrics.SetBreakerOpen(u.name, false)
			u.logger.InfoContext(ctx, "provider circuit closed", "provider", u.name)
		}
	}

	outcome := "ok"
	if err != nil {
		outcome = string(CategoryOf(err))
	}
	u.metrics.IncCall(u.name, outcome)
	return err
}

func (u *upstream) roundTrip(req *http.Request, dst any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := u.client.Do(req)
	if err != nil {
		return u.transportError(err)
	}
	defer resp.Body.Close()

	if err := u.statusError(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return NewProviderError(ErrorBadData, u.name, "invalid response body", err)
	}
	return nil
}

// get issues GET baseURL?query.
func (u *upstream) get(ctx context.Context, query url.Values, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	endpoint, err := u.endpoint(query)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewProviderError(ErrorInternal, u.name, "build request", err)
	}
	return u.do(ctx, req, dst)
}

func (u *upstream) endpoint(query url.Values) (string, error) {
	parsed, err := url.Parse(u.baseURL)
	if err != nil {
		return "", NewProviderError(ErrorInternal, u.name, "invalid base url", err)
	}
	q := parsed.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func (u *upstream) transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewProviderError(ErrorTimeout, u.name, "request timed out", err)
	}
	return NewProviderError(ErrorProviderOutage, u.name, "request failed", err)
}

func (u *upstream) statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, u.name, "rate limited", nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewProviderError(ErrorAuthentication, u.name, fmt.Sprintf("status %d", status), nil)
	case status == http.StatusNotFound:
		return NewProviderError(ErrorNotFound, u.name, "not found", nil)
	case status >= 500:
		return NewProviderError(ErrorProviderOutage, u.name, fmt.Sprintf("status %d", status), nil)
	default:
		return NewProviderError(ErrorBadData, u.name, fmt.Sprintf("unexpected status %d", status), nil)
	}
}

// fallback logs why the fallback value is being served.
func (u *upstream) fallback(ctx context.Context, err error) {
	reason := "not_configured"
	if err != nil {
		reason = string(CategoryOf(err))
		u.logger.WarnContext(ctx, "provider fallback served",
			"provider", u.name,
			"reason", reason,
			"error", err,
		)
	}
	u.metrics.IncFallback(u.name, reason)
}
