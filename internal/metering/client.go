// Package metering provides a client for the Datadog Usage Metering API.
package metering

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/config"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/dateparse"
	"github.com/nozomi-koborinai/datadog-billing-mcp-server/internal/telemetry"
)

const userAgent = "datadog-billing-mcp-server/1.0"

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 4096

// APIError is returned for failed requests to the Datadog API: transport
// failures, non-2xx responses and undecodable bodies.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: API request failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Kind reports the error classification used by the tool dispatcher.
func (e *APIError) Kind() string {
	return "UpstreamError"
}

// Factory builds authenticated clients from a fixed configuration.
type Factory struct {
	cfg     config.Config
	baseURL string
	timeout time.Duration
	metrics *telemetry.Metrics
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithBaseURL overrides the API base URL derived from the site.
func WithBaseURL(baseURL string) FactoryOption {
	return func(f *Factory) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithMetrics records upstream requests on m.
func WithMetrics(m *telemetry.Metrics) FactoryOption {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithHTTPTimeout sets the per-request timeout. Zero means none.
func WithHTTPTimeout(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.timeout = d
	}
}

// NewFactory creates a Factory for cfg.
func NewFactory(cfg config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:     cfg,
		baseURL: "https://api." + cfg.Site,
		timeout: cfg.HTTPTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open creates a client for one tool call. The caller must Close it.
func (f *Factory) Open(ctx context.Context) (*Client, error) {
	if err := f.cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	if !f.cfg.KnownSite() {
		zerolog.Ctx(ctx).Warn().
			Str("kind", "UnknownSite").
			Str("site", f.cfg.Site).
			Strs("valid_sites", config.Sites).
			Msgf("Unknown DD_SITE '%s'", f.cfg.Site)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: f.timeout},
		transport:  transport,
		baseURL:    f.baseURL,
		apiKey:     f.cfg.APIKey,
		appKey:     f.cfg.AppKey,
		metrics:    f.metrics,
	}, nil
}

// Client is a client for the Datadog Usage Metering API.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	apiKey     string
	appKey     string
	metrics    *telemetry.Metrics
}

// Close releases the client's network resources.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// GetEstimatedCostByOrg gets the estimated cost of the current (or given) month.
func (c *Client) GetEstimatedCostByOrg(ctx context.Context, view string, startMonth *time.Time) (*CostByOrgResponse, error) {
	params := url.Values{}
	setView(params, view)
	if startMonth != nil {
		params.Set("start_month", dateparse.FormatMonth(*startMonth))
	}

	var result CostByOrgResponse
	if err := c.get(ctx, "estimated_cost", "/api/v2/usage/estimated_cost", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHistoricalCostByOrg gets the cost of past months. A nil endMonth lets the
// API default to startMonth.
func (c *Client) GetHistoricalCostByOrg(ctx context.Context, view string, startMonth time.Time, endMonth *time.Time) (*CostByOrgResponse, error) {
	params := url.Values{}
	params.Set("start_month", dateparse.FormatMonth(startMonth))
	if endMonth != nil {
		params.Set("end_month", dateparse.FormatMonth(*endMonth))
	}
	setView(params, view)

	var result CostByOrgResponse
	if err := c.get(ctx, "historical_cost", "/api/v2/usage/historical_cost", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProjectedCost gets the projected end-of-month cost of the current month.
func (c *Client) GetProjectedCost(ctx context.Context, view string) (*ProjectedCostResponse, error) {
	params := url.Values{}
	setView(params, view)

	var result ProjectedCostResponse
	if err := c.get(ctx, "projected_cost", "/api/v2/usage/projected_cost", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUsageSummary gets monthly usage across products.
func (c *Client) GetUsageSummary(ctx context.Context, startMonth time.Time, endMonth *time.Time) (*UsageSummaryResponse, error) {
	params := url.Values{}
	params.Set("start_month", dateparse.FormatMonth(startMonth))
	if endMonth != nil {
		params.Set("end_month", dateparse.FormatMonth(*endMonth))
	}

	var result UsageSummaryResponse
	if err := c.get(ctx, "usage_summary", "/api/v1/usage/summary", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUsageLogsByIndex gets hourly indexed log event counts per index over
// [startHr, endHr].
func (c *Client) GetUsageLogsByIndex(ctx context.Context, startHr, endHr time.Time) (*UsageLogsByIndexResponse, error) {
	params := url.Values{}
	params.Set("start_hr", dateparse.FormatHour(startHr))
	params.Set("end_hr", dateparse.FormatHour(endHr))

	var result UsageLogsByIndexResponse
	if err := c.get(ctx, "logs_by_index", "/api/v1/usage/logs_by_index", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func setView(params url.Values, view string) {
	if view != "" {
		params.Set("view", view)
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &APIError{Op: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("DD-API-KEY", c.apiKey)
	req.Header.Set("DD-APPLICATION-KEY", c.appKey)

	zerolog.Ctx(ctx).Debug().Str("endpoint", endpoint).Str("url", reqURL).Msg("Calling Datadog API")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		return &APIError{Op: endpoint, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Op: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
