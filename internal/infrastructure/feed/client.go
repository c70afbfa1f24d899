package feed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/platform/resilience"
)

var errFeedTransient = crerr.New("results feed transient failure")

type ClientConfig struct {
	BaseURL        string
	APIToken       string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client pulls match outcomes from the external results provider. The
// provider owns result truth; this client only reads.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiToken       string
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiToken:       strings.TrimSpace(cfg.APIToken),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchFinal(ctx context.Context, round int) ([]result.Result, error) {
	return c.fetch(ctx, round, "results")
}

func (c *Client) FetchLive(ctx context.Context, round int) ([]result.Result, error) {
	return c.fetch(ctx, round, "live")
}

func (c *Client) fetch(ctx context.Context, round int, kind string) ([]result.Result, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "results feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("results feed is temporarily unavailable: %w", err)
		}
	}

	baseURL, err := validateHTTPBaseURL(c.baseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid RESULTS_FEED_BASE_URL")
	}
	requestURL := baseURL + "/v1/rounds/" + strconv.Itoa(round) + "/" + kind

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("feed.request_url", requestURL),
			attribute.Int("feed.round", round),
			attribute.String("feed.kind", kind),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "create results feed request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: fetch %s round=%d: %v", errFeedTransient, kind, round, err)
		c.recordCircuitResult(callErr)
		return nil, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		callErr := fmt.Errorf("%w: read %s response round=%d: %v", errFeedTransient, kind, round, err)
		c.recordCircuitResult(callErr)
		return nil, callErr
	}

	if resp.StatusCode/100 != 2 {
		if isRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf("%w: fetch %s round=%d status=%d", errFeedTransient, kind, round, resp.StatusCode)
			c.recordCircuitResult(callErr)
			return nil, callErr
		}
		callErr := fmt.Errorf("fetch %s round=%d status=%d body=%s", kind, round, resp.StatusCode, strings.TrimSpace(string(raw)))
		c.recordCircuitResult(callErr)
		return nil, callErr
	}

	var decoded feedRoundResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		callErr := crerr.Wrapf(err, "unmarshal %s response round=%d", kind, round)
		c.recordCircuitResult(nil)
		return nil, callErr
	}

	out := make([]result.Result, 0, len(decoded.Matches))
	for _, match := range decoded.Matches {
		out = append(out, result.Result{
			Round:        round,
			FixtureIndex: match.FixtureIndex,
			Code:         strings.ToUpper(strings.TrimSpace(match.Code)),
			HomeGoals:    match.HomeGoals,
			AwayGoals:    match.AwayGoals,
		})
	}

	c.recordCircuitResult(nil)
	return out, nil
}

type feedRoundResponse struct {
	Round   int         `json:"round"`
	Matches []feedMatch `json:"matches"`
}

type feedMatch struct {
	FixtureIndex int    `json:"fixture_index"`
	Code         string `json:"code,omitempty"`
	HomeGoals    *int   `json:"home_goals,omitempty"`
	AwayGoals    *int   `json:"away_goals,omitempty"`
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errFeedTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}
