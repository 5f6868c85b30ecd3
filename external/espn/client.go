package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/platform/resilience"
)

const (
	DefaultFantasyBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games"
	DefaultCoreBaseURL    = "https://sports.core.api.espn.com/v2"

	filterHeader     = "x-fantasy-filter"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	maxResponseBytes = 64 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RatePerSecond  float64
	RateBurst      int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the shared outbound executor for both ESPN API families.
// It classifies failures, retries transient ones with jittered
// backoff, rate-limits, trips a circuit breaker on sustained failure,
// and dedupes identical in-flight requests. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    *resilience.Backoff
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		maxRetries: maxInt(cfg.MaxRetries, 0),
		backoff:    resilience.NewBackoff(cfg.BackoffBase, cfg.BackoffMax),
		limiter:    limiter,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:     logger,
	}
}

// GetJSON executes one GET against an ESPN endpoint and decodes the
// payload into target. Identical concurrent requests (same URL and
// filter header) share a single upstream call.
func (c *Client) GetJSON(ctx context.Context, fullURL string, headers map[string]string, target any) error {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return &APIError{Class: ClassTransient, URL: fullURL, Detail: "circuit breaker open"}
		}
	}

	key := fullURL + "|" + headers[filterHeader]
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.execute(ctx, fullURL, headers)
		if c.breaker != nil {
			if isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode espn payload: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, fullURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", defaultUserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &APIError{Class: ClassTransient, URL: fullURL, Detail: "send request: " + err.Error()}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = &APIError{Class: ClassTransient, StatusCode: resp.StatusCode, URL: fullURL, Detail: "read response body: " + readErr.Error()}
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				apiErr := &APIError{
					Class:      classifyStatus(resp.StatusCode),
					StatusCode: resp.StatusCode,
					URL:        fullURL,
					Detail:     abbreviateBody(raw),
				}
				if !apiErr.retryable() {
					return nil, apiErr
				}
				lastErr = apiErr
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.backoff.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = &APIError{Class: ClassTransient, URL: fullURL, Detail: "request failed"}
	}
	c.logger.WarnContext(ctx, "espn request failed after retries",
		"url", fullURL,
		"attempts", c.maxRetries+1,
		"error", lastErr,
	)
	return nil, lastErr
}

// isCircuitFailure counts only rate-limit and server-side failures
// toward opening the breaker. Not-found and caller mistakes do not
// indicate upstream health problems.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, ErrTransient) || crerr.Is(err, ErrRateLimited)
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
