package population

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/platform/resilience"
)

const (
	defaultTimeout    = 10 * time.Second
	maxResponseBytes  = 16 << 20
	knownPlayersQuery = `query KnownPlayers { players { idEspn } }`
	probeQuery        = `query Probe { __typename }`
)

// Client reads the set of athlete ids the downstream system already
// stores, over a read-only GraphQL endpoint. An unreachable endpoint
// is an error, never an empty set: the caller decides whether to abort
// or fall back to a full extraction.
type Client struct {
	httpClient *http.Client
	endpoint   string
	headers    map[string]string
	maxRetries int
	backoff    *resilience.Backoff
	logger     *logging.Logger
}

type ClientConfig struct {
	Endpoint    string
	Headers     map[string]string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	HTTPClient  *http.Client
	Logger      *logging.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("population endpoint is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if httpClient.Timeout == 0 {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient.Timeout = timeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		headers:    cfg.Headers,
		maxRetries: cfg.MaxRetries,
		backoff:    resilience.NewBackoff(cfg.BackoffBase, cfg.BackoffMax),
		logger:     logger,
	}, nil
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type knownPlayersResponse struct {
	Data struct {
		Players []struct {
			IDEspn int `json:"idEspn"`
		} `json:"players"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// ExistingIDs fetches the downstream athlete id set. An empty result
// is a valid answer: a fresh downstream simply knows nothing yet.
func (c *Client) ExistingIDs(ctx context.Context) (map[int]struct{}, error) {
	body, err := c.post(ctx, knownPlayersQuery)
	if err != nil {
		return nil, err
	}

	var decoded knownPlayersResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal known players response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("known players query rejected: %s", decoded.Errors[0].Message)
	}

	ids := make(map[int]struct{}, len(decoded.Data.Players))
	for _, player := range decoded.Data.Players {
		if player.IDEspn <= 0 {
			continue
		}
		ids[player.IDEspn] = struct{}{}
	}

	c.logger.InfoContext(ctx, "fetched known population", "count", len(ids))
	return ids, nil
}

// Probe issues a minimal query to verify the endpoint answers at all.
func (c *Client) Probe(ctx context.Context) error {
	body, err := c.post(ctx, probeQuery)
	if err != nil {
		return err
	}

	var decoded struct {
		Errors []graphqlError `json:"errors"`
	}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("unmarshal probe response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return fmt.Errorf("probe query rejected: %s", decoded.Errors[0].Message)
	}
	return nil
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	payload, err := sonic.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff.Wait(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		body, retryable, err := c.postOnce(ctx, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "population query exhausted retries",
		"attempts", c.maxRetries+1,
		"error", lastErr,
	)
	return nil, lastErr
}

func (c *Client) postOnce(ctx context.Context, payload []byte) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("create population request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request population endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read population response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("population endpoint returned status %d", resp.StatusCode)
	}

	return body, false, nil
}
