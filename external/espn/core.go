package espn

import (
	"context"
	"fmt"
	"strings"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

// CoreClient fetches per-athlete biographical and statistical detail
// from the sports core API family.
type CoreClient struct {
	client  *Client
	baseURL string
	logger  *logging.Logger
}

func NewCoreClient(client *Client, baseURL string, logger *logging.Logger) *CoreClient {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultCoreBaseURL
	}
	return &CoreClient{client: client, baseURL: baseURL, logger: logger}
}

func (c *CoreClient) athleteURL(id int) string {
	return fmt.Sprintf("%s/sports/baseball/leagues/mlb/athletes/%d", c.baseURL, id)
}

// FetchBiography fetches one athlete's biographical detail. A 404
// surfaces as a classified not-found error.
func (c *CoreClient) FetchBiography(ctx context.Context, id int) (*AthleteBiography, error) {
	var bio AthleteBiography
	if err := c.client.GetJSON(ctx, c.athleteURL(id), nil, &bio); err != nil {
		return nil, fmt.Errorf("fetch biography id=%d: %w", id, err)
	}
	return &bio, nil
}

// FetchStatistics fetches one athlete's detailed season statistics.
// A 404 here is expected for athletes without current-season stats;
// callers must treat it as "stats omitted", not an error.
func (c *CoreClient) FetchStatistics(ctx context.Context, id int) (*AthleteStatistics, error) {
	var stats AthleteStatistics
	if err := c.client.GetJSON(ctx, c.athleteURL(id)+"/statistics", nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch statistics id=%d: %w", id, err)
	}
	return &stats, nil
}
