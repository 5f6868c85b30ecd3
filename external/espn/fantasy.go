package espn

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

const (
	cardChunkSize       = 100
	cardFetchParallel   = 4
	topScoringPeriodCap = 5
)

// FantasyClient fetches the bulk player population and batched card
// payloads from the fantasy API family.
type FantasyClient struct {
	client  *Client
	baseURL string
	year    int
	logger  *logging.Logger
}

func NewFantasyClient(client *Client, baseURL string, year int, logger *logging.Logger) *FantasyClient {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultFantasyBaseURL
	}
	return &FantasyClient{client: client, baseURL: baseURL, year: year, logger: logger}
}

func (f *FantasyClient) seasonURL() string {
	return fmt.Sprintf("%s/flb/seasons/%d", f.baseURL, f.year)
}

func (f *FantasyClient) defaultLeagueURL() string {
	return fmt.Sprintf("%s/flb/seasons/%d/segments/0/leaguedefaults/1", f.baseURL, f.year)
}

// FetchPopulation performs the bulk players_wl fetch filtered to
// active players. One call, single response page.
func (f *FantasyClient) FetchPopulation(ctx context.Context) ([]PlayerSummary, error) {
	filter, err := activePlayersFilter()
	if err != nil {
		return nil, fmt.Errorf("build population filter: %w", err)
	}

	url := f.seasonURL() + "/players?view=players_wl"
	var summaries []PlayerSummary
	if err := f.client.GetJSON(ctx, url, map[string]string{filterHeader: filter}, &summaries); err != nil {
		return nil, fmt.Errorf("fetch population year=%d: %w", f.year, err)
	}

	f.logger.InfoContext(ctx, "fetched player population", "year", f.year, "count", len(summaries))
	return summaries, nil
}

// FetchCards fetches kona_playercard payloads for the given ids,
// chunked at 100 ids per call with a bounded parallel group. A failed
// chunk is logged and skipped; its players simply stay absent from the
// result map.
func (f *FantasyClient) FetchCards(ctx context.Context, ids []int, blockCodes []string) (map[int]PlayerCard, error) {
	if len(ids) == 0 {
		return map[int]PlayerCard{}, nil
	}
	if len(blockCodes) == 0 {
		blockCodes = DefaultStatBlockCodes(f.year)
	}

	chunks := chunkIDs(ids, cardChunkSize)
	url := f.defaultLeagueURL() + "?view=kona_playercard"

	p := pool.NewWithResults[[]PlayerCard]().WithContext(ctx).WithMaxGoroutines(cardFetchParallel)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		p.Go(func(ctx context.Context) ([]PlayerCard, error) {
			filter, err := cardFilter(chunk, topScoringPeriodCap, blockCodes)
			if err != nil {
				return nil, fmt.Errorf("build card filter: %w", err)
			}

			var resp cardResponse
			if err := f.client.GetJSON(ctx, url, map[string]string{filterHeader: filter}, &resp); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				f.logger.WarnContext(ctx, "card batch failed, skipping chunk",
					"chunk", i+1,
					"chunks", len(chunks),
					"chunk_size", len(chunk),
					"error", err,
				)
				return nil, nil
			}
			return resp.Players, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make(map[int]PlayerCard, len(ids))
	for _, cards := range results {
		for _, card := range cards {
			id := card.ID
			if id == 0 {
				id = card.Player.ID
			}
			if id == 0 {
				continue
			}
			out[id] = card
		}
	}

	f.logger.InfoContext(ctx, "fetched player cards",
		"requested", len(ids),
		"received", len(out),
		"chunks", len(chunks),
	)
	return out, nil
}

func chunkIDs(ids []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	chunks := make([][]int, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
