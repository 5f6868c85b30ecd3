package espn

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
)

// DefaultStatBlockCodes returns the period codes requested from the
// card endpoint by default: current season actuals and projections,
// the previous season, and the trailing 7/15/30 day windows.
func DefaultStatBlockCodes(year int) []string {
	return []string{
		fmt.Sprintf("00%d", year),
		fmt.Sprintf("10%d", year),
		fmt.Sprintf("00%d", year-1),
		fmt.Sprintf("01%d", year),
		fmt.Sprintf("02%d", year),
		fmt.Sprintf("03%d", year),
	}
}

// activePlayersFilter builds the x-fantasy-filter header for the bulk
// population fetch.
func activePlayersFilter() (string, error) {
	return sonic.MarshalString(map[string]any{
		"filterActive": map[string]any{"value": true},
	})
}

// cardFilter builds the x-fantasy-filter header for a batched card
// fetch: an explicit id set plus the requested stat block codes.
func cardFilter(ids []int, topScoringPeriods int, blockCodes []string) (string, error) {
	if topScoringPeriods < 1 {
		topScoringPeriods = 5
	}
	return sonic.MarshalString(map[string]any{
		"players": map[string]any{
			"filterIds": map[string]any{"value": ids},
			"filterStatsForTopScoringPeriodIds": map[string]any{
				"value":           topScoringPeriods,
				"additionalValue": blockCodes,
			},
		},
	})
}
