package athlete

import "strconv"

// slotNames maps lineup slot ids to position abbreviations.
var slotNames = map[int]string{
	0:  "C",
	1:  "1B",
	2:  "2B",
	3:  "3B",
	4:  "SS",
	5:  "OF",
	6:  "2B/SS",
	7:  "1B/3B",
	8:  "LF",
	9:  "CF",
	10: "RF",
	11: "DH",
	12: "UTIL",
	13: "P",
	14: "SP",
	15: "RP",
	16: "BE",
	17: "IL",
	19: "IF",
}

const (
	slotBench       = 16
	slotInjuredList = 17
)

// nominalPositionNames maps a player's default position id to its
// abbreviation.
var nominalPositionNames = map[int]string{
	1:  "SP",
	2:  "C",
	3:  "1B",
	4:  "2B",
	5:  "3B",
	6:  "SS",
	7:  "LF",
	8:  "CF",
	9:  "RF",
	10: "DH",
	11: "RP",
}

// proTeamNames maps pro team ids to MLB team abbreviations; 0 is a
// free agent.
var proTeamNames = map[int]string{
	0:  "FA",
	1:  "BAL",
	2:  "BOS",
	3:  "LAA",
	4:  "CHW",
	5:  "CLE",
	6:  "DET",
	7:  "KC",
	8:  "MIL",
	9:  "MIN",
	10: "NYY",
	11: "OAK",
	12: "SEA",
	13: "TEX",
	14: "TOR",
	15: "ATL",
	16: "CHC",
	17: "CIN",
	18: "HOU",
	19: "LAD",
	20: "WSH",
	21: "NYM",
	22: "PHI",
	23: "PIT",
	24: "STL",
	25: "SD",
	26: "SF",
	27: "COL",
	28: "MIA",
	29: "ARI",
	30: "TB",
}

// SlotName resolves a lineup slot id; unknown ids fall back to the raw
// id as a string.
func SlotName(id int) string {
	if name, ok := slotNames[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// EligibleSlotNames resolves slot ids to abbreviations, dropping bench
// and injured-list slots which carry no positional meaning.
func EligibleSlotNames(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == slotBench || id == slotInjuredList {
			continue
		}
		out = append(out, SlotName(id))
	}
	return out
}

func NominalPositionName(id int) string {
	return nominalPositionNames[id]
}

func ProTeamName(id int) string {
	return proTeamNames[id]
}
