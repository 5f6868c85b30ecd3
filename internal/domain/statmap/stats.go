package statmap

// canonicalStatNames maps ESPN MLB numeric stat codes to canonical
// abbreviations. Codes absent from the table are dropped during
// normalization. B_/P_ prefixes disambiguate batter and pitcher stats
// that share an abbreviation.
var canonicalStatNames = map[int]string{
	0:  "AB",
	1:  "H",
	2:  "AVG",
	3:  "2B",
	4:  "3B",
	5:  "HR",
	6:  "XBH",
	7:  "1B",
	8:  "TB",
	9:  "SLG",
	10: "B_BB",
	11: "B_IBB",
	12: "HBP",
	13: "SF",
	14: "SH",
	15: "SAC",
	16: "PA",
	17: "OBP",
	18: "OPS",
	19: "RC",
	20: "R",
	21: "RBI",
	23: "SB",
	24: "CS",
	25: "SB-CS",
	26: "GDP",
	27: "B_SO",
	28: "PS",
	29: "PPA",
	31: "CYC",
	32: "GP",
	33: "GS",
	34: "OUTS",
	35: "TBF",
	36: "P",
	37: "P_H",
	38: "OBA",
	39: "P_BB",
	40: "P_IBB",
	41: "WHIP",
	42: "HBP",
	43: "OOBP",
	44: "P_R",
	45: "ER",
	46: "P_HR",
	47: "ERA",
	48: "K",
	49: "K/9",
	50: "WP",
	51: "BLK",
	52: "PK",
	53: "W",
	54: "L",
	55: "WPCT",
	56: "SVO",
	57: "SV",
	58: "BLSV",
	59: "SV%",
	60: "HLD",
	62: "CG",
	63: "QS",
	65: "NH",
	66: "PG",
	67: "TC",
	68: "PO",
	69: "A",
	70: "OFA",
	71: "FPCT",
	72: "E",
	73: "DP",
	74: "B_G_W",
	75: "B_G_L",
	76: "P_G_W",
	77: "P_G_L",
	81: "G",
	82: "K/BB",
	83: "SVHD",
	99: "STARTER",
}

// canonicalNameSet is the reverse index used for idempotence checks:
// keys already in canonical form pass through untouched.
var canonicalNameSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(canonicalStatNames))
	for _, name := range canonicalStatNames {
		set[name] = struct{}{}
	}
	return set
}()

// CanonicalName resolves a numeric stat code to its canonical
// abbreviation.
func CanonicalName(code int) (string, bool) {
	name, ok := canonicalStatNames[code]
	return name, ok
}

// IsCanonicalName reports whether a key is already a canonical stat
// abbreviation.
func IsCanonicalName(key string) bool {
	_, ok := canonicalNameSet[key]
	return ok
}
