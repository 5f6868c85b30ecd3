package espn

import (
	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
)

// ToSummary maps a bulk population entry to the domain summary stage.
func ToSummary(s PlayerSummary) athlete.Summary {
	return athlete.Summary{
		ID:                s.ID,
		Name:              s.FullName,
		FirstName:         s.FirstName,
		LastName:          s.LastName,
		DefaultPositionID: s.DefaultPositionID,
		EligibleSlotIDs:   s.EligibleSlots,
		ProTeamID:         s.ProTeamID,
		InjuryStatus:      s.InjuryStatus,
		Status:            s.Status,
		PercentOwned:      s.Ownership.PercentOwned,
	}
}

// ToCardUpdate maps a card payload to the domain card stage,
// normalizing its coded stat blocks into semantic blocks.
func ToCardUpdate(card PlayerCard, normalizer *statmap.Normalizer) athlete.CardUpdate {
	id := card.ID
	if id == 0 {
		id = card.Player.ID
	}

	raw := make([]statmap.RawBlock, 0, len(card.Player.Stats))
	for _, block := range card.Player.Stats {
		raw = append(raw, statmap.RawBlock{
			PeriodCode: block.ID,
			SourceCode: block.StatSourceID,
			Values:     block.Values(),
		})
	}

	return athlete.CardUpdate{
		ID:                    id,
		Name:                  card.Player.FullName,
		DefaultPositionID:     card.Player.DefaultPositionID,
		EligibleSlotIDs:       card.Player.EligibleSlots,
		ProTeamID:             card.Player.ProTeamID,
		InjuryStatus:          card.Player.InjuryStatus,
		Injured:               card.Player.Injured,
		PercentOwned:          card.Player.Ownership.PercentOwned,
		SeasonOutlook:         card.Player.SeasonOutlook,
		DraftAuctionValue:     card.DraftAuctionValue,
		OnTeamID:              card.OnTeamID,
		DraftRanks:            card.Player.DraftRanksByRankType,
		GamesPlayedByPosition: card.Player.GamesPlayedByPosition,
		AuctionValueAverage:   card.Player.AuctionValueAverage,
		Transactions:          card.Player.Transactions,
		Stats:                 normalizer.Normalize(raw),
	}
}

// ToBiography maps a core API biography payload to the domain
// biography stage.
func ToBiography(b *AthleteBiography) athlete.Biography {
	return athlete.Biography{
		ID:            b.AthleteID(),
		DisplayName:   b.DisplayName,
		ShortName:     b.ShortName,
		Nickname:      b.Nickname,
		Slug:          b.Slug,
		Weight:        b.Weight,
		DisplayWeight: b.DisplayWeight,
		Height:        b.Height,
		DisplayHeight: b.DisplayHeight,
		DateOfBirth:   b.DateOfBirth,
		BirthPlace: athlete.BirthPlace{
			City:    b.BirthPlace.City,
			State:   b.BirthPlace.State,
			Country: b.BirthPlace.Country,
		},
		DebutYear:    b.DebutYear,
		Jersey:       b.Jersey,
		PositionName: b.Position.Name,
		Pos:          b.Position.Abbreviation,
		Bats:         b.Bats.DisplayValue,
		Throws:       b.Throws.DisplayValue,
		Active:       b.Active,
		Status:       b.Status.Type,
		Headshot:     b.Headshot.Href,
	}
}

// ToSeasonBlocks reshapes core API season categories into semantic
// season_<category> blocks, keeping only canonical stat abbreviations
// and counting everything else as dropped.
func ToSeasonBlocks(stats *AthleteStatistics, normalizer *statmap.Normalizer) map[string]map[string]float64 {
	if stats == nil || len(stats.Splits.Categories) == 0 {
		return map[string]map[string]float64{}
	}

	out := make(map[string]map[string]float64, len(stats.Splits.Categories))
	for _, category := range stats.Splits.Categories {
		values := make(map[string]float64, len(category.Stats))
		dropped := 0
		for _, stat := range category.Stats {
			if !statmap.IsCanonicalName(stat.Abbreviation) {
				dropped++
				continue
			}
			values[stat.Abbreviation] = stat.Value
		}
		normalizer.CountDropped(dropped)
		out[statmap.SeasonBlockName(category.Name)] = values
	}
	return out
}
