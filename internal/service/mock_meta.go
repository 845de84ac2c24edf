package service

import (
	"context"
	"fmt"
	"sort"

	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"
)

type mockHeroTally struct {
	picks int
	wins  int
	bans  int
}

type mockItemTally struct {
	hero     string
	item     string
	wins     int
	total    int
	orderSum int
}

// BuildMetaSnapshot aggregates pick/win/ban statistics over a synthetic
// population of 64 players with 24 matches each. All inputs are static, so
// the result is computed once and cached for the process lifetime.
func (m *MockSource) BuildMetaSnapshot() *domain.MetaPayload {
	snapshot, _ := m.metaCache.Get(context.Background(), func(context.Context) (*domain.MetaPayload, error) {
		return m.buildMetaSnapshot(), nil
	})
	return snapshot
}

func (m *MockSource) buildMetaSnapshot() *domain.MetaPayload {
	var allMatches []domain.MatchDetail
	for index := 0; index < constants.MockPopulationPlayers; index++ {
		steamID64 := fmt.Sprintf("%d", 76561198000000000+int64(index)*12345+7)
		profile := m.BuildPlayerProfile(steamID64, constants.MockMatchesPerPlayer)
		allMatches = append(allMatches, profile.Matches...)
	}

	heroTallies := make(map[string]*mockHeroTally, len(mockHeroes))
	for _, hero := range mockHeroes {
		heroTallies[hero] = &mockHeroTally{}
	}
	itemTallies := make(map[string]*mockItemTally)

	rankedMatches := 0
	for _, match := range allMatches {
		if tally, ok := heroTallies[match.Hero]; ok {
			tally.picks++
			if match.Result == domain.OutcomeWin {
				tally.wins++
			}
		}

		// Ban events only exist in Ranked; the simulation is seeded from the
		// match id so it is reproducible independently of the profile stream.
		if match.Mode == domain.ModeRanked {
			rankedMatches++
			banRng := newRng(seedFromString("ban:" + match.MatchID))
			banCount := banRng.IntBetween(2, 6)
			banned := make(map[string]struct{}, banCount)
			for len(banned) < banCount {
				banned[pick(banRng, mockHeroes)] = struct{}{}
			}
			for hero := range banned {
				if tally, ok := heroTallies[hero]; ok {
					tally.bans++
				}
			}
		}

		for _, purchase := range match.Build.Items {
			key := match.Hero + "::" + purchase.ItemName
			tally, ok := itemTallies[key]
			if !ok {
				tally = &mockItemTally{hero: match.Hero, item: purchase.ItemName}
				itemTallies[key] = tally
			}
			tally.total++
			tally.orderSum += purchase.Order
			if match.Result == domain.OutcomeWin {
				tally.wins++
			}
		}
	}

	heroStats := make([]domain.HeroMetaStat, 0, len(mockHeroes))
	for _, hero := range mockHeroes {
		tally := heroTallies[hero]
		stat := domain.HeroMetaStat{
			Hero:    hero,
			Picks:   tally.picks,
			Wins:    tally.wins,
			Matches: len(allMatches),
		}
		if len(allMatches) > 0 {
			stat.PickRate = round1(float64(tally.picks) / float64(len(allMatches)) * 100)
		}
		if tally.picks > 0 {
			stat.WinRate = round1(float64(tally.wins) / float64(tally.picks) * 100)
		}
		if rankedMatches > 0 {
			banRate := round1(float64(tally.bans) / float64(rankedMatches) * 100)
			stat.BanRate = &banRate
		}
		heroStats = append(heroStats, stat)
	}
	sort.SliceStable(heroStats, func(i, j int) bool {
		if heroStats[i].Picks != heroStats[j].Picks {
			return heroStats[i].Picks > heroStats[j].Picks
		}
		return heroStats[i].WinRate > heroStats[j].WinRate
	})

	itemStats := make([]domain.ItemMetaStat, 0, len(itemTallies))
	for _, tally := range itemTallies {
		if tally.total < constants.MockItemMetaMinSampleSize {
			continue
		}
		itemStats = append(itemStats, domain.ItemMetaStat{
			Hero:             tally.hero,
			Item:             tally.item,
			SampleSize:       tally.total,
			WinRate:          round1(float64(tally.wins) / float64(tally.total) * 100),
			AvgPurchaseOrder: round1(float64(tally.orderSum) / float64(tally.total)),
		})
	}
	sort.SliceStable(itemStats, func(i, j int) bool {
		if itemStats[i].WinRate != itemStats[j].WinRate {
			return itemStats[i].WinRate > itemStats[j].WinRate
		}
		if itemStats[i].SampleSize != itemStats[j].SampleSize {
			return itemStats[i].SampleSize > itemStats[j].SampleSize
		}
		if itemStats[i].Hero != itemStats[j].Hero {
			return itemStats[i].Hero < itemStats[j].Hero
		}
		return itemStats[i].Item < itemStats[j].Item
	})
	if len(itemStats) > constants.ItemMetaMaxEntries {
		itemStats = itemStats[:constants.ItemMetaMaxEntries]
	}

	return &domain.MetaPayload{
		OK:                true,
		Source:            domain.SourceMock,
		FetchedAt:         isoTime(m.now()),
		PatchLabel:        "Deadlock EA • Sample Meta (mock)",
		PopulationPlayers: constants.MockPopulationPlayers,
		PopulationMatches: len(allMatches),
		HeroStats:         heroStats,
		ItemStats:         itemStats,
		Notes: []string{
			"Pick/win/ban rates computed over the local synthetic population.",
			"Ban events are simulated for Ranked matches only.",
		},
	}
}
