package service

import (
	"fmt"
	"strconv"

	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"
)

// BuildLeaderboard generates a synthetic ladder for a region. The region
// string seeds the stream, so every request for the same region sees the
// same standings.
func (m *MockSource) BuildLeaderboard(region domain.LeaderboardRegion, limit int, heroID int) *domain.LeaderboardPayload {
	limit = clampInt(limit, 1, constants.LeaderboardLimitMax)
	r := newRng(seedFromString("leaderboard:" + string(region)))

	badgeLevel := 115
	entries := make([]domain.LeaderboardEntry, 0, limit)
	for position := 1; len(entries) < limit && position <= constants.LeaderboardLimitMax*2; position++ {
		accountID := int64(1000000) + int64(r.IntBetween(0, 80000000))
		steamID64 := strconv.FormatInt(accountID+constants.SteamID64Offset, 10)
		name := buildPersonaName(steamID64, r)

		topHeroes := make([]domain.LeaderboardHeroRef, 0, constants.LeaderboardTopHeroes)
		seen := make(map[int]struct{}, constants.LeaderboardTopHeroes)
		for len(topHeroes) < constants.LeaderboardTopHeroes {
			index := r.IntBetween(0, len(mockHeroes)-1)
			if _, ok := seen[index]; ok {
				continue
			}
			seen[index] = struct{}{}
			topHeroes = append(topHeroes, domain.LeaderboardHeroRef{
				HeroID: index + 1,
				Hero:   mockHeroes[index],
			})
		}

		// Standings decay slowly from the top of the ladder.
		if r.Float64() < 0.35 && badgeLevel > 1 {
			badgeLevel--
		}

		if heroID > 0 && !refsContainHero(topHeroes, heroID) {
			continue
		}

		badge := badgeLevel
		rankLabel := mockRankLabelForBadge(badge)
		entries = append(entries, domain.LeaderboardEntry{
			Position:         len(entries) + 1,
			AccountName:      name,
			PrimaryAccountID: &accountID,
			SteamID64:        &steamID64,
			BadgeLevel:       &badge,
			RankLabel:        &rankLabel,
			TopHeroes:        topHeroes,
		})
	}

	return &domain.LeaderboardPayload{
		OK:           true,
		Source:       domain.SourceMock,
		FetchedAt:    isoTime(m.now()),
		Region:       region,
		TotalEntries: len(entries),
		Entries:      entries,
		Notes: []string{
			fmt.Sprintf("Demo mode: synthetic %s ladder generated locally.", region),
		},
	}
}

func mockRankLabelForBadge(badgeLevel int) string {
	index := clampInt((badgeLevel-60)/5, 0, len(mockRankTiers)-1)
	return mockRankTiers[index]
}

func refsContainHero(refs []domain.LeaderboardHeroRef, heroID int) bool {
	for _, ref := range refs {
		if ref.HeroID == heroID {
			return true
		}
	}
	return false
}
