package service

import (
	"context"
	"fmt"
	"strconv"

	"deadlock-tracker/internal/assets"
	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"
)

// BuildLeaderboard fetches the regional ladder and joins it against the
// asset catalog for hero names and rank badges.
func (s *LiveSource) BuildLeaderboard(ctx context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error) {
	limit = clampInt(limit, 1, constants.LeaderboardLimitMax)

	catalog, err := s.assets.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load asset catalog: %w", err)
	}
	resp, err := s.client.GetLeaderboard(ctx, string(region))
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard %s: %w", region, err)
	}

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for _, row := range resp.Entries {
		topHeroes := make([]domain.LeaderboardHeroRef, 0, constants.LeaderboardTopHeroes)
		for _, id := range row.TopHeroIDs {
			if id <= 0 || len(topHeroes) >= constants.LeaderboardTopHeroes {
				continue
			}
			topHeroes = append(topHeroes, domain.LeaderboardHeroRef{
				HeroID:      id,
				Hero:        catalog.HeroName(id),
				HeroIconURL: catalog.HeroIconURL(id),
			})
		}
		if heroID > 0 && !refsContainHero(topHeroes, heroID) {
			continue
		}

		entry := domain.LeaderboardEntry{
			Position:    len(entries) + 1,
			AccountName: row.AccountName,
			TopHeroes:   topHeroes,
		}

		accountID := row.AccountID
		if accountID <= 0 && len(row.PossibleAccountIDs) > 0 {
			accountID = row.PossibleAccountIDs[0]
		}
		if accountID > 0 {
			id := accountID
			steamID64 := strconv.FormatInt(id+constants.SteamID64Offset, 10)
			entry.PrimaryAccountID = &id
			entry.SteamID64 = &steamID64
		}

		if row.BadgeLevel > 0 {
			badge := row.BadgeLevel
			entry.BadgeLevel = &badge
			label := rankLabelForBadge(catalog, badge)
			entry.RankLabel = &label
			if rank, ok := catalog.RanksByBadgeLevel[badge]; ok {
				entry.RankBadgeIconURL = rank.IconURL
			}
		}

		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}

	return &domain.LeaderboardPayload{
		OK:           true,
		Source:       domain.SourceLiveAPI,
		FetchedAt:    isoTime(s.now()),
		Region:       region,
		TotalEntries: len(entries),
		Entries:      entries,
		Notes: []string{
			fmt.Sprintf("Live %s ladder from deadlock-api.com.", region),
		},
	}, nil
}

func rankLabelForBadge(catalog *assets.Catalog, badgeLevel int) string {
	if rank, ok := catalog.RanksByBadgeLevel[badgeLevel]; ok && rank.Name != "" {
		return rank.Name
	}
	return fmt.Sprintf("Badge %d", badgeLevel)
}
