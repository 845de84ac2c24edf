package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"deadlock-tracker/internal/api"
	"deadlock-tracker/internal/assets"
	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"

	"golang.org/x/sync/errgroup"
)

// BuildMetaSnapshot maps the population-wide analytics endpoints into the
// meta schema. Hero stats are required; item stats and patches degrade.
// Snapshots are cached briefly with single-flight fill.
func (s *LiveSource) BuildMetaSnapshot(ctx context.Context) (*domain.MetaPayload, error) {
	return s.metaCache.Get(ctx, s.buildMetaSnapshot)
}

func (s *LiveSource) buildMetaSnapshot(ctx context.Context) (*domain.MetaPayload, error) {
	var (
		catalog   *assets.Catalog
		heroRows  []api.AnalyticsHeroStats
		itemRows  []api.ItemStats
		patchRows []api.Patch
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.assets.Catalog(gCtx)
		if err != nil {
			return fmt.Errorf("load asset catalog: %w", err)
		}
		catalog = c
		return nil
	})
	g.Go(func() error {
		rows, err := s.client.GetAnalyticsHeroStats(gCtx)
		if err != nil {
			return fmt.Errorf("fetch analytics hero stats: %w", err)
		}
		heroRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.client.GetAnalyticsItemStats(gCtx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("analytics item stats fetch failed")
			rows = nil
		}
		itemRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.client.GetPatches(gCtx)
		if err != nil {
			s.logger.Debug().Err(err).Msg("patches fetch failed")
			rows = nil
		}
		patchRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usable := make([]api.AnalyticsHeroStats, 0, len(heroRows))
	for _, row := range heroRows {
		if row.HeroID > 0 && row.Matches > 0 {
			usable = append(usable, row)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoMetaRows
	}

	totalPicks := 0
	populationMatches := 0
	maxPlayers := 0
	sumPlayers := 0
	for _, row := range usable {
		totalPicks += heroPicks(row)
		if row.MatchesPerBucket > populationMatches {
			populationMatches = row.MatchesPerBucket
		}
		if row.Players > maxPlayers {
			maxPlayers = row.Players
		}
		sumPlayers += row.Players
	}
	// matches_per_bucket is the true population match count when present;
	// summing per-hero picks counts each match twelve times.
	if populationMatches == 0 {
		populationMatches = totalPicks / constants.HeroesPerMatch
	}
	populationPlayers := maxPlayers
	if populationPlayers == 0 {
		populationPlayers = sumPlayers
	}

	heroStats := make([]domain.HeroMetaStat, 0, len(usable))
	for _, row := range usable {
		picks := heroPicks(row)
		stat := domain.HeroMetaStat{
			Hero:        catalog.HeroName(row.HeroID),
			HeroIconURL: catalog.HeroIconURL(row.HeroID),
			Picks:       picks,
			Wins:        row.Wins,
			Matches:     populationMatches,
		}
		// Pick rate is a share of all hero picks, not of matches; each
		// match contributes twelve picks to the denominator.
		if totalPicks > 0 {
			stat.PickRate = round1(float64(picks) / float64(totalPicks) * 100)
		}
		if picks > 0 {
			stat.WinRate = round1(float64(row.Wins) / float64(picks) * 100)
		}
		// The analytics endpoints do not expose ban events.
		heroStats = append(heroStats, stat)
	}
	sort.SliceStable(heroStats, func(i, j int) bool {
		if heroStats[i].Picks != heroStats[j].Picks {
			return heroStats[i].Picks > heroStats[j].Picks
		}
		return heroStats[i].WinRate > heroStats[j].WinRate
	})

	return &domain.MetaPayload{
		OK:                true,
		Source:            domain.SourceLiveAPI,
		FetchedAt:         isoTime(s.now()),
		PatchLabel:        latestPatchLabel(patchRows),
		PopulationPlayers: populationPlayers,
		PopulationMatches: populationMatches,
		HeroStats:         heroStats,
		ItemStats:         mapLiveItemMeta(catalog, itemRows),
		Notes: []string{
			"Population statistics from deadlock-api.com analytics endpoints.",
			"Ban rates are not exposed by these endpoints.",
		},
	}, nil
}

// mapLiveItemMeta turns the hero-bucketed item rows into per-hero item
// picks. The purchase-order rank comes from sorting each hero's items by
// average buy time.
func mapLiveItemMeta(catalog *assets.Catalog, itemRows []api.ItemStats) []domain.ItemMetaStat {
	byHero := make(map[int][]api.ItemStats)
	heroOrder := make([]int, 0)
	for _, row := range itemRows {
		if row.ItemID <= 0 || row.Bucket <= 0 || row.Matches <= 0 {
			continue
		}
		if _, ok := byHero[row.Bucket]; !ok {
			heroOrder = append(heroOrder, row.Bucket)
		}
		byHero[row.Bucket] = append(byHero[row.Bucket], row)
	}
	sort.Ints(heroOrder)

	stats := make([]domain.ItemMetaStat, 0)
	for _, heroID := range heroOrder {
		rows := byHero[heroID]
		sort.SliceStable(rows, func(i, j int) bool {
			ti := buyTimeOrInf(rows[i].AvgBuyTimeS)
			tj := buyTimeOrInf(rows[j].AvgBuyTimeS)
			if ti != tj {
				return ti < tj
			}
			return rows[i].Matches > rows[j].Matches
		})
		for index, row := range rows {
			stat := domain.ItemMetaStat{
				Hero:             catalog.HeroName(heroID),
				HeroIconURL:      catalog.HeroIconURL(heroID),
				Item:             catalog.ItemName(row.ItemID),
				SampleSize:       row.Matches,
				WinRate:          round1(float64(row.Wins) / float64(row.Matches) * 100),
				AvgPurchaseOrder: float64(index + 1),
			}
			if item, ok := catalog.ItemsByID[row.ItemID]; ok {
				stat.ItemIconURL = item.IconURL
			}
			stats = append(stats, stat)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].WinRate != stats[j].WinRate {
			return stats[i].WinRate > stats[j].WinRate
		}
		if stats[i].SampleSize != stats[j].SampleSize {
			return stats[i].SampleSize > stats[j].SampleSize
		}
		if stats[i].Hero != stats[j].Hero {
			return stats[i].Hero < stats[j].Hero
		}
		return stats[i].Item < stats[j].Item
	})
	if len(stats) > constants.ItemMetaMaxEntries {
		stats = stats[:constants.ItemMetaMaxEntries]
	}
	return stats
}

// heroPicks is the pick count for one analytics row. Wins plus losses is
// the more reliable figure; matches is the fallback when both are zero.
func heroPicks(row api.AnalyticsHeroStats) int {
	if picks := row.Wins + row.Losses; picks > 0 {
		return picks
	}
	return row.Matches
}

// latestPatchLabel picks the newest patch title by publication date; the
// feed itself carries no ordering guarantee.
func latestPatchLabel(patches []api.Patch) string {
	sorted := append([]api.Patch(nil), patches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return patchPubTime(sorted[i].PubDate).After(patchPubTime(sorted[j].PubDate))
	})
	for _, patch := range sorted {
		if title := strings.TrimSpace(patch.Title); title != "" {
			return title
		}
	}
	return "Deadlock (live)"
}

func patchPubTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
