package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"deadlock-tracker/internal/api"
	"deadlock-tracker/internal/assets"
	"deadlock-tracker/internal/cache"
	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoMatchHistory marks a zero-row match history. Zero rows are
	// ambiguous between a new account and a degraded API, so the mapper
	// treats them as a failure and lets the orchestrator decide.
	ErrNoMatchHistory = errors.New("live match history returned no matches")

	// ErrInvalidAccountID marks a SteamID64 whose offset conversion lands
	// outside (0, 2^53-1].
	ErrInvalidAccountID = errors.New("steam id does not convert to a valid account id")

	// ErrNoMetaRows marks a hero-stats analytics response with no usable
	// rows, a hard signal the population sample is unusable.
	ErrNoMetaRows = errors.New("analytics hero-stats returned no usable rows")
)

// LiveSource maps the live stats API into the internal schema, joining
// against the asset catalog.
type LiveSource struct {
	client    *api.DeadlockClient
	assets    *assets.Loader
	metaCache *cache.TTL[*domain.MetaPayload]
	logger    zerolog.Logger
	now       func() time.Time
}

func NewLiveSource(client *api.DeadlockClient, loader *assets.Loader, logger zerolog.Logger) *LiveSource {
	return &LiveSource{
		client: client,
		assets: loader,
		metaCache: cache.NewTTL[*domain.MetaPayload](
			constants.MetaCacheTTL,
			cache.WithClone[*domain.MetaPayload](func(p *domain.MetaPayload) *domain.MetaPayload { return p.Clone() }),
		),
		logger: logger,
		now:    time.Now,
	}
}

// steamID64ToAccountID converts a SteamID64 into the game's native account
// id by subtracting the Steam64 community base. Out-of-range results are
// hard failures, never clamped.
func steamID64ToAccountID(steamID64 string) (int64, error) {
	value, err := strconv.ParseInt(steamID64, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAccountID, steamID64)
	}
	accountID := value - constants.SteamID64Offset
	if accountID <= 0 || accountID > constants.MaxSafeAccountID {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAccountID, steamID64)
	}
	return accountID, nil
}

type heroEnrichment struct {
	metrics       api.MetricsMap
	itemRows      []api.ItemStats
	abilityOrders []api.AbilityOrderStats
}

// BuildPlayerProfile fetches, joins, and maps everything needed for one
// player profile. The match-history fetch is fatal on failure or empty
// result; card, MMR history, and hero stats degrade to empty.
func (s *LiveSource) BuildPlayerProfile(ctx context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error) {
	accountID, err := steamID64ToAccountID(steamID64)
	if err != nil {
		return nil, err
	}
	count = clampInt(count, constants.LiveMatchCountMin, constants.MatchCountMax)

	var (
		catalog      *assets.Catalog
		profiles     []api.SteamProfile
		history      []api.MatchHistoryEntry
		cards        []api.PlayerCard
		mmrHistory   []api.MMRHistoryEntry
		heroStatsRaw []api.PlayerHeroStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.assets.Catalog(gCtx)
		if err != nil {
			return fmt.Errorf("load asset catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profiles, err = s.client.GetSteamProfiles(gCtx, accountID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("account_id", accountID).Msg("steam profile fetch failed")
			profiles = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.client.GetMatchHistory(gCtx, accountID)
		if err != nil {
			return fmt.Errorf("fetch match history: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cards, err = s.client.GetPlayerCard(gCtx, accountID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("account_id", accountID).Msg("player card fetch failed")
			cards = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mmrHistory, err = s.client.GetMMRHistory(gCtx, accountID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("account_id", accountID).Msg("mmr history fetch failed")
			mmrHistory = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		heroStatsRaw, err = s.client.GetPlayerHeroStats(gCtx, accountID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("account_id", accountID).Msg("hero stats fetch failed")
			heroStatsRaw = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matchHistory := make([]api.MatchHistoryEntry, 0, len(history))
	for _, entry := range history {
		if entry.MatchID > 0 {
			matchHistory = append(matchHistory, entry)
		}
	}
	sort.SliceStable(matchHistory, func(i, j int) bool {
		return matchHistory[i].StartTime > matchHistory[j].StartTime
	})
	if len(matchHistory) > count {
		matchHistory = matchHistory[:count]
	}
	if len(matchHistory) == 0 {
		return nil, fmt.Errorf("%w: account %d", ErrNoMatchHistory, accountID)
	}

	heroStats := make([]api.PlayerHeroStats, 0, len(heroStatsRaw))
	heroStatsByHeroID := make(map[int]api.PlayerHeroStats)
	for _, entry := range heroStatsRaw {
		if entry.AccountID != accountID {
			continue
		}
		heroStats = append(heroStats, entry)
		if entry.HeroID > 0 {
			heroStatsByHeroID[entry.HeroID] = entry
		}
	}

	rankedMatchIDs := make(map[int64]struct{}, len(mmrHistory))
	for _, row := range mmrHistory {
		if row.MatchID > 0 {
			rankedMatchIDs[row.MatchID] = struct{}{}
		}
	}

	uniqueHeroIDs := make([]int, 0)
	seenHeroes := make(map[int]struct{})
	for _, entry := range matchHistory {
		if entry.HeroID > 0 {
			if _, ok := seenHeroes[entry.HeroID]; !ok {
				seenHeroes[entry.HeroID] = struct{}{}
				uniqueHeroIDs = append(uniqueHeroIDs, entry.HeroID)
			}
		}
	}

	enrichments := s.loadHeroEnrichments(ctx, accountID, uniqueHeroIDs)

	matches := make([]domain.MatchDetail, 0, len(matchHistory))
	for _, entry := range matchHistory {
		stats, hasStats := heroStatsByHeroID[entry.HeroID]
		var statsPtr *api.PlayerHeroStats
		if hasStats {
			statsPtr = &stats
		}
		matches = append(matches, mapLiveMatchEntry(entry, catalog, statsPtr, enrichments[entry.HeroID], rankedMatchIDs))
	}

	totalPlaytimeSeconds := 0
	for _, entry := range heroStats {
		if entry.TimePlayed > 0 {
			totalPlaytimeSeconds += entry.TimePlayed
		}
	}
	if totalPlaytimeSeconds == 0 {
		for _, match := range matches {
			totalPlaytimeSeconds += match.DurationSeconds
		}
	}

	var latestCard *api.PlayerCard
	if len(cards) > 0 {
		latestCard = &cards[0]
	}
	latestMmr := latestMMREntry(mmrHistory)

	rankTier := formatRankTier(latestCard, latestMmr)
	rankBadgeLevel := deriveRankBadgeLevel(latestCard, latestMmr)
	var hiddenMmr *int
	if latestMmr != nil {
		score := int(roundHalfUp(latestMmr.PlayerScore))
		hiddenMmr = &score
	}

	aggregates := aggregateMatches(matches)
	if favorite := favoriteHeroFromHeroStats(heroStats, catalog); favorite != nil {
		aggregates.FavoriteHero = favorite
	}

	steamProfile := findSteamProfile(profiles, accountID)
	personaName := fmt.Sprintf("Account_%d", accountID)
	region := "N/A"
	var avatarURL *string
	if steamProfile != nil {
		if name := strings.TrimSpace(steamProfile.PersonaName); name != "" {
			personaName = name
		}
		if cc := strings.TrimSpace(steamProfile.CountryCode); cc != "" {
			region = strings.ToUpper(cc)
		}
		avatarURL = firstNonEmpty(steamProfile.AvatarFull, steamProfile.AvatarMedium, steamProfile.Avatar)
	}

	var rankBadgeIconURL *string
	if rankBadgeLevel > 0 {
		if rank, ok := catalog.RanksByBadgeLevel[rankBadgeLevel]; ok {
			rankBadgeIconURL = rank.IconURL
		}
	}

	return &domain.PlayerProfilePayload{
		OK:        true,
		Source:    domain.SourceLiveAPI,
		FetchedAt: isoTime(s.now()),
		Player: domain.PlayerIdentity{
			SteamID64:            steamID64,
			PersonaName:          personaName,
			Region:               region,
			AccountLevel:         nil, // not exposed by the live endpoints
			TotalPlaytimeSeconds: totalPlaytimeSeconds,
			RankTier:             rankTier,
			HiddenMmr:            hiddenMmr,
			ProfileSeed:          fmt.Sprintf("deadlock-api-%d", accountID),
			AvatarURL:            avatarURL,
			RankBadgeIconURL:     rankBadgeIconURL,
		},
		Aggregates: aggregates,
		Matches:    matches,
		Notes: []string{
			"Live source: deadlock-api.com public endpoints.",
			"Profile, history, KDA, duration, result, net worth, and rank are real data.",
			"Damage, healing, and build ordering are enriched from per-hero analytics aggregates.",
			"A detailed souls-source breakdown is not exposed by these endpoints.",
		},
	}, nil
}

// loadHeroEnrichments fans out the three analytics fetches per hero. All of
// them are best-effort; a hero with no data maps with empty enrichment.
func (s *LiveSource) loadHeroEnrichments(ctx context.Context, accountID int64, heroIDs []int) map[int]*heroEnrichment {
	result := make(map[int]*heroEnrichment, len(heroIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, heroID := range heroIDs {
		heroID := heroID
		wg.Add(1)
		go func() {
			defer wg.Done()
			enrichment := &heroEnrichment{}

			var inner sync.WaitGroup
			inner.Add(3)
			go func() {
				defer inner.Done()
				if metrics, err := s.client.GetPlayerMetrics(ctx, accountID, heroID); err == nil {
					enrichment.metrics = metrics
				}
			}()
			go func() {
				defer inner.Done()
				if rows, err := s.client.GetPlayerItemStats(ctx, accountID, heroID); err == nil {
					enrichment.itemRows = rows
				}
			}()
			go func() {
				defer inner.Done()
				if rows, err := s.client.GetPlayerAbilityOrders(ctx, accountID, heroID); err == nil {
					enrichment.abilityOrders = rows
				}
			}()
			inner.Wait()

			mu.Lock()
			result[heroID] = enrichment
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

func mapLiveMatchEntry(
	entry api.MatchHistoryEntry,
	catalog *assets.Catalog,
	heroStats *api.PlayerHeroStats,
	enrichment *heroEnrichment,
	rankedMatchIDs map[int64]struct{},
) domain.MatchDetail {
	durationSeconds := maxInt(1, entry.MatchDurationS)
	minutes := float64(durationSeconds) / 60

	kills := maxInt(0, entry.PlayerKills)
	deaths := maxInt(0, entry.PlayerDeaths)
	assistCount := maxInt(0, entry.PlayerAssists)

	totalSouls := maxInt(0, entry.NetWorth)

	var metrics api.MetricsMap
	if enrichment != nil {
		metrics = enrichment.metrics
	}

	heroDamagePerMin := 0.0
	if heroStats != nil && heroStats.DamagePerMin > 0 {
		heroDamagePerMin = heroStats.DamagePerMin
	} else if avg := metricAvg(metrics, "player_damage_per_min"); avg != nil {
		heroDamagePerMin = *avg
	}
	objectiveDamagePerMin := 0.0
	if heroStats != nil && heroStats.ObjDamagePerMin > 0 {
		objectiveDamagePerMin = heroStats.ObjDamagePerMin
	} else if avg := metricAvg(metrics, "boss_damage_per_min"); avg != nil {
		objectiveDamagePerMin = *avg
	}
	healingPerMin := 0.0
	if avg := metricAvg(metrics, "healing_per_min", "player_healing_per_min", "self_healing_per_min"); avg != nil {
		healingPerMin = *avg
	}

	// Average duration on this hero anchors the skill build spacing; the
	// current match duration is the fallback.
	avgDuration := durationSeconds
	if heroStats != nil && heroStats.MatchesPlayed > 0 {
		if avg := int(roundHalfUp(float64(heroStats.TimePlayed) / float64(maxInt(1, heroStats.MatchesPlayed)))); avg > 0 {
			avgDuration = avg
		}
	}

	var itemRows []api.ItemStats
	var abilityOrders []api.AbilityOrderStats
	if enrichment != nil {
		itemRows = enrichment.itemRows
		abilityOrders = enrichment.abilityOrders
	}

	result := domain.OutcomeLoss
	if entry.MatchResult > 0 {
		result = domain.OutcomeWin
	}

	return domain.MatchDetail{
		MatchID:         strconv.FormatInt(entry.MatchID, 10),
		Hero:            catalog.HeroName(entry.HeroID),
		HeroIconURL:     catalog.HeroIconURL(entry.HeroID),
		Result:          result,
		Mode:            mapMatchMode(entry, rankedMatchIDs),
		PatchVersion:    "Deadlock API",
		StartedAt:       unixSecondsToIso(entry.StartTime),
		DurationSeconds: durationSeconds,
		Kda: domain.KdaStats{
			Kills:     kills,
			Deaths:    deaths,
			Assists:   assistCount,
			Ratio:     round2(float64(kills+assistCount) / float64(maxInt(1, deaths))),
			PerMinute: round2(float64(kills+assistCount) / maxFloat(1, minutes)),
		},
		Economy: domain.EconomyStats{
			TotalSouls:     totalSouls,
			SoulsPerMinute: round1(float64(totalSouls) / maxFloat(1, minutes)),
			// These endpoints expose net worth but no souls-source
			// breakdown, so everything lands in "other".
			Breakdown: domain.SoulBreakdown{
				Creeps:     0,
				Players:    0,
				Objectives: 0,
				Other:      totalSouls,
			},
		},
		Combat: domain.CombatStats{
			PlayerDamage:    maxInt(0, int(roundHalfUp(heroDamagePerMin*minutes))),
			ObjectiveDamage: maxInt(0, int(roundHalfUp(objectiveDamagePerMin*minutes))),
			Healing:         maxInt(0, int(roundHalfUp(healingPerMin*minutes))),
		},
		Build: domain.MatchBuild{
			Items:  buildHeroItemOrder(catalog, itemRows),
			Skills: buildHeroSkillOrder(catalog, entry.HeroID, abilityOrders, avgDuration),
		},
	}
}

// buildHeroItemOrder derives a purchase sequence from the hero's aggregate
// item rows: earliest average buy time first, ties broken by sample count.
func buildHeroItemOrder(catalog *assets.Catalog, itemRows []api.ItemStats) []domain.ItemPurchase {
	rows := make([]api.ItemStats, 0, len(itemRows))
	for _, row := range itemRows {
		if row.ItemID > 0 && row.Matches > 0 {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti := buyTimeOrInf(rows[i].AvgBuyTimeS)
		tj := buyTimeOrInf(rows[j].AvgBuyTimeS)
		if ti != tj {
			return ti < tj
		}
		return rows[i].Matches > rows[j].Matches
	})
	if len(rows) > constants.ItemBuildMaxEntries {
		rows = rows[:constants.ItemBuildMaxEntries]
	}

	purchases := make([]domain.ItemPurchase, 0, len(rows))
	for index, row := range rows {
		buyTime := float64((index + 1) * constants.DefaultBuyTimeStep)
		if row.AvgBuyTimeS != nil {
			buyTime = *row.AvgBuyTimeS
		}
		atSecond := maxInt(constants.ItemBuyTimeFloor, int(roundHalfUp(buyTime)))

		purchase := domain.ItemPurchase{
			Order:    index + 1,
			ItemName: catalog.ItemName(row.ItemID),
			Tier:     1,
			Cost:     0,
			AtSecond: atSecond,
		}
		if item, ok := catalog.ItemsByID[row.ItemID]; ok {
			purchase.Tier = item.Tier
			purchase.Cost = item.Cost
			purchase.IconURL = item.IconURL
		}
		purchases = append(purchases, purchase)
	}
	return purchases
}

// buildHeroSkillOrder picks the player's dominant ability sequence (by
// sample count, then wins) and spaces it evenly across the hero's average
// match duration.
func buildHeroSkillOrder(catalog *assets.Catalog, heroID int, abilityOrders []api.AbilityOrderStats, durationSeconds int) []domain.SkillUpgrade {
	var best *api.AbilityOrderStats
	for i := range abilityOrders {
		row := &abilityOrders[i]
		if len(row.Abilities) == 0 {
			continue
		}
		if best == nil ||
			row.Matches > best.Matches ||
			(row.Matches == best.Matches && row.Wins > best.Wins) {
			best = row
		}
	}
	if best == nil {
		return []domain.SkillUpgrade{}
	}

	abilityIDs := best.Abilities
	if len(abilityIDs) > constants.SkillBuildMaxEntries {
		abilityIDs = abilityIDs[:constants.SkillBuildMaxEntries]
	}

	var heroAbilities map[int]string
	if hero, ok := catalog.HeroesByID[heroID]; ok {
		heroAbilities = hero.Abilities
	}

	counters := make(map[string]int)
	totalSteps := len(abilityIDs)
	upgrades := make([]domain.SkillUpgrade, 0, totalSteps)
	for index, abilityID := range abilityIDs {
		label := heroAbilities[abilityID]
		if label == "" {
			label = fmt.Sprintf("Ability %d", abilityID)
		}
		counters[label]++

		atSecond := int(roundHalfUp(float64((index+1)*durationSeconds) / float64(totalSteps+2)))
		upgrades = append(upgrades, domain.SkillUpgrade{
			Order:      index + 1,
			Ability:    label,
			LevelAfter: counters[label],
			AtSecond:   maxInt(constants.SkillTimeFloor, atSecond),
		})
	}
	return upgrades
}

// mapMatchMode classifies by priority: ranked MMR-history membership wins,
// then present brawl scores imply Quickplay, then high match_mode values
// imply Custom.
func mapMatchMode(entry api.MatchHistoryEntry, rankedMatchIDs map[int64]struct{}) domain.MatchMode {
	if _, ok := rankedMatchIDs[entry.MatchID]; ok {
		return domain.ModeRanked
	}
	if entry.BrawlScoreTeam0 != nil && entry.BrawlScoreTeam1 != nil {
		return domain.ModeQuickplay
	}
	if entry.MatchMode >= 100 {
		return domain.ModeCustom
	}
	return domain.ModeQuickplay
}

func deriveRankBadgeLevel(card *api.PlayerCard, mmr *api.MMRHistoryEntry) int {
	if card != nil && card.RankedBadgeLevel != nil && *card.RankedBadgeLevel > 0 {
		return *card.RankedBadgeLevel
	}
	if mmr != nil && mmr.Rank > 0 {
		return mmr.Rank
	}
	return 0
}

// formatRankTier resolves the display rank with the cascade: card badge
// level, then latest MMR-history rank, then the card rank/subrank pair.
func formatRankTier(card *api.PlayerCard, mmr *api.MMRHistoryEntry) *string {
	if card != nil && card.RankedBadgeLevel != nil && *card.RankedBadgeLevel > 0 {
		label := fmt.Sprintf("Badge %d", *card.RankedBadgeLevel)
		return &label
	}
	if mmr != nil && mmr.Rank > 0 {
		label := fmt.Sprintf("Badge %d", mmr.Rank)
		return &label
	}
	if card != nil {
		rank := 0
		subrank := 0
		if card.RankedRank != nil {
			rank = maxInt(0, *card.RankedRank)
		}
		if card.RankedSubrank != nil {
			subrank = maxInt(0, *card.RankedSubrank)
		}
		if rank > 0 || subrank > 0 {
			label := fmt.Sprintf("Rank %d.%d", rank, subrank)
			return &label
		}
	}
	return nil
}

func latestMMREntry(history []api.MMRHistoryEntry) *api.MMRHistoryEntry {
	var latest *api.MMRHistoryEntry
	for i := range history {
		if latest == nil || history[i].StartTime > latest.StartTime {
			latest = &history[i]
		}
	}
	return latest
}

func favoriteHeroFromHeroStats(heroStats []api.PlayerHeroStats, catalog *assets.Catalog) *string {
	var best *api.PlayerHeroStats
	for i := range heroStats {
		if best == nil || heroStats[i].MatchesPlayed > best.MatchesPlayed {
			best = &heroStats[i]
		}
	}
	if best == nil || best.HeroID <= 0 {
		return nil
	}
	name := catalog.HeroName(best.HeroID)
	return &name
}

func findSteamProfile(profiles []api.SteamProfile, accountID int64) *api.SteamProfile {
	for i := range profiles {
		if profiles[i].AccountID == accountID {
			return &profiles[i]
		}
	}
	return nil
}

func metricAvg(metrics api.MetricsMap, names ...string) *float64 {
	if metrics == nil {
		return nil
	}
	for _, name := range names {
		if bucket, ok := metrics[name]; ok && bucket.Avg != nil {
			return bucket.Avg
		}
	}
	return nil
}

func buyTimeOrInf(value *float64) float64 {
	if value == nil {
		return float64(1 << 62)
	}
	return *value
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

func unixSecondsToIso(seconds int64) string {
	if seconds <= 0 {
		return isoTime(time.Now())
	}
	return isoTime(time.Unix(seconds, 0))
}
