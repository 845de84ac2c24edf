package assets

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"deadlock-tracker/internal/api"
	"deadlock-tracker/internal/cache"
	"deadlock-tracker/internal/constants"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type HeroRecord struct {
	ID        int
	Name      string
	Abilities map[int]string
	IconURL   *string
}

type ItemRecord struct {
	ID      int
	Name    string
	Cost    int
	Tier    int
	IconURL *string
}

type RankRecord struct {
	BadgeLevel int
	Name       string
	IconURL    *string
}

// Catalog holds the ID-indexed reference tables joined against live data.
// Instances handed out by the Loader are independent copies.
type Catalog struct {
	HeroesByID        map[int]HeroRecord
	ItemsByID         map[int]ItemRecord
	RanksByBadgeLevel map[int]RankRecord
}

func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{
		HeroesByID:        make(map[int]HeroRecord, len(c.HeroesByID)),
		ItemsByID:         make(map[int]ItemRecord, len(c.ItemsByID)),
		RanksByBadgeLevel: make(map[int]RankRecord, len(c.RanksByBadgeLevel)),
	}
	for id, hero := range c.HeroesByID {
		abilities := make(map[int]string, len(hero.Abilities))
		for abilityID, name := range hero.Abilities {
			abilities[abilityID] = name
		}
		hero.Abilities = abilities
		hero.IconURL = clonePtr(hero.IconURL)
		out.HeroesByID[id] = hero
	}
	for id, item := range c.ItemsByID {
		item.IconURL = clonePtr(item.IconURL)
		out.ItemsByID[id] = item
	}
	for level, rank := range c.RanksByBadgeLevel {
		rank.IconURL = clonePtr(rank.IconURL)
		out.RanksByBadgeLevel[level] = rank
	}
	return out
}

func (c *Catalog) HeroName(heroID int) string {
	if hero, ok := c.HeroesByID[heroID]; ok {
		return hero.Name
	}
	return fmt.Sprintf("Hero %d", heroID)
}

func (c *Catalog) HeroIconURL(heroID int) *string {
	if hero, ok := c.HeroesByID[heroID]; ok {
		return hero.IconURL
	}
	return nil
}

func (c *Catalog) ItemName(itemID int) string {
	if item, ok := c.ItemsByID[itemID]; ok {
		return item.Name
	}
	return fmt.Sprintf("Item %d", itemID)
}

// Loader builds the catalog from the assets API and caches it process-wide
// for an hour with single-flight fill.
type Loader struct {
	client *api.AssetsClient
	cache  *cache.TTL[*Catalog]
	logger zerolog.Logger
}

func NewLoader(client *api.AssetsClient, logger zerolog.Logger) *Loader {
	return &Loader{
		client: client,
		cache: cache.NewTTL[*Catalog](
			constants.AssetsCacheTTL,
			cache.WithClone[*Catalog](func(c *Catalog) *Catalog { return c.Clone() }),
		),
		logger: logger,
	}
}

func (l *Loader) Catalog(ctx context.Context) (*Catalog, error) {
	return l.cache.Get(ctx, l.build)
}

// build fetches the three asset kinds concurrently. Each fetch degrades to
// an empty table on failure; only all three failing is a hard error.
func (l *Loader) build(ctx context.Context) (*Catalog, error) {
	var heroesRaw, itemsRaw, ranksRaw []api.RawAsset
	var heroesErr, itemsErr, ranksErr error

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		heroesRaw, heroesErr = l.client.GetHeroes(gCtx)
		return nil
	})
	g.Go(func() error {
		itemsRaw, itemsErr = l.client.GetItems(gCtx)
		return nil
	})
	g.Go(func() error {
		ranksRaw, ranksErr = l.client.GetRanks(gCtx)
		return nil
	})
	_ = g.Wait()

	if heroesErr != nil {
		l.logger.Warn().Err(heroesErr).Msg("hero assets fetch failed")
	}
	if itemsErr != nil {
		l.logger.Warn().Err(itemsErr).Msg("item assets fetch failed")
	}
	if ranksErr != nil {
		l.logger.Warn().Err(ranksErr).Msg("rank assets fetch failed, continuing without rank data")
	}
	if heroesErr != nil && itemsErr != nil && ranksErr != nil {
		return nil, fmt.Errorf("all asset fetches failed: %w", heroesErr)
	}

	catalog := &Catalog{
		HeroesByID:        buildHeroTable(heroesRaw, l.client.BaseURL()),
		ItemsByID:         buildItemTable(itemsRaw, l.client.BaseURL()),
		RanksByBadgeLevel: buildRankTable(ranksRaw, l.client.BaseURL()),
	}

	l.logger.Info().
		Int("heroes", len(catalog.HeroesByID)).
		Int("items", len(catalog.ItemsByID)).
		Int("ranks", len(catalog.RanksByBadgeLevel)).
		Msg("asset catalog built")

	return catalog, nil
}

func buildHeroTable(rows []api.RawAsset, baseURL string) map[int]HeroRecord {
	table := make(map[int]HeroRecord, len(rows))
	for _, row := range rows {
		heroID := firstInt(row, "id", "hero_id")
		if heroID <= 0 {
			continue
		}
		name := firstString(row, "name", "localized_name", "display_name")
		if name == "" {
			name = fmt.Sprintf("Hero %d", heroID)
		}

		abilities := make(map[int]string)
		for _, key := range []string{"abilities", "skills", "ability_list"} {
			collection, ok := row[key].([]interface{})
			if !ok {
				continue
			}
			for _, entry := range collection {
				ability, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				abilityID := firstInt(ability, "id", "ability_id")
				if abilityID <= 0 {
					continue
				}
				abilityName := firstString(ability, "name", "localized_name", "display_name", "class_name")
				if abilityName == "" {
					abilityName = fmt.Sprintf("Ability %d", abilityID)
				}
				abilities[abilityID] = abilityName
			}
		}

		table[heroID] = HeroRecord{
			ID:        heroID,
			Name:      name,
			Abilities: abilities,
			IconURL:   ExtractIconURL(row, KindHero, baseURL),
		}
	}
	return table
}

func buildItemTable(rows []api.RawAsset, baseURL string) map[int]ItemRecord {
	table := make(map[int]ItemRecord, len(rows))
	for _, row := range rows {
		itemID := firstInt(row, "id", "item_id")
		if itemID <= 0 {
			continue
		}
		name := firstString(row, "name", "localized_name", "display_name")
		if name == "" {
			name = fmt.Sprintf("Item %d", itemID)
		}
		cost := firstInt(row, "cost", "item_cost", "shop_cost", "price")
		if cost < 0 {
			cost = 0
		}
		tier := firstInt(row, "tier", "item_tier", "shop_tier")
		if tier <= 0 {
			tier = InferTierFromCost(cost)
		}
		table[itemID] = ItemRecord{
			ID:      itemID,
			Name:    name,
			Cost:    cost,
			Tier:    tier,
			IconURL: ExtractIconURL(row, KindItem, baseURL),
		}
	}
	return table
}

func buildRankTable(rows []api.RawAsset, baseURL string) map[int]RankRecord {
	table := make(map[int]RankRecord, len(rows))
	for _, row := range rows {
		badgeLevel := firstInt(row, "badge_level", "rank", "id", "level")
		if badgeLevel <= 0 {
			continue
		}
		table[badgeLevel] = RankRecord{
			BadgeLevel: badgeLevel,
			Name:       firstString(row, "name", "localized_name", "display_name"),
			IconURL:    ExtractIconURL(row, KindRank, baseURL),
		}
	}
	return table
}

// InferTierFromCost approximates the shop tier for items whose asset row
// omits it.
func InferTierFromCost(cost int) int {
	switch {
	case cost >= 6000:
		return 4
	case cost >= 3000:
		return 3
	case cost >= 1200:
		return 2
	default:
		return 1
	}
}

func firstInt(row map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		if v, ok := asInt(row[key]); ok {
			return v
		}
	}
	return 0
}

func firstString(row map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := row[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func clonePtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
