package service

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"deadlock-tracker/internal/cache"
	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type mockItem struct {
	name string
	tier int
	cost int
}

var mockHeroes = []string{
	"Abrams", "Bebop", "Dynamo", "Grey Talon", "Haze", "Infernus", "Ivy",
	"Kelvin", "Lady Geist", "Lash", "McGinnis", "Mirage", "Mo & Krill",
	"Paradox", "Pocket", "Seven", "Shiv", "Vindicta", "Viscous", "Warden",
	"Wraith", "Yamato",
}

var mockItems = []mockItem{
	{"Headshot Booster", 1, 500},
	{"Swift Strikes", 1, 500},
	{"Spirit Flask", 1, 500},
	{"Stamina Matrix", 1, 750},
	{"Burst Magazine", 2, 1250},
	{"Siphon Bullets", 2, 1250},
	{"Phantom Rounds", 2, 1500},
	{"Warp Stone", 2, 1500},
	{"Reactive Armor", 2, 1750},
	{"Mystic Reverb", 2, 1750},
	{"Silencer Module", 3, 3000},
	{"Titanic Magazine", 3, 3000},
	{"Colossus Core", 3, 3250},
	{"Soul Recycler", 3, 3250},
	{"Ethereal Shift", 3, 3500},
	{"Pristine Emblem", 3, 3500},
	{"Unstoppable Drive", 4, 6200},
	{"Ancient Reactor", 4, 6200},
	{"Leviathan Plate", 4, 6400},
	{"Soul Furnace", 4, 6500},
}

var mockRegions = []string{"EU", "NA", "SA", "APAC"}

// Weighted toward Quickplay, matching observed queue popularity.
var mockModes = []domain.MatchMode{
	domain.ModeQuickplay, domain.ModeRanked, domain.ModeQuickplay,
	domain.ModeRanked, domain.ModeQuickplay, domain.ModeCustom,
}

var mockRankTiers = []string{
	"Seeker I", "Seeker II", "Seeker III",
	"Rogue I", "Rogue II", "Rogue III",
	"Phantom I", "Phantom II", "Phantom III",
	"Archon I", "Archon II", "Archon III",
}

var mockPatches = []string{"EA-0.8.2", "EA-0.8.3", "EA-0.9.0", "EA-0.9.1"}

// The canonical "standard" level-up pattern every synthetic build follows.
var mockSkillSequence = []string{
	"A1", "A2", "A1", "A3", "A1", "ULT", "A2", "A2",
	"A3", "A3", "ULT", "A1", "A2", "A3", "ULT", "A1",
}

// MockSource produces plausible synthetic payloads from identity seeds. It
// performs no I/O, never fails, and is fully deterministic for a given
// steamId64 and clock.
type MockSource struct {
	metaCache *cache.TTL[*domain.MetaPayload]
	logger    zerolog.Logger
	now       func() time.Time
}

func NewMockSource(logger zerolog.Logger) *MockSource {
	return &MockSource{
		metaCache: cache.NewTTL[*domain.MetaPayload](
			0, // synthetic inputs are static; never expires within a process
			cache.WithClone[*domain.MetaPayload](func(p *domain.MetaPayload) *domain.MetaPayload { return p.Clone() }),
		),
		logger: logger,
		now:    time.Now,
	}
}

// BuildPlayerProfile generates a profile for a SteamID64. The identity hash
// seeds all randomness, so identical inputs always yield identical output.
func (m *MockSource) BuildPlayerProfile(steamID64 string, count int) *domain.PlayerProfilePayload {
	count = clampInt(count, constants.MockMatchCountMin, constants.MatchCountMax)
	seed := seedFromString("player:" + steamID64)
	r := newRng(seed)

	personaName := buildPersonaName(steamID64, r)
	region := pick(r, mockRegions)
	accountLevel := r.IntBetween(18, 240)
	totalPlaytimeSeconds := r.IntBetween(90, 1800)*3600 + r.IntBetween(0, 3599)
	hiddenMmr := r.IntBetween(950, 3400)
	rankTier := rankTierFromMmr(hiddenMmr)

	mainPool := uniqueHeroes(r, 4)
	now := m.now()
	cursor := now.Add(-time.Duration(r.IntBetween(40, 360)) * time.Minute)

	matches := make([]domain.MatchDetail, 0, count)
	for index := 0; index < count; index++ {
		hero := chooseHero(mainPool, r)
		mode := pick(r, mockModes)
		durationSeconds := r.IntBetween(980, 2450)

		performanceBias := float64(hiddenMmr-1800)/1000 + (heroBias(hero)-0.5)*0.25
		winChance := clamp01(0.48 + performanceBias*0.08 + (r.Float64()-0.5)*0.08)
		didWin := r.Float64() <= winChance

		var killsBase, deathsBase, assistsBase int
		if didWin {
			killsBase = r.IntBetween(5, 18)
			deathsBase = r.IntBetween(1, 8)
			assistsBase = r.IntBetween(7, 24)
		} else {
			killsBase = r.IntBetween(2, 14)
			deathsBase = r.IntBetween(4, 13)
			assistsBase = r.IntBetween(4, 20)
		}
		kills := maxInt(0, killsBase+r.IntBetween(-2, 2))
		deaths := maxInt(0, deathsBase+r.IntBetween(-1, 2))
		assists := maxInt(0, assistsBase+r.IntBetween(-3, 3))
		minutes := float64(durationSeconds) / 60

		var spmBase int
		if didWin {
			spmBase = r.IntBetween(560, 930)
		} else {
			spmBase = r.IntBetween(420, 780)
		}
		soulsPerMinute := round1(float64(spmBase) + float64(hiddenMmr-1800)/30 + float64(r.IntBetween(-55, 55)))
		totalSouls := maxInt(6500, int(roundHalfUp(soulsPerMinute*minutes)))

		breakdown := splitSouls(totalSouls, r)
		playerDamage := maxInt(2000, int(roundHalfUp(float64(totalSouls)*(0.55+r.Float64()*0.85))))
		objectiveDamage := maxInt(300, int(roundHalfUp(float64(totalSouls)*(0.12+r.Float64()*0.4))))
		healing := maxInt(0, int(roundHalfUp(float64(totalSouls)*healingProfile(hero)*(0.08+r.Float64()*0.25))))

		items := buildItemPurchaseOrder(durationSeconds, r)
		skills := buildSkillBuild(durationSeconds, r)

		cursor = cursor.Add(-time.Duration(durationSeconds) * time.Second)
		cursor = cursor.Add(-time.Duration(r.IntBetween(25, 230)) * time.Minute)

		result := domain.OutcomeLoss
		if didWin {
			result = domain.OutcomeWin
		}

		matches = append(matches, domain.MatchDetail{
			MatchID:         buildMatchID(steamID64, index, seed),
			Hero:            hero,
			Result:          result,
			Mode:            mode,
			PatchVersion:    pick(r, mockPatches),
			StartedAt:       isoTime(cursor),
			DurationSeconds: durationSeconds,
			Kda: domain.KdaStats{
				Kills:     kills,
				Deaths:    deaths,
				Assists:   assists,
				Ratio:     round2(float64(kills+assists) / float64(maxInt(1, deaths))),
				PerMinute: round2(float64(kills+assists) / maxFloat(1, minutes)),
			},
			Economy: domain.EconomyStats{
				TotalSouls:     totalSouls,
				SoulsPerMinute: soulsPerMinute,
				Breakdown:      breakdown,
			},
			Combat: domain.CombatStats{
				PlayerDamage:    playerDamage,
				ObjectiveDamage: objectiveDamage,
				Healing:         healing,
			},
			Build: domain.MatchBuild{
				Items:  items,
				Skills: skills,
			},
		})
	}

	aggregates := aggregateMatches(matches)

	return &domain.PlayerProfilePayload{
		OK:        true,
		Source:    domain.SourceMock,
		FetchedAt: isoTime(now),
		Player: domain.PlayerIdentity{
			SteamID64:            steamID64,
			PersonaName:          personaName,
			Region:               region,
			AccountLevel:         &accountLevel,
			TotalPlaytimeSeconds: totalPlaytimeSeconds,
			RankTier:             rankTier,
			HiddenMmr:            &hiddenMmr,
			ProfileSeed:          fmt.Sprintf("mock-%d", seed),
		},
		Aggregates: aggregates,
		Matches:    matches,
		Notes: []string{
			"Demo mode: deterministic synthetic data derived from the SteamID64.",
			"No upstream calls were made; repeated requests for the same id are stable.",
		},
	}
}

func buildPersonaName(steamID64 string, r *rng) string {
	suffix := steamID64
	if len(suffix) > 5 {
		suffix = suffix[len(suffix)-5:]
	}
	prefixes := []string{"Soul", "Lane", "Hex", "Vanta", "Pulse", "Rift", "Apex"}
	nouns := []string{"Runner", "Warden", "Shade", "Driver", "Keeper", "Hunter", "Pilot"}
	return pick(r, prefixes) + pick(r, nouns) + "_" + suffix
}

func chooseHero(mainPool []string, r *rng) string {
	roll := r.Float64()
	if roll < 0.62 {
		return pick(r, mainPool)
	}
	if roll < 0.84 {
		return pick(r, mockHeroes)
	}

	candidates := make([]string, 0, len(mockHeroes))
	for _, hero := range mockHeroes {
		if !containsString(mainPool, hero) {
			candidates = append(candidates, hero)
		}
	}
	if len(candidates) == 0 {
		candidates = mockHeroes
	}
	return pick(r, candidates)
}

func uniqueHeroes(r *rng, count int) []string {
	pool := append([]string(nil), mockHeroes...)
	shuffle(r, pool)
	return pool[:count]
}

// heroBias is a fixed per-hero constant in [0,1) derived from the hero name.
func heroBias(hero string) float64 {
	return float64(seedFromString(hero)%100) / 100
}

// healingProfile scales healing output; support-type heroes heal more.
func healingProfile(hero string) float64 {
	switch hero {
	case "Kelvin", "Dynamo", "Ivy", "Viscous":
		return 1.45
	case "Abrams", "Mo & Krill":
		return 1.15
	}
	return 0.65
}

func rankTierFromMmr(mmr int) *string {
	index := clampInt((mmr-900)/220, 0, len(mockRankTiers)-1)
	tier := mockRankTiers[index]
	return &tier
}

func buildMatchID(steamID64 string, index int, seed uint32) string {
	base, _ := strconv.ParseUint(steamID64, 10, 64)
	base += uint64(seed) + uint64(index*7919)
	return fmt.Sprintf("DL-%d", base)
}

// splitSouls partitions totalSouls into sources; "other" absorbs the
// remainder so the buckets always sum exactly.
func splitSouls(totalSouls int, r *rng) domain.SoulBreakdown {
	creepPct := 0.44 + r.Float64()*0.22
	playerPct := 0.15 + r.Float64()*0.18
	objectivePct := 0.12 + r.Float64()*0.16

	creeps := int(roundHalfUp(float64(totalSouls) * creepPct))
	players := int(roundHalfUp(float64(totalSouls) * playerPct))
	objectives := int(roundHalfUp(float64(totalSouls) * objectivePct))
	other := maxInt(0, totalSouls-creeps-players-objectives)

	return domain.SoulBreakdown{
		Creeps:     creeps,
		Players:    players,
		Objectives: objectives,
		Other:      other,
	}
}

func buildItemPurchaseOrder(durationSeconds int, r *rng) []domain.ItemPurchase {
	count := r.IntBetween(8, 12)
	pool := append([]mockItem(nil), mockItems...)
	shuffle(r, pool)
	picked := pool[:count]
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].tier != picked[j].tier {
			return picked[i].tier < picked[j].tier
		}
		if picked[i].cost != picked[j].cost {
			return picked[i].cost < picked[j].cost
		}
		return picked[i].name < picked[j].name
	})

	purchases := make([]domain.ItemPurchase, 0, count)
	for index, item := range picked {
		timeFloor := int(roundHalfUp(float64(durationSeconds*(index+1)) / float64(count+2)))
		purchases = append(purchases, domain.ItemPurchase{
			Order:    index + 1,
			ItemName: item.name,
			Tier:     item.tier,
			Cost:     item.cost,
			AtSecond: maxInt(constants.ItemBuyTimeFloor, timeFloor+r.IntBetween(-45, 60)),
		})
	}
	return purchases
}

func buildSkillBuild(durationSeconds int, r *rng) []domain.SkillUpgrade {
	count := constants.SkillBuildMaxEntries
	upgrades := make([]domain.SkillUpgrade, 0, count)
	counters := make(map[string]int)

	for index := 0; index < count; index++ {
		ability := "A1"
		if index < len(mockSkillSequence) {
			ability = mockSkillSequence[index]
		}
		counters[ability]++

		levelCap := 4
		if ability == "ULT" {
			levelCap = 3
		}

		evenSpacing := int(roundHalfUp(float64(durationSeconds*(index+1)) / float64(count+2)))
		upgrades = append(upgrades, domain.SkillUpgrade{
			Order:      index + 1,
			Ability:    ability,
			LevelAfter: minInt(levelCap, counters[ability]),
			AtSecond:   maxInt(constants.SkillTimeFloor, evenSpacing+r.IntBetween(-20, 40)),
		})
	}
	return upgrades
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func roundHalfUp(value float64) float64 {
	return float64(int64(value + 0.5))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
