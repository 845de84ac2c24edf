package constants

import "time"

const (
	AssetsCacheTTL = 1 * time.Hour
	MetaCacheTTL   = 5 * time.Minute
)

const (
	DefaultExternalAPITimeout = 8 * time.Second
	RequestTimeout            = 30 * time.Second
	ShutdownTimeout           = 5 * time.Second
)

const (
	// Steam64 community identifier base; subtracting it from a SteamID64
	// yields the game's native account id.
	SteamID64Offset = 76561197960265728

	// JS Number.MAX_SAFE_INTEGER, the ceiling the upstream API accepts
	// for account ids.
	MaxSafeAccountID = 9007199254740991
)

const (
	LiveMatchCountMin = 1
	MockMatchCountMin = 5
	MatchCountMax     = 50
	DefaultMatchCount = 20
)

const (
	ItemBuildMaxEntries  = 12
	SkillBuildMaxEntries = 16
	ItemMetaMaxEntries   = 14
	ItemBuyTimeFloor     = 45
	SkillTimeFloor       = 30
	DefaultBuyTimeStep   = 180

	// Roster concurrency per match, used to estimate population match
	// counts from total hero picks when the API omits matches_per_bucket.
	HeroesPerMatch = 12
)

const (
	MockPopulationPlayers     = 64
	MockMatchesPerPlayer      = 24
	MockItemMetaMinSampleSize = 18
)

const (
	LeaderboardLimitMax     = 200
	LeaderboardDefaultLimit = 100
	LeaderboardTopHeroes    = 3
)
