package domain

// DataSource identifies which path produced a payload. It is part of the
// wire contract and must accurately reflect the producing path.
type DataSource string

const (
	SourceMock    DataSource = "mock"
	SourceLiveAPI DataSource = "live_api"
)

type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "WIN"
	OutcomeLoss MatchOutcome = "LOSS"
)

type MatchMode string

const (
	ModeQuickplay MatchMode = "Quickplay"
	ModeRanked    MatchMode = "Ranked"
	ModeCustom    MatchMode = "Custom"
)

type PlayerIdentity struct {
	SteamID64             string  `json:"steamId64"`
	PersonaName           string  `json:"personaName"`
	Region                string  `json:"region"`
	AccountLevel          *int    `json:"accountLevel"`
	TotalPlaytimeSeconds  int     `json:"totalPlaytimeSeconds"`
	RankTier              *string `json:"rankTier"`
	HiddenMmr             *int    `json:"hiddenMmr"`
	ProfileSeed           string  `json:"profileSeed"`
	AvatarURL             *string `json:"avatarUrl,omitempty"`
	RankBadgeIconURL      *string `json:"rankBadgeIconUrl,omitempty"`
}

type PlayerAggregates struct {
	TotalMatches         int     `json:"totalMatches"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	Winrate              float64 `json:"winrate"`
	AverageKdaRatio      float64 `json:"averageKdaRatio"`
	AverageKdaPerMinute  float64 `json:"averageKdaPerMinute"`
	AverageSpm           float64 `json:"averageSpm"`
	TotalSouls           int     `json:"totalSouls"`
	TotalHeroDamage      int     `json:"totalHeroDamage"`
	TotalObjectiveDamage int     `json:"totalObjectiveDamage"`
	TotalHealing         int     `json:"totalHealing"`
	FavoriteHero         *string `json:"favoriteHero"`
	LastMatchAt          *string `json:"lastMatchAt"`
}

type KdaStats struct {
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Assists   int     `json:"assists"`
	Ratio     float64 `json:"ratio"`
	PerMinute float64 `json:"perMinute"`
}

type SoulBreakdown struct {
	Creeps     int `json:"creeps"`
	Players    int `json:"players"`
	Objectives int `json:"objectives"`
	Other      int `json:"other"`
}

type EconomyStats struct {
	TotalSouls      int           `json:"totalSouls"`
	SoulsPerMinute  float64       `json:"soulsPerMinute"`
	Breakdown       SoulBreakdown `json:"breakdown"`
}

type CombatStats struct {
	PlayerDamage    int `json:"playerDamage"`
	ObjectiveDamage int `json:"objectiveDamage"`
	Healing         int `json:"healing"`
}

type ItemPurchase struct {
	Order    int     `json:"order"`
	ItemName string  `json:"itemName"`
	Tier     int     `json:"tier"`
	Cost     int     `json:"cost"`
	AtSecond int     `json:"atSecond"`
	IconURL  *string `json:"iconUrl,omitempty"`
}

type SkillUpgrade struct {
	Order      int    `json:"order"`
	Ability    string `json:"ability"`
	LevelAfter int    `json:"levelAfter"`
	AtSecond   int    `json:"atSecond"`
}

type MatchBuild struct {
	Items  []ItemPurchase `json:"items"`
	Skills []SkillUpgrade `json:"skills"`
}

type MatchDetail struct {
	MatchID         string       `json:"matchId"`
	Hero            string       `json:"hero"`
	HeroIconURL     *string      `json:"heroIconUrl,omitempty"`
	Result          MatchOutcome `json:"result"`
	Mode            MatchMode    `json:"mode"`
	PatchVersion    string       `json:"patchVersion"`
	StartedAt       string       `json:"startedAt"`
	DurationSeconds int          `json:"durationSeconds"`
	Kda             KdaStats     `json:"kda"`
	Economy         EconomyStats `json:"economy"`
	Combat          CombatStats  `json:"combat"`
	Build           MatchBuild   `json:"build"`
}

type PlayerProfilePayload struct {
	OK         bool             `json:"ok"`
	Source     DataSource       `json:"source"`
	FetchedAt  string           `json:"fetchedAt"`
	Player     PlayerIdentity   `json:"player"`
	Aggregates PlayerAggregates `json:"aggregates"`
	Matches    []MatchDetail    `json:"matches"`
	Notes      []string         `json:"notes"`
}

type HeroMetaStat struct {
	Hero        string   `json:"hero"`
	HeroIconURL *string  `json:"heroIconUrl,omitempty"`
	Picks       int      `json:"picks"`
	Wins        int      `json:"wins"`
	Matches     int      `json:"matches"`
	PickRate    float64  `json:"pickRate"`
	WinRate     float64  `json:"winRate"`
	BanRate     *float64 `json:"banRate"`
}

type ItemMetaStat struct {
	Hero             string  `json:"hero"`
	HeroIconURL      *string `json:"heroIconUrl,omitempty"`
	Item             string  `json:"item"`
	ItemIconURL      *string `json:"itemIconUrl,omitempty"`
	SampleSize       int     `json:"sampleSize"`
	WinRate          float64 `json:"winRate"`
	AvgPurchaseOrder float64 `json:"avgPurchaseOrder"`
}

type MetaPayload struct {
	OK                bool           `json:"ok"`
	Source            DataSource     `json:"source"`
	FetchedAt         string         `json:"fetchedAt"`
	PatchLabel        string         `json:"patchLabel"`
	PopulationPlayers int            `json:"populationPlayers"`
	PopulationMatches int            `json:"populationMatches"`
	HeroStats         []HeroMetaStat `json:"heroStats"`
	ItemStats         []ItemMetaStat `json:"itemStats"`
	Notes             []string       `json:"notes"`
}

type LeaderboardRegion string

const (
	RegionEurope   LeaderboardRegion = "Europe"
	RegionAsia     LeaderboardRegion = "Asia"
	RegionNAmerica LeaderboardRegion = "NAmerica"
	RegionSAmerica LeaderboardRegion = "SAmerica"
	RegionOceania  LeaderboardRegion = "Oceania"
)

func ValidLeaderboardRegion(value string) (LeaderboardRegion, bool) {
	switch LeaderboardRegion(value) {
	case RegionEurope, RegionAsia, RegionNAmerica, RegionSAmerica, RegionOceania:
		return LeaderboardRegion(value), true
	}
	return "", false
}

type LeaderboardHeroRef struct {
	HeroID      int     `json:"heroId"`
	Hero        string  `json:"hero"`
	HeroIconURL *string `json:"heroIconUrl,omitempty"`
}

type LeaderboardEntry struct {
	Position         int                  `json:"position"`
	AccountName      string               `json:"accountName"`
	PrimaryAccountID *int64               `json:"primaryAccountId"`
	SteamID64        *string              `json:"steamId64"`
	BadgeLevel       *int                 `json:"badgeLevel"`
	RankLabel        *string              `json:"rankLabel"`
	RankBadgeIconURL *string              `json:"rankBadgeIconUrl,omitempty"`
	TopHeroes        []LeaderboardHeroRef `json:"topHeroes"`
}

type LeaderboardPayload struct {
	OK           bool               `json:"ok"`
	Source       DataSource         `json:"source"`
	FetchedAt    string             `json:"fetchedAt"`
	Region       LeaderboardRegion  `json:"region"`
	TotalEntries int                `json:"totalEntries"`
	Entries      []LeaderboardEntry `json:"entries"`
	Notes        []string           `json:"notes"`
}

// ErrorPayload is the structured failure shape surfaced at the HTTP
// boundary instead of raw errors.
type ErrorPayload struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const (
	CodeInvalidSteamID64 = "INVALID_STEAM_ID64"
	CodeInvalidCount     = "INVALID_COUNT"
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)
