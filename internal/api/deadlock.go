package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"deadlock-tracker/internal/config"

	"github.com/valyala/fasthttp"
)

// DeadlockClient talks to the live stats API. All endpoints are read-only
// GET requests; the API key header is optional.
type DeadlockClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewDeadlockClient(cfg *config.Config) *DeadlockClient {
	return &DeadlockClient{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.APITimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *DeadlockClient) GetSteamProfiles(ctx context.Context, accountID int64) ([]SteamProfile, error) {
	return doRequest[[]SteamProfile](ctx, c, "/v1/players/steam", url.Values{
		"account_ids": {strconv.FormatInt(accountID, 10)},
	})
}

func (c *DeadlockClient) GetMatchHistory(ctx context.Context, accountID int64) ([]MatchHistoryEntry, error) {
	return doRequest[[]MatchHistoryEntry](ctx, c, fmt.Sprintf("/v1/players/%d/match-history", accountID), nil)
}

func (c *DeadlockClient) GetPlayerCard(ctx context.Context, accountID int64) ([]PlayerCard, error) {
	return doRequest[[]PlayerCard](ctx, c, fmt.Sprintf("/v1/players/%d/card", accountID), nil)
}

func (c *DeadlockClient) GetMMRHistory(ctx context.Context, accountID int64) ([]MMRHistoryEntry, error) {
	return doRequest[[]MMRHistoryEntry](ctx, c, fmt.Sprintf("/v1/players/%d/mmr-history", accountID), nil)
}

func (c *DeadlockClient) GetPlayerHeroStats(ctx context.Context, accountID int64) ([]PlayerHeroStats, error) {
	return doRequest[[]PlayerHeroStats](ctx, c, "/v1/players/hero-stats", url.Values{
		"account_ids": {strconv.FormatInt(accountID, 10)},
	})
}

func (c *DeadlockClient) GetPlayerMetrics(ctx context.Context, accountID int64, heroID int) (MetricsMap, error) {
	return doRequest[MetricsMap](ctx, c, "/v1/analytics/player-stats/metrics", url.Values{
		"account_ids": {strconv.FormatInt(accountID, 10)},
		"hero_ids":    {strconv.Itoa(heroID)},
		"max_matches": {"200"},
	})
}

func (c *DeadlockClient) GetPlayerItemStats(ctx context.Context, accountID int64, heroID int) ([]ItemStats, error) {
	return doRequest[[]ItemStats](ctx, c, "/v1/analytics/item-stats", url.Values{
		"account_id":  {strconv.FormatInt(accountID, 10)},
		"hero_id":     {strconv.Itoa(heroID)},
		"game_mode":   {"normal"},
		"min_matches": {"1"},
	})
}

func (c *DeadlockClient) GetPlayerAbilityOrders(ctx context.Context, accountID int64, heroID int) ([]AbilityOrderStats, error) {
	return doRequest[[]AbilityOrderStats](ctx, c, "/v1/analytics/ability-order-stats", url.Values{
		"hero_id":     {strconv.Itoa(heroID)},
		"account_ids": {strconv.FormatInt(accountID, 10)},
		"game_mode":   {"normal"},
		"min_matches": {"1"},
	})
}

func (c *DeadlockClient) GetAnalyticsHeroStats(ctx context.Context) ([]AnalyticsHeroStats, error) {
	return doRequest[[]AnalyticsHeroStats](ctx, c, "/v1/analytics/hero-stats", url.Values{
		"bucket":    {"no_bucket"},
		"game_mode": {"normal"},
	})
}

func (c *DeadlockClient) GetAnalyticsItemStats(ctx context.Context) ([]ItemStats, error) {
	return doRequest[[]ItemStats](ctx, c, "/v1/analytics/item-stats", url.Values{
		"bucket":      {"hero"},
		"game_mode":   {"normal"},
		"min_matches": {"100"},
	})
}

func (c *DeadlockClient) GetPatches(ctx context.Context) ([]Patch, error) {
	return doRequest[[]Patch](ctx, c, "/v1/patches", nil)
}

func (c *DeadlockClient) GetLeaderboard(ctx context.Context, region string) (*LeaderboardResponse, error) {
	resp, err := doRequest[LeaderboardResponse](ctx, c, fmt.Sprintf("/v1/leaderboard/%s", region), nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func doRequest[T any](ctx context.Context, client *DeadlockClient, path string, query url.Values) (T, error) {
	var result T

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := client.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		req.Header.Set("X-API-KEY", client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(client.timeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return result, fmt.Errorf("GET %s: %w", path, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return result, fmt.Errorf("GET %s: API error: %d", path, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result, fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return result, nil
}

type SteamProfile struct {
	AccountID    int64  `json:"account_id"`
	PersonaName  string `json:"personaname"`
	CountryCode  string `json:"countrycode"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
}

type MatchHistoryEntry struct {
	AccountID       int64    `json:"account_id"`
	MatchID         int64    `json:"match_id"`
	HeroID          int      `json:"hero_id"`
	StartTime       int64    `json:"start_time"`
	GameMode        int      `json:"game_mode"`
	MatchMode       int      `json:"match_mode"`
	PlayerTeam      int      `json:"player_team"`
	PlayerKills     int      `json:"player_kills"`
	PlayerDeaths    int      `json:"player_deaths"`
	PlayerAssists   int      `json:"player_assists"`
	NetWorth        int      `json:"net_worth"`
	LastHits        int      `json:"last_hits"`
	Denies          int      `json:"denies"`
	HeroLevel       int      `json:"hero_level"`
	MatchDurationS  int      `json:"match_duration_s"`
	MatchResult     int      `json:"match_result"`
	BrawlScoreTeam0 *int     `json:"brawl_score_team0"`
	BrawlScoreTeam1 *int     `json:"brawl_score_team1"`
}

type MMRHistoryEntry struct {
	AccountID    int64   `json:"account_id"`
	MatchID      int64   `json:"match_id"`
	StartTime    int64   `json:"start_time"`
	PlayerScore  float64 `json:"player_score"`
	Rank         int     `json:"rank"`
	Division     int     `json:"division"`
	DivisionTier int     `json:"division_tier"`
}

type PlayerCard struct {
	AccountID        int64 `json:"account_id"`
	RankedBadgeLevel *int  `json:"ranked_badge_level"`
	RankedRank       *int  `json:"ranked_rank"`
	RankedSubrank    *int  `json:"ranked_subrank"`
}

type PlayerHeroStats struct {
	AccountID       int64   `json:"account_id"`
	HeroID          int     `json:"hero_id"`
	MatchesPlayed   int     `json:"matches_played"`
	TimePlayed      int     `json:"time_played"`
	Wins            int     `json:"wins"`
	Kills           int     `json:"kills"`
	Deaths          int     `json:"deaths"`
	Assists         int     `json:"assists"`
	KillsPerMin     float64 `json:"kills_per_min"`
	DeathsPerMin    float64 `json:"deaths_per_min"`
	AssistsPerMin   float64 `json:"assists_per_min"`
	NetworthPerMin  float64 `json:"networth_per_min"`
	DamagePerMin    float64 `json:"damage_per_min"`
	ObjDamagePerMin float64 `json:"obj_damage_per_min"`
}

type ItemStats struct {
	ItemID             int      `json:"item_id"`
	Bucket             int      `json:"bucket"`
	Wins               int      `json:"wins"`
	Losses             int      `json:"losses"`
	Matches            int      `json:"matches"`
	Players            int      `json:"players"`
	AvgBuyTimeS        *float64 `json:"avg_buy_time_s"`
	AvgSellTimeS       *float64 `json:"avg_sell_time_s"`
	AvgBuyTimeRelative *float64 `json:"avg_buy_time_relative"`
}

type AbilityOrderStats struct {
	Abilities []int `json:"abilities"`
	Wins      int   `json:"wins"`
	Losses    int   `json:"losses"`
	Matches   int   `json:"matches"`
	Players   int   `json:"players"`
}

type AnalyticsHeroStats struct {
	HeroID            int   `json:"hero_id"`
	Bucket            int   `json:"bucket"`
	Wins              int   `json:"wins"`
	Losses            int   `json:"losses"`
	Matches           int   `json:"matches"`
	MatchesPerBucket  int   `json:"matches_per_bucket"`
	Players           int   `json:"players"`
	TotalPlayerDamage int64 `json:"total_player_damage"`
	TotalNetWorth     int64 `json:"total_net_worth"`
}

// MetricsMap keys are metric names (e.g. "player_damage_per_min") with
// aggregate buckets as values.
type MetricsMap map[string]MetricsBucket

type MetricsBucket struct {
	Avg          *float64 `json:"avg"`
	Std          *float64 `json:"std"`
	Percentile50 *float64 `json:"percentile50"`
}

type Patch struct {
	Title   string `json:"title"`
	PubDate string `json:"pub_date"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntryAPI `json:"entries"`
}

type LeaderboardEntryAPI struct {
	Rank               int     `json:"rank"`
	AccountName        string  `json:"account_name"`
	AccountID          int64   `json:"account_id"`
	PossibleAccountIDs []int64 `json:"possible_account_ids"`
	BadgeLevel         int     `json:"badge_level"`
	TopHeroIDs         []int   `json:"top_hero_ids"`
}
