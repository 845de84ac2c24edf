package service

import (
	"errors"
	"testing"

	"deadlock-tracker/internal/api"
	"deadlock-tracker/internal/assets"
	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"
)

func TestSteamID64ToAccountID(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"valid", "76561198000000001", 39734273, false},
		{"smallest valid", "76561197960265729", 1, false},
		{"exactly the offset", "76561197960265728", 0, true},
		{"below the offset", "76561197960265000", 0, true},
		{"not numeric", "7656119800000000x", 0, true},
		{"empty", "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := steamID64ToAccountID(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("steamID64ToAccountID(%q) = %d, want error", tc.input, got)
				}
				if !errors.Is(err, ErrInvalidAccountID) {
					t.Errorf("error %v does not wrap ErrInvalidAccountID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("steamID64ToAccountID(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("steamID64ToAccountID(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestMapMatchMode(t *testing.T) {
	ranked := map[int64]struct{}{42: {}}

	cases := []struct {
		name  string
		entry api.MatchHistoryEntry
		want  domain.MatchMode
	}{
		{
			"mmr history wins over everything",
			api.MatchHistoryEntry{MatchID: 42, MatchMode: 150, BrawlScoreTeam0: intPtr(1), BrawlScoreTeam1: intPtr(2)},
			domain.ModeRanked,
		},
		{
			"brawl scores imply quickplay",
			api.MatchHistoryEntry{MatchID: 7, MatchMode: 150, BrawlScoreTeam0: intPtr(0), BrawlScoreTeam1: intPtr(3)},
			domain.ModeQuickplay,
		},
		{
			"one missing brawl score falls through",
			api.MatchHistoryEntry{MatchID: 7, MatchMode: 150, BrawlScoreTeam0: intPtr(1)},
			domain.ModeCustom,
		},
		{
			"high match_mode is custom",
			api.MatchHistoryEntry{MatchID: 7, MatchMode: 100},
			domain.ModeCustom,
		},
		{
			"default is quickplay",
			api.MatchHistoryEntry{MatchID: 7, MatchMode: 4},
			domain.ModeQuickplay,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapMatchMode(tc.entry, ranked); got != tc.want {
				t.Errorf("mapMatchMode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatRankTier(t *testing.T) {
	badge := 87
	rank := 8
	subrank := 3
	zero := 0

	cases := []struct {
		name string
		card *api.PlayerCard
		mmr  *api.MMRHistoryEntry
		want *string
	}{
		{
			"badge level first",
			&api.PlayerCard{RankedBadgeLevel: &badge, RankedRank: &rank, RankedSubrank: &subrank},
			&api.MMRHistoryEntry{Rank: 90},
			strPtr("Badge 87"),
		},
		{
			"mmr history second",
			&api.PlayerCard{RankedRank: &rank, RankedSubrank: &subrank},
			&api.MMRHistoryEntry{Rank: 90},
			strPtr("Badge 90"),
		},
		{
			"rank pair third",
			&api.PlayerCard{RankedRank: &rank, RankedSubrank: &subrank},
			nil,
			strPtr("Rank 8.3"),
		},
		{
			"subrank alone still labels",
			&api.PlayerCard{RankedRank: &zero, RankedSubrank: &subrank},
			nil,
			strPtr("Rank 0.3"),
		},
		{"nothing known", &api.PlayerCard{}, nil, nil},
		{"no card at all", nil, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatRankTier(tc.card, tc.mmr)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("formatRankTier = %q, want nil", *got)
			case tc.want != nil && got == nil:
				t.Errorf("formatRankTier = nil, want %q", *tc.want)
			case tc.want != nil && got != nil && *got != *tc.want:
				t.Errorf("formatRankTier = %q, want %q", *got, *tc.want)
			}
		})
	}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func testCatalog() *assets.Catalog {
	icon := "https://assets.example.com/heroes/abrams.png"
	return &assets.Catalog{
		HeroesByID: map[int]assets.HeroRecord{
			1: {ID: 1, Name: "Abrams", Abilities: map[int]string{11: "Siphon Life", 12: "Shoulder Charge"}, IconURL: &icon},
		},
		ItemsByID: map[int]assets.ItemRecord{
			100: {ID: 100, Name: "Basic Magazine", Cost: 500, Tier: 1},
			200: {ID: 200, Name: "Enduring Spirit", Cost: 1250, Tier: 2},
			300: {ID: 300, Name: "Improved Cooldown", Cost: 3000, Tier: 3},
		},
		RanksByBadgeLevel: map[int]assets.RankRecord{
			87: {BadgeLevel: 87, Name: "Phantom I"},
		},
	}
}

func TestBuildHeroItemOrder(t *testing.T) {
	catalog := testCatalog()
	rows := []api.ItemStats{
		{ItemID: 300, Matches: 40, AvgBuyTimeS: floatPtr(900)},
		{ItemID: 100, Matches: 60, AvgBuyTimeS: floatPtr(120.4)},
		{ItemID: 200, Matches: 55, AvgBuyTimeS: nil},
		{ItemID: 0, Matches: 99},  // no item id
		{ItemID: 400, Matches: 0}, // no sample
	}

	purchases := buildHeroItemOrder(catalog, rows)

	if len(purchases) != 3 {
		t.Fatalf("purchases = %d, want 3", len(purchases))
	}
	if purchases[0].ItemName != "Basic Magazine" {
		t.Errorf("first purchase = %q, want earliest buy time first", purchases[0].ItemName)
	}
	if purchases[0].AtSecond != 120 {
		t.Errorf("first purchase atSecond = %d, want 120", purchases[0].AtSecond)
	}
	if purchases[1].ItemName != "Improved Cooldown" {
		t.Errorf("second purchase = %q, want known buy times before unknown", purchases[1].ItemName)
	}
	// Missing buy time falls back to a slot-based estimate.
	if purchases[2].ItemName != "Enduring Spirit" {
		t.Errorf("last purchase = %q, want the row with no buy time", purchases[2].ItemName)
	}
	if purchases[2].AtSecond != 3*constants.DefaultBuyTimeStep {
		t.Errorf("fallback atSecond = %d, want %d", purchases[2].AtSecond, 3*constants.DefaultBuyTimeStep)
	}
	for i, p := range purchases {
		if p.Order != i+1 {
			t.Errorf("purchase %d: order = %d", i, p.Order)
		}
	}
}

func TestBuildHeroItemOrder_CapsAtTwelve(t *testing.T) {
	catalog := testCatalog()
	rows := make([]api.ItemStats, 0, 20)
	for i := 1; i <= 20; i++ {
		rows = append(rows, api.ItemStats{ItemID: i, Matches: i, AvgBuyTimeS: floatPtr(float64(i * 60))})
	}

	purchases := buildHeroItemOrder(catalog, rows)
	if len(purchases) != constants.ItemBuildMaxEntries {
		t.Errorf("purchases = %d, want cap %d", len(purchases), constants.ItemBuildMaxEntries)
	}
}

func TestBuildHeroSkillOrder(t *testing.T) {
	catalog := testCatalog()
	orders := []api.AbilityOrderStats{
		{Abilities: []int{12, 11}, Matches: 3, Wins: 1},
		{Abilities: []int{11, 12, 11, 99}, Matches: 10, Wins: 6},
		{Abilities: []int{}, Matches: 50},
	}

	skills := buildHeroSkillOrder(catalog, 1, orders, 1800)

	if len(skills) != 4 {
		t.Fatalf("skills = %d, want 4 from the dominant row", len(skills))
	}
	if skills[0].Ability != "Siphon Life" {
		t.Errorf("first skill = %q, want resolved ability name", skills[0].Ability)
	}
	if skills[2].Ability != "Siphon Life" || skills[2].LevelAfter != 2 {
		t.Errorf("repeat pick = %q level %d, want Siphon Life level 2", skills[2].Ability, skills[2].LevelAfter)
	}
	if skills[3].Ability != "Ability 99" {
		t.Errorf("unknown ability = %q, want placeholder label", skills[3].Ability)
	}
	for i := 1; i < len(skills); i++ {
		if skills[i].AtSecond < skills[i-1].AtSecond {
			t.Errorf("skill times not non-decreasing at index %d", i)
		}
		if skills[i].AtSecond < constants.SkillTimeFloor {
			t.Errorf("skill %d at %ds below floor", i, skills[i].AtSecond)
		}
	}
}

func TestBuildHeroSkillOrder_NoRows(t *testing.T) {
	skills := buildHeroSkillOrder(testCatalog(), 1, nil, 1800)
	if len(skills) != 0 {
		t.Errorf("skills = %d, want empty build without ability data", len(skills))
	}
}

func TestMetricAvg(t *testing.T) {
	metrics := api.MetricsMap{
		"player_damage_per_min": {Avg: floatPtr(812.5)},
		"healing_per_min":       {},
	}

	if got := metricAvg(metrics, "player_damage_per_min"); got == nil || *got != 812.5 {
		t.Errorf("metricAvg known key = %v, want 812.5", got)
	}
	if got := metricAvg(metrics, "healing_per_min", "player_healing_per_min"); got != nil {
		t.Errorf("metricAvg nil-avg bucket = %v, want nil", *got)
	}
	if got := metricAvg(nil, "anything"); got != nil {
		t.Error("metricAvg on nil map should be nil")
	}
}
