package service

import (
	"testing"
	"time"

	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestMockSource() *MockSource {
	m := NewMockSource(zerolog.Nop())
	m.now = func() time.Time {
		return time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	return m
}

func TestBuildPlayerProfile_Deterministic(t *testing.T) {
	m := newTestMockSource()

	first := m.BuildPlayerProfile("76561198000000001", 20)
	second := m.BuildPlayerProfile("76561198000000001", 20)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same id produced different profiles (-first +second):\n%s", diff)
	}
}

func TestBuildPlayerProfile_DifferentIDsDiverge(t *testing.T) {
	m := newTestMockSource()

	a := m.BuildPlayerProfile("76561198000000001", 20)
	b := m.BuildPlayerProfile("76561198000000002", 20)

	if a.Player.PersonaName == b.Player.PersonaName &&
		a.Matches[0].MatchID == b.Matches[0].MatchID {
		t.Error("distinct ids produced identical identity and match stream")
	}
}

func TestBuildPlayerProfile_CountClamped(t *testing.T) {
	m := newTestMockSource()

	cases := []struct {
		requested int
		want      int
	}{
		{20, 20},
		{1, constants.MockMatchCountMin},
		{0, constants.MockMatchCountMin},
		{999, constants.MatchCountMax},
	}
	for _, tc := range cases {
		profile := m.BuildPlayerProfile("76561198000000001", tc.requested)
		if len(profile.Matches) != tc.want {
			t.Errorf("count=%d: got %d matches, want %d", tc.requested, len(profile.Matches), tc.want)
		}
	}
}

func TestBuildPlayerProfile_SourceAndIdentity(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000001", 20)

	if !profile.OK {
		t.Error("ok = false, want true")
	}
	if profile.Source != domain.SourceMock {
		t.Errorf("source = %q, want %q", profile.Source, domain.SourceMock)
	}
	if profile.Player.SteamID64 != "76561198000000001" {
		t.Errorf("steamId64 = %q, echoed wrong", profile.Player.SteamID64)
	}
	if profile.Player.RankTier == nil || *profile.Player.RankTier == "" {
		t.Error("rankTier missing on synthetic profile")
	}
	if profile.Player.HiddenMmr == nil {
		t.Error("hiddenMmr missing on synthetic profile")
	}
}

func TestBuildPlayerProfile_KdaIdentities(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000042", 30)

	for _, match := range profile.Matches {
		kda := match.Kda
		minutes := float64(match.DurationSeconds) / 60

		wantRatio := round2(float64(kda.Kills+kda.Assists) / float64(maxInt(1, kda.Deaths)))
		if kda.Ratio != wantRatio {
			t.Errorf("match %s: ratio = %v, want %v", match.MatchID, kda.Ratio, wantRatio)
		}
		wantPerMinute := round2(float64(kda.Kills+kda.Assists) / maxFloat(1, minutes))
		if kda.PerMinute != wantPerMinute {
			t.Errorf("match %s: perMinute = %v, want %v", match.MatchID, kda.PerMinute, wantPerMinute)
		}
	}
}

func TestBuildPlayerProfile_SoulBreakdownSums(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000042", 30)

	for _, match := range profile.Matches {
		b := match.Economy.Breakdown
		sum := b.Creeps + b.Players + b.Objectives + b.Other
		if sum != match.Economy.TotalSouls {
			t.Errorf("match %s: breakdown sums to %d, totalSouls %d", match.MatchID, sum, match.Economy.TotalSouls)
		}
	}
}

func TestBuildPlayerProfile_BuildOrdering(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000007", 20)

	for _, match := range profile.Matches {
		items := match.Build.Items
		if len(items) < 8 || len(items) > constants.ItemBuildMaxEntries {
			t.Errorf("match %s: item count %d outside [8,%d]", match.MatchID, len(items), constants.ItemBuildMaxEntries)
		}
		for i, item := range items {
			if item.Order != i+1 {
				t.Errorf("match %s: item %d has order %d", match.MatchID, i, item.Order)
			}
			if item.AtSecond < constants.ItemBuyTimeFloor {
				t.Errorf("match %s: item bought at %ds, floor is %d", match.MatchID, item.AtSecond, constants.ItemBuyTimeFloor)
			}
			if i > 0 && items[i].Tier < items[i-1].Tier {
				t.Errorf("match %s: item tiers not non-decreasing at index %d", match.MatchID, i)
			}
		}

		skills := match.Build.Skills
		if len(skills) != constants.SkillBuildMaxEntries {
			t.Errorf("match %s: skill count %d, want %d", match.MatchID, len(skills), constants.SkillBuildMaxEntries)
		}
		for _, skill := range skills {
			if skill.AtSecond < constants.SkillTimeFloor {
				t.Errorf("match %s: skill at %ds, floor is %d", match.MatchID, skill.AtSecond, constants.SkillTimeFloor)
			}
			levelCap := 4
			if skill.Ability == "ULT" {
				levelCap = 3
			}
			if skill.LevelAfter < 1 || skill.LevelAfter > levelCap {
				t.Errorf("match %s: %s levelAfter %d outside [1,%d]", match.MatchID, skill.Ability, skill.LevelAfter, levelCap)
			}
		}
	}
}

func TestBuildPlayerProfile_AggregatesConsistent(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000099", 25)

	wins := 0
	for _, match := range profile.Matches {
		if match.Result == domain.OutcomeWin {
			wins++
		}
	}
	agg := profile.Aggregates
	if agg.TotalMatches != len(profile.Matches) {
		t.Errorf("totalMatches = %d, want %d", agg.TotalMatches, len(profile.Matches))
	}
	if agg.Wins != wins {
		t.Errorf("wins = %d, want %d", agg.Wins, wins)
	}
	if agg.Wins+agg.Losses != agg.TotalMatches {
		t.Errorf("wins+losses = %d, want %d", agg.Wins+agg.Losses, agg.TotalMatches)
	}
	if agg.LastMatchAt == nil || *agg.LastMatchAt != profile.Matches[0].StartedAt {
		t.Error("lastMatchAt does not match the most recent match")
	}
	if agg.FavoriteHero == nil {
		t.Error("favoriteHero missing")
	}
}

func TestBuildPlayerProfile_MatchesOrderedNewestFirst(t *testing.T) {
	m := newTestMockSource()
	profile := m.BuildPlayerProfile("76561198000000123", 20)

	for i := 1; i < len(profile.Matches); i++ {
		prev, err1 := time.Parse(time.RFC3339, profile.Matches[i-1].StartedAt)
		curr, err2 := time.Parse(time.RFC3339, profile.Matches[i].StartedAt)
		if err1 != nil || err2 != nil {
			t.Fatalf("unparseable startedAt at index %d", i)
		}
		if curr.After(prev) {
			t.Errorf("matches not newest-first at index %d", i)
		}
	}
}
