package service

import (
	"strconv"
	"testing"

	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func TestBuildLeaderboard_Deterministic(t *testing.T) {
	m := newTestMockSource()

	first := m.BuildLeaderboard(domain.RegionEurope, 50, 0)
	second := m.BuildLeaderboard(domain.RegionEurope, 50, 0)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same region produced different ladders (-first +second):\n%s", diff)
	}
}

func TestBuildLeaderboard_RegionsDiverge(t *testing.T) {
	m := newTestMockSource()

	eu := m.BuildLeaderboard(domain.RegionEurope, 10, 0)
	asia := m.BuildLeaderboard(domain.RegionAsia, 10, 0)

	if eu.Entries[0].AccountName == asia.Entries[0].AccountName {
		t.Error("different regions produced the same top entry")
	}
}

func TestBuildLeaderboard_Shape(t *testing.T) {
	m := newTestMockSource()
	board := m.BuildLeaderboard(domain.RegionNAmerica, 25, 0)

	if board.Source != domain.SourceMock {
		t.Errorf("source = %q, want %q", board.Source, domain.SourceMock)
	}
	if board.Region != domain.RegionNAmerica {
		t.Errorf("region = %q, want %q", board.Region, domain.RegionNAmerica)
	}
	if len(board.Entries) != 25 {
		t.Fatalf("entries = %d, want 25", len(board.Entries))
	}
	if board.TotalEntries != len(board.Entries) {
		t.Errorf("totalEntries = %d, want %d", board.TotalEntries, len(board.Entries))
	}

	for i, entry := range board.Entries {
		if entry.Position != i+1 {
			t.Errorf("entry %d: position = %d", i, entry.Position)
		}
		if len(entry.TopHeroes) != constants.LeaderboardTopHeroes {
			t.Errorf("entry %d: topHeroes = %d, want %d", i, len(entry.TopHeroes), constants.LeaderboardTopHeroes)
		}
		seen := make(map[int]struct{})
		for _, ref := range entry.TopHeroes {
			if _, dup := seen[ref.HeroID]; dup {
				t.Errorf("entry %d: duplicate top hero %d", i, ref.HeroID)
			}
			seen[ref.HeroID] = struct{}{}
		}
		if entry.BadgeLevel == nil || *entry.BadgeLevel < 1 {
			t.Errorf("entry %d: missing badge level", i)
		}
		if entry.RankLabel == nil || *entry.RankLabel == "" {
			t.Errorf("entry %d: missing rank label", i)
		}
		if entry.PrimaryAccountID == nil || entry.SteamID64 == nil {
			t.Fatalf("entry %d: missing account identity", i)
		}
		wantSteam := strconv.FormatInt(*entry.PrimaryAccountID+constants.SteamID64Offset, 10)
		if *entry.SteamID64 != wantSteam {
			t.Errorf("entry %d: steamId64 = %s, want %s", i, *entry.SteamID64, wantSteam)
		}
	}
}

func TestBuildLeaderboard_BadgeLevelsDecay(t *testing.T) {
	m := newTestMockSource()
	board := m.BuildLeaderboard(domain.RegionEurope, 100, 0)

	for i := 1; i < len(board.Entries); i++ {
		if *board.Entries[i].BadgeLevel > *board.Entries[i-1].BadgeLevel {
			t.Errorf("badge level increases down the ladder at position %d", i+1)
		}
	}
}

func TestBuildLeaderboard_HeroFilter(t *testing.T) {
	m := newTestMockSource()
	const heroID = 5

	board := m.BuildLeaderboard(domain.RegionEurope, 20, heroID)

	if len(board.Entries) == 0 {
		t.Fatal("hero filter produced an empty ladder")
	}
	for i, entry := range board.Entries {
		if !refsContainHero(entry.TopHeroes, heroID) {
			t.Errorf("entry %d survived filter without hero %d", i, heroID)
		}
		if entry.Position != i+1 {
			t.Errorf("entry %d: positions not renumbered after filtering, got %d", i, entry.Position)
		}
	}
}

func TestBuildLeaderboard_LimitClamped(t *testing.T) {
	m := newTestMockSource()

	board := m.BuildLeaderboard(domain.RegionEurope, 10_000, 0)
	if len(board.Entries) > constants.LeaderboardLimitMax {
		t.Errorf("entries = %d, exceeds max %d", len(board.Entries), constants.LeaderboardLimitMax)
	}

	board = m.BuildLeaderboard(domain.RegionEurope, -5, 0)
	if len(board.Entries) != 1 {
		t.Errorf("entries = %d for negative limit, want 1", len(board.Entries))
	}
}
