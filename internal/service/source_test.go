package service

import (
	"context"
	"errors"
	"testing"

	"deadlock-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	err      error
	source   domain.DataSource
	profiles int
	metas    int
	boards   int
}

func (f *fakeSource) PlayerProfile(_ context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error) {
	f.profiles++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PlayerProfilePayload{OK: true, Source: f.source, Player: domain.PlayerIdentity{SteamID64: steamID64}}, nil
}

func (f *fakeSource) MetaSnapshot(context.Context) (*domain.MetaPayload, error) {
	f.metas++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.MetaPayload{OK: true, Source: f.source}, nil
}

func (f *fakeSource) Leaderboard(_ context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error) {
	f.boards++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.LeaderboardPayload{OK: true, Source: f.source, Region: region}, nil
}

func TestStatsService_PrefersLive(t *testing.T) {
	live := &fakeSource{source: domain.SourceLiveAPI}
	mock := &fakeSource{source: domain.SourceMock}
	svc := NewStatsService(live, mock, true, zerolog.Nop())

	payload, err := svc.GetPlayerProfile(context.Background(), "76561198000000001", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Source != domain.SourceLiveAPI {
		t.Errorf("source = %q, want live", payload.Source)
	}
	if mock.profiles != 0 {
		t.Errorf("mock consulted %d times while live healthy", mock.profiles)
	}
}

func TestStatsService_FallsBackWhenLiveFails(t *testing.T) {
	live := &fakeSource{source: domain.SourceLiveAPI, err: errors.New("upstream 503")}
	mock := &fakeSource{source: domain.SourceMock}
	svc := NewStatsService(live, mock, true, zerolog.Nop())

	payload, err := svc.GetPlayerProfile(context.Background(), "76561198000000001", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Source != domain.SourceMock {
		t.Errorf("source = %q, want mock after live failure", payload.Source)
	}

	meta, err := svc.GetMetaStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Source != domain.SourceMock {
		t.Errorf("meta source = %q, want mock", meta.Source)
	}

	board, err := svc.GetLeaderboard(context.Background(), domain.RegionEurope, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board.Source != domain.SourceMock {
		t.Errorf("leaderboard source = %q, want mock", board.Source)
	}
}

func TestStatsService_FallbackDisabledPropagates(t *testing.T) {
	upstreamErr := errors.New("upstream 503")
	live := &fakeSource{source: domain.SourceLiveAPI, err: upstreamErr}
	mock := &fakeSource{source: domain.SourceMock}
	svc := NewStatsService(live, mock, false, zerolog.Nop())

	if _, err := svc.GetPlayerProfile(context.Background(), "76561198000000001", 20); !errors.Is(err, upstreamErr) {
		t.Errorf("profile error = %v, want the live error propagated", err)
	}
	if _, err := svc.GetMetaStats(context.Background()); !errors.Is(err, upstreamErr) {
		t.Errorf("meta error = %v, want the live error propagated", err)
	}
	if _, err := svc.GetLeaderboard(context.Background(), domain.RegionEurope, 50, 0); !errors.Is(err, upstreamErr) {
		t.Errorf("leaderboard error = %v, want the live error propagated", err)
	}
	if mock.profiles+mock.metas+mock.boards != 0 {
		t.Error("mock consulted while fallback disabled")
	}
}

func TestIsValidSteamID64(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"76561198000000001", true},
		{"7656119800000000", false},   // 16 digits
		{"765611980000000011", false}, // 18 digits
		{"7656119800000000a", false},
		{"", false},
		{" 76561198000000001", false},
	}
	for _, tc := range cases {
		if got := IsValidSteamID64(tc.input); got != tc.want {
			t.Errorf("IsValidSteamID64(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
