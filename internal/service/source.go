package service

import (
	"context"
	"regexp"

	"deadlock-tracker/internal/domain"

	"github.com/rs/zerolog"
)

var steamID64Pattern = regexp.MustCompile(`^\d{17}$`)

// IsValidSteamID64 reports whether the value is a well-formed SteamID64.
// Range validation against the account-id space happens in the live mapper.
func IsValidSteamID64(value string) bool {
	return steamID64Pattern.MatchString(value)
}

// DataSource is one producer of the dashboard payloads. Both the live
// mapper and the synthetic generator satisfy it.
type DataSource interface {
	PlayerProfile(ctx context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error)
	MetaSnapshot(ctx context.Context) (*domain.MetaPayload, error)
	Leaderboard(ctx context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error)
}

func (s *LiveSource) PlayerProfile(ctx context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error) {
	return s.BuildPlayerProfile(ctx, steamID64, count)
}

func (s *LiveSource) MetaSnapshot(ctx context.Context) (*domain.MetaPayload, error) {
	return s.BuildMetaSnapshot(ctx)
}

func (s *LiveSource) Leaderboard(ctx context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error) {
	return s.BuildLeaderboard(ctx, region, limit, heroID)
}

func (m *MockSource) PlayerProfile(_ context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error) {
	return m.BuildPlayerProfile(steamID64, count), nil
}

func (m *MockSource) MetaSnapshot(context.Context) (*domain.MetaPayload, error) {
	return m.BuildMetaSnapshot(), nil
}

func (m *MockSource) Leaderboard(_ context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error) {
	return m.BuildLeaderboard(region, limit, heroID), nil
}

// StatsService fronts the two sources. Live data is always preferred; the
// synthetic generator only answers when the live path fails and fallback is
// enabled. Payloads always carry the source that actually produced them.
type StatsService struct {
	live            DataSource
	mock            DataSource
	fallbackAllowed bool
	logger          zerolog.Logger
}

func NewStatsService(live DataSource, mock DataSource, fallbackAllowed bool, logger zerolog.Logger) *StatsService {
	return &StatsService{
		live:            live,
		mock:            mock,
		fallbackAllowed: fallbackAllowed,
		logger:          logger,
	}
}

func (s *StatsService) GetPlayerProfile(ctx context.Context, steamID64 string, count int) (*domain.PlayerProfilePayload, error) {
	payload, err := s.live.PlayerProfile(ctx, steamID64, count)
	if err == nil {
		return payload, nil
	}
	if !s.fallbackAllowed {
		return nil, err
	}
	s.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("live profile failed, serving synthetic fallback")
	return s.mock.PlayerProfile(ctx, steamID64, count)
}

func (s *StatsService) GetMetaStats(ctx context.Context) (*domain.MetaPayload, error) {
	payload, err := s.live.MetaSnapshot(ctx)
	if err == nil {
		return payload, nil
	}
	if !s.fallbackAllowed {
		return nil, err
	}
	s.logger.Warn().Err(err).Msg("live meta failed, serving synthetic fallback")
	return s.mock.MetaSnapshot(ctx)
}

func (s *StatsService) GetLeaderboard(ctx context.Context, region domain.LeaderboardRegion, limit int, heroID int) (*domain.LeaderboardPayload, error) {
	payload, err := s.live.Leaderboard(ctx, region, limit, heroID)
	if err == nil {
		return payload, nil
	}
	if !s.fallbackAllowed {
		return nil, err
	}
	s.logger.Warn().Err(err).Str("region", string(region)).Msg("live leaderboard failed, serving synthetic fallback")
	return s.mock.Leaderboard(ctx, region, limit, heroID)
}
