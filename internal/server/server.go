package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"deadlock-tracker/internal/constants"
	"deadlock-tracker/internal/domain"
	"deadlock-tracker/internal/middleware"
	"deadlock-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Server exposes the dashboard API over JSON REST.
type Server struct {
	stats  *service.StatsService
	logger zerolog.Logger
}

func New(stats *service.StatsService, logger zerolog.Logger) *Server {
	return &Server{stats: stats, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(s.logger))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/player", s.handlePlayer)
		r.Get("/meta", s.handleMeta)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	})
	return c.Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	steamID64 := r.URL.Query().Get("steamId64")
	if steamID64 == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidSteamID64, "steamId64 query parameter is required", "")
		return
	}
	if !service.IsValidSteamID64(steamID64) {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidSteamID64, "steamId64 must be a 17-digit numeric id", steamID64)
		return
	}

	count := constants.DefaultMatchCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < constants.LiveMatchCountMin || parsed > constants.MatchCountMax {
			writeError(w, http.StatusBadRequest, domain.CodeInvalidCount,
				fmt.Sprintf("count must be an integer between %d and %d", constants.LiveMatchCountMin, constants.MatchCountMax), raw)
			return
		}
		count = parsed
	}

	payload, err := s.stats.GetPlayerProfile(r.Context(), steamID64, count)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	payload, err := s.stats.GetMetaStats(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	region := domain.RegionEurope
	if raw := r.URL.Query().Get("region"); raw != "" {
		parsed, ok := domain.ValidLeaderboardRegion(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest,
				"region must be one of Europe, Asia, NAmerica, SAmerica, Oceania", raw)
			return
		}
		region = parsed
	}

	limit := constants.LeaderboardDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > constants.LeaderboardLimitMax {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d", constants.LeaderboardLimitMax), raw)
			return
		}
		limit = parsed
	}

	heroID := 0
	if raw := r.URL.Query().Get("heroId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "heroId must be a positive integer", raw)
			return
		}
		heroID = parsed
	}

	payload, err := s.stats.GetLeaderboard(r.Context(), region, limit, heroID)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// writeUpstreamError maps service errors onto the wire. Identity conversion
// failures are client errors; a clean empty history is a 404; anything else
// is an upstream failure.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, service.ErrInvalidAccountID):
		writeError(w, http.StatusBadRequest, domain.CodeInvalidSteamID64, "steamId64 does not map to a valid account id", "")
	case errors.Is(err, service.ErrNoMatchHistory):
		writeError(w, http.StatusNotFound, domain.CodeNotFound, "no match history found for this player", "")
	default:
		s.logger.Error().Err(err).Str("request_id", requestID).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusBadGateway, domain.CodeInternalError, "upstream data source unavailable", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, domain.ErrorPayload{
		OK:      false,
		Code:    code,
		Status:  status,
		Error:   message,
		Details: details,
	})
}
