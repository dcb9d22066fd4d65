// Package server exposes the scoring engine over a thin JSON surface.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"crux-tracker/internal/domain"
	"crux-tracker/internal/metrics"
	"crux-tracker/internal/repository"
	"crux-tracker/internal/service"

	"github.com/rs/zerolog"
)

type Server struct {
	leaderboardSvc *service.LeaderboardService
	validationSvc  *service.ValidationService
	statsSvc       *service.StatsService
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

func New(
	leaderboardSvc *service.LeaderboardService,
	validationSvc *service.ValidationService,
	statsSvc *service.StatsService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	return &Server{
		leaderboardSvc: leaderboardSvc,
		validationSvc:  validationSvc,
		statsSvc:       statsSvc,
		metrics:        m,
		logger:         logger,
	}
}

// Register mounts every route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/leaderboard", s.handleGetLeaderboard)
	mux.HandleFunc("GET /api/users/{id}/rank", s.handleGetUserRank)
	mux.HandleFunc("GET /api/users/{id}/validations", s.handleGetUserBreakdown)
	mux.HandleFunc("GET /api/users/{id}/stats", s.handleGetUserStats)
	mux.HandleFunc("POST /api/validations", s.handleCreateValidation)
	mux.HandleFunc("PATCH /api/validations/{userID}/{routeID}", s.handleUpdateValidation)
	mux.HandleFunc("DELETE /api/validations/{userID}/{routeID}", s.handleDeleteValidation)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	scope := service.Scope(q.Get("tab"))
	if scope == "" {
		scope = service.ScopeGlobal
	}
	if scope != service.ScopeGlobal && scope != service.ScopeFriends {
		writeError(w, http.StatusBadRequest, "unknown tab")
		return
	}

	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 0)

	board, err := s.leaderboardSvc.GetLeaderboard(r.Context(), scope, page, limit, q.Get("userId"))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get leaderboard")
		writeError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleGetUserRank(w http.ResponseWriter, r *http.Request) {
	entry, err := s.leaderboardSvc.GetUserRank(r.Context(), r.PathValue("id"))
	if errors.Is(err, service.ErrUserNotRanked) {
		writeError(w, http.StatusNotFound, "user not ranked")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get user rank")
		writeError(w, http.StatusInternalServerError, "failed to get user rank")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGetUserBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.leaderboardSvc.GetUserValidationBreakdown(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get validation breakdown")
		writeError(w, http.StatusInternalServerError, "failed to get validation breakdown")
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsSvc.GetUserStats(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get user stats")
		writeError(w, http.StatusInternalServerError, "failed to get user stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type createValidationRequest struct {
	UserID       string                  `json:"userId"`
	RouteID      string                  `json:"routeId"`
	Status       domain.ValidationStatus `json:"status,omitempty"`
	Attempts     int                     `json:"attempts,omitempty"`
	PersonalNote string                  `json:"personalNote,omitempty"`
	IsFavorite   bool                    `json:"isFavorite,omitempty"`
}

func (s *Server) handleCreateValidation(w http.ResponseWriter, r *http.Request) {
	var req createValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.RouteID == "" {
		writeError(w, http.StatusBadRequest, "userId and routeId are required")
		return
	}

	v, err := s.validationSvc.Create(r.Context(), service.ValidationCreateInput{
		UserID:       req.UserID,
		RouteID:      req.RouteID,
		Status:       req.Status,
		Attempts:     req.Attempts,
		PersonalNote: req.PersonalNote,
		IsFavorite:   req.IsFavorite,
	})
	if errors.Is(err, repository.ErrValidationExists) {
		writeError(w, http.StatusConflict, "validation already exists")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create validation")
		writeError(w, http.StatusInternalServerError, "failed to create validation")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

type updateValidationRequest struct {
	Status       *domain.ValidationStatus `json:"status,omitempty"`
	Attempts     *int                     `json:"attempts,omitempty"`
	PersonalNote *string                  `json:"personalNote,omitempty"`
	IsFavorite   *bool                    `json:"isFavorite,omitempty"`
}

func (s *Server) handleUpdateValidation(w http.ResponseWriter, r *http.Request) {
	var req updateValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v, err := s.validationSvc.Update(r.Context(), r.PathValue("userID"), r.PathValue("routeID"), service.ValidationUpdateInput{
		Status:       req.Status,
		Attempts:     req.Attempts,
		PersonalNote: req.PersonalNote,
		IsFavorite:   req.IsFavorite,
	})
	if errors.Is(err, repository.ErrValidationNotFound) {
		writeError(w, http.StatusNotFound, "validation not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to update validation")
		writeError(w, http.StatusInternalServerError, "failed to update validation")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteValidation(w http.ResponseWriter, r *http.Request) {
	err := s.validationSvc.Delete(r.Context(), r.PathValue("userID"), r.PathValue("routeID"))
	if errors.Is(err, repository.ErrValidationNotFound) {
		writeError(w, http.StatusNotFound, "validation not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to delete validation")
		writeError(w, http.StatusInternalServerError, "failed to delete validation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
