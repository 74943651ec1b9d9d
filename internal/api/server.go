package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/auth"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/config"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/engine"
	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
)

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleCreateGame)
		r.Post("/games/join", s.handleJoinGame)

		r.Route("/games/{game_id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(s.teamAuth)
				r.Get("/opportunities", s.handleOpportunities)
				r.Post("/inputs", s.handleSubmitInputs)
				r.Get("/team", s.handleTeamState)
				r.Get("/team/results", s.handleTeamResults)
				r.Get("/team/notifications", s.handleTeamNotifications)
				r.Get("/team/insights", s.handleTeamInsights)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.facilitatorAuth)
				r.Post("/advance", s.handleForceAdvance)
				r.Get("/facilitator", s.handleFacilitatorView)
			})
		})
	})
}

// teamAuth resolves the bearer token against the game in the path and puts
// the owning team id on the request context.
func (s *Server) teamAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		team, ok := g.TeamByToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "token not recognized for this game")
			return
		}
		next.ServeHTTP(w, r.WithContext(withTeamID(r.Context(), team.State.TeamID)))
	})
}

// facilitatorAuth checks the facilitator key header against the game.
func (s *Server) facilitatorAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !auth.Equal(auth.FacilitatorKey(r), g.FacilitatorKey) {
			writeError(w, http.StatusUnauthorized, "bad facilitator key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Level           string `json:"level"`
		NumberOfTeams   int    `json:"number_of_teams"`
		Seed            int64  `json:"seed"`
		QuarterDuration string `json:"quarter_duration"`
		MaxQuarters     int    `json:"max_quarters"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	duration := s.cfg.DefaultQuarterDuration
	if in.QuarterDuration != "" {
		var err error
		duration, err = time.ParseDuration(in.QuarterDuration)
		if err != nil {
			writeError(w, http.StatusBadRequest, "quarter_duration: "+err.Error())
			return
		}
	}
	g, err := s.game.CreateGame(r.Context(), game.CreateGameInput{
		Level:           in.Level,
		NumberOfTeams:   in.NumberOfTeams,
		Seed:            in.Seed,
		QuarterDuration: duration,
		MaxQuarters:     in.MaxQuarters,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// The creator gets the secrets once; public views never carry them.
	writeJSON(w, http.StatusCreated, map[string]any{
		"game":            gameView(g),
		"join_code":       g.JoinCode,
		"facilitator_key": g.FacilitatorKey,
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		JoinCode    string `json:"join_code"`
		CompanyName string `json:"company_name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, team, err := s.game.JoinGame(r.Context(), in.JoinCode, in.CompanyName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"game":    gameView(g),
		"team_id": team.State.TeamID,
		"token":   team.Token,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := s.game.Leaderboard(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quarter": g.CurrentQuarter, "events": g.Events})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quarter":       g.CurrentQuarter,
		"opportunities": g.PoolForTeam(teamID),
	})
}

func (s *Server) handleSubmitInputs(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var inputs engine.TeamInputs
	if err := decodeJSON(r, &inputs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.game.SubmitInputs(r.Context(), chi.URLParam(r, "game_id"), teamID, inputs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g))
}

func (s *Server) handleTeamState(w http.ResponseWriter, r *http.Request) {
	team, err := s.loadTeam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team.State)
}

func (s *Server) handleTeamResults(w http.ResponseWriter, r *http.Request) {
	team, err := s.loadTeam(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": team.State.QuarterlyResults,
		"metrics": team.State.Metrics,
	})
}

func (s *Server) handleTeamNotifications(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	notes, err := s.game.TeamNotifications(r.Context(), chi.URLParam(r, "game_id"), teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes})
}

func (s *Server) handleTeamInsights(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	insights, err := s.game.TeamInsights(r.Context(), chi.URLParam(r, "game_id"), teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func (s *Server) handleForceAdvance(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.AdvanceQuarter(r.Context(), chi.URLParam(r, "game_id"), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(g))
}

// handleFacilitatorView returns the unredacted game, including every
// team's full state and pending inputs.
func (s *Server) handleFacilitatorView(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) loadTeam(r *http.Request) (*game.Team, error) {
	teamID, err := teamIDFromContext(r.Context())
	if err != nil {
		return nil, game.ErrUnauthorized
	}
	g, err := s.game.GetGame(r.Context(), chi.URLParam(r, "game_id"))
	if err != nil {
		return nil, err
	}
	team, ok := g.Teams.Get(teamID)
	if !ok {
		return nil, game.ErrTeamNotFound
	}
	return team, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrTeamNotFound),
		errors.Is(err, game.ErrBadJoinCode):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, game.ErrAlreadySubmitted),
		errors.Is(err, game.ErrNotAllSubmitted),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrGameFull),
		errors.Is(err, game.ErrNameTaken),
		errors.Is(err, engine.ErrUnknownOpportunity),
		errors.Is(err, engine.ErrInvalidDiscount),
		errors.Is(err, engine.ErrInvalidQuality),
		errors.Is(err, engine.ErrNegativeSpend),
		errors.Is(err, engine.ErrNegativeStaffing),
		errors.Is(err, engine.ErrInvalidGrowthFocus),
		errors.Is(err, engine.ErrBadLevelConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrTeamBankrupt):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// gameView is the public shape of a game: no tokens, no facilitator key,
// no other team's pending inputs.
func gameView(g *game.Game) map[string]any {
	teams := make([]map[string]any, 0, g.Teams.Len())
	for _, id := range g.Teams.IDs() {
		t, _ := g.Teams.Get(id)
		teams = append(teams, map[string]any{
			"team_id":      t.State.TeamID,
			"company_name": t.State.CompanyName,
			"is_bankrupt":  t.State.IsBankrupt,
			"submitted":    t.State.SubmittedThisQuarter,
		})
	}
	return map[string]any{
		"id":                  g.ID,
		"status":              g.Status,
		"level":               g.Config.Level,
		"number_of_teams":     g.Config.NumberOfTeams,
		"max_quarters":        g.Config.MaxQuarters,
		"current_quarter":     g.CurrentQuarter,
		"teams":               teams,
		"winner_team_id":      g.WinnerTeamID,
		"submission_deadline": g.SubmissionDeadline,
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
