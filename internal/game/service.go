package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/engine"
)

// Repository is the persistence surface the service needs. Both the
// Postgres and in-memory stores satisfy it; the service never knows which
// it is running against.
type Repository interface {
	CreateGame(ctx context.Context, g *Game) error
	GetGame(ctx context.Context, id string) (*Game, error)
	GetGameByJoinCode(ctx context.Context, code string) (*Game, error)
	UpdateGame(ctx context.Context, g *Game) error
	ListOverdue(ctx context.Context, now time.Time) ([]string, error)
}

type Service struct {
	repo   Repository
	log    *slog.Logger
	now    func() time.Time
	levels map[string]engine.LevelConfig

	// mu serializes quarter advances. Resolution itself is fast and pure;
	// the lock only prevents two advances of the same process racing the
	// version check.
	mu sync.Mutex
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo: repo,
		log:  logger,
		now:  time.Now,
	}
}

// SetNow overrides the service clock. Tests use it to move deadlines.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// RegisterLevels adds custom level definitions on top of the built-ins.
// Callers must validate them first; lookups prefer a custom level over a
// built-in with the same name.
func (s *Service) RegisterLevels(levels map[string]engine.LevelConfig) {
	if s.levels == nil {
		s.levels = map[string]engine.LevelConfig{}
	}
	for name, cfg := range levels {
		s.levels[name] = cfg
	}
}

func (s *Service) levelConfig(name string) (engine.LevelConfig, error) {
	if cfg, ok := s.levels[name]; ok {
		return cfg, nil
	}
	return engine.BuiltinLevel(name)
}

// CreateGameInput is the facilitator's game setup.
type CreateGameInput struct {
	Level           string
	NumberOfTeams   int
	Seed            int64
	QuarterDuration time.Duration
	MaxQuarters     int // 0 means the level default
}

// CreateGame validates configuration, rolls the first quarter's market
// state, and persists the new session. Configuration problems are fatal
// here, before any team joins.
func (s *Service) CreateGame(ctx context.Context, in CreateGameInput) (*Game, error) {
	cfg, err := s.levelConfig(in.Level)
	if err != nil {
		return nil, err
	}
	if in.MaxQuarters > 0 {
		cfg.MaxQuarters = in.MaxQuarters
	}
	if err := engine.ValidateResolutionInputs(cfg); err != nil {
		return nil, err
	}
	if in.NumberOfTeams < 1 {
		return nil, fmt.Errorf("%w: at least one team required", engine.ErrBadLevelConfig)
	}
	if in.QuarterDuration <= 0 {
		in.QuarterDuration = 15 * time.Minute
	}
	if in.Seed == 0 {
		in.Seed = s.now().UnixNano()
	}

	joinCode, err := generateCode(6)
	if err != nil {
		return nil, err
	}
	facilitatorKey, err := generateCode(16)
	if err != nil {
		return nil, err
	}

	g := &Game{
		ID:             uuid.NewString(),
		JoinCode:       joinCode,
		FacilitatorKey: facilitatorKey,
		Status:         StatusLobby,
		Config: Config{
			Level:           cfg.Level,
			LevelConfig:     cfg,
			NumberOfTeams:   in.NumberOfTeams,
			MaxQuarters:     cfg.MaxQuarters,
			Seed:            in.Seed,
			QuarterDuration: in.QuarterDuration,
		},
		CurrentQuarter: 1,
		Teams:          NewTeamMap(),
		CreatedAt:      s.now().UTC(),
		UpdatedAt:      s.now().UTC(),
	}

	// Quarter 1 market state is rolled at creation so the lobby can already
	// show what teams will be pitching for.
	master := engine.NewRand(engine.DeriveTeamSeed(g.Config.Seed, g.CurrentQuarter, ""))
	g.Events = engine.AdvanceEvents(g.CurrentQuarter, cfg.Events, nil, master)
	g.Opportunities, err = engine.GenerateOpportunities(g.CurrentQuarter, cfg, master)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info("game created",
		"game_id", g.ID,
		"level", cfg.Level,
		"teams", in.NumberOfTeams,
		"seed", g.Config.Seed)
	return g, nil
}

// JoinGame adds a team to the lobby by join code. When the configured
// number of teams is reached the game starts and the first submission
// deadline is set.
func (s *Service) JoinGame(ctx context.Context, joinCode, companyName string) (*Game, *Team, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, nil, fmt.Errorf("company name required")
	}
	g, err := s.repo.GetGameByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(joinCode)))
	if err != nil {
		return nil, nil, err
	}
	if g.Status == StatusFinished {
		return nil, nil, ErrGameFinished
	}
	if g.Teams.Len() >= g.Config.NumberOfTeams {
		return nil, nil, ErrGameFull
	}
	for _, id := range g.Teams.IDs() {
		t, _ := g.Teams.Get(id)
		if strings.EqualFold(t.State.CompanyName, companyName) {
			return nil, nil, ErrNameTaken
		}
	}

	token, err := generateCode(24)
	if err != nil {
		return nil, nil, err
	}
	team := &Team{
		State:    engine.NewTeamState(uuid.NewString(), companyName, g.Config.LevelConfig),
		Token:    token,
		JoinedAt: s.now().UTC(),
	}
	g.Teams.Put(team.State.TeamID, team)

	if g.Teams.Len() == g.Config.NumberOfTeams {
		g.Status = StatusRunning
		g.SubmissionDeadline = s.now().UTC().Add(g.Config.QuarterDuration)
		// Team-scoped renewal offers cannot exist yet; the shared pool
		// rolled at creation is the full quarter-1 pool.
	}
	g.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateGame(ctx, g); err != nil {
		return nil, nil, err
	}
	s.log.Info("team joined", "game_id", g.ID, "team_id", team.State.TeamID, "company", companyName)
	return g, team, nil
}

// SubmitInputs records a team's decisions for the current quarter. Inputs
// are write-once: a second submission before the quarter closes is
// rejected. Structural problems reject the submission and leave the team's
// pending inputs untouched, so the team can fix and resubmit.
func (s *Service) SubmitInputs(ctx context.Context, gameID, teamID string, inputs engine.TeamInputs) (*Game, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if g.Status == StatusLobby {
		return nil, ErrGameNotStarted
	}
	team, ok := g.Teams.Get(teamID)
	if !ok {
		return nil, ErrTeamNotFound
	}
	if team.State.IsBankrupt {
		return nil, engine.ErrTeamBankrupt
	}
	if team.State.SubmittedThisQuarter {
		return nil, ErrAlreadySubmitted
	}
	if err := inputs.Validate(team.State, g.PoolForTeam(teamID)); err != nil {
		return nil, err
	}

	team.State.CurrentInputs = inputs.Clone()
	team.State.SubmittedThisQuarter = true
	g.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info("inputs submitted",
		"game_id", g.ID,
		"team_id", teamID,
		"quarter", g.CurrentQuarter,
		"pitches", len(inputs.Pitches))

	if g.AllSubmitted() {
		return s.AdvanceQuarter(ctx, gameID, false)
	}
	return g, nil
}

// AdvanceQuarter resolves the current quarter for every team and rolls the
// next quarter's market state. With force set, teams that never submitted
// are resolved with default inputs; without it, the call fails until every
// solvent team has submitted.
func (s *Service) AdvanceQuarter(ctx context.Context, gameID string, force bool) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if g.Status == StatusLobby {
		return nil, ErrGameNotStarted
	}
	if !force && !g.AllSubmitted() {
		return nil, ErrNotAllSubmitted
	}

	cfg := g.Config.LevelConfig
	quarter := g.CurrentQuarter
	allStates := g.Teams.States()

	// Teams resolve in join order, each on its own RNG sub-stream derived
	// from the game seed, so one team's draw count never shifts another's.
	for _, id := range g.Teams.IDs() {
		team, _ := g.Teams.Get(id)
		rng := engine.NewRand(engine.DeriveTeamSeed(g.Config.Seed, quarter, id))

		inputs := team.State.CurrentInputs
		if !team.State.SubmittedThisQuarter {
			inputs = engine.DefaultInputs()
		}
		pool := g.PoolForTeam(id)

		next, result, err := engine.Resolve(team.State, inputs, allStates, pool, g.Events, cfg, rng)
		if errors.Is(err, engine.ErrUnknownOpportunity) ||
			errors.Is(err, engine.ErrInvalidDiscount) ||
			errors.Is(err, engine.ErrInvalidQuality) ||
			errors.Is(err, engine.ErrNegativeSpend) ||
			errors.Is(err, engine.ErrNegativeStaffing) ||
			errors.Is(err, engine.ErrInvalidGrowthFocus) {
			// A structurally bad batch that slipped past submission checks
			// falls back to the safe default, never skips the team.
			s.log.Warn("invalid inputs at resolution, using defaults",
				"game_id", g.ID, "team_id", id, "err", err)
			next, result, err = engine.Resolve(team.State, engine.DefaultInputs(), allStates, pool, g.Events, cfg, rng)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve team %s: %w", id, err)
		}
		team.State = next
		s.log.Debug("team resolved",
			"game_id", g.ID,
			"team_id", id,
			"quarter", quarter,
			"profit_cents", result.ProfitCents,
			"clients_won", result.ClientsWon)
		if next.IsBankrupt && next.BankruptQuarter == quarter {
			s.log.Info("team went bankrupt", "game_id", g.ID, "team_id", id, "quarter", quarter)
		}
	}

	g.CurrentQuarter++

	if s.finished(g) {
		g.Status = StatusFinished
		g.WinnerTeamID = engine.Winner(g.Teams.States())
		g.SubmissionDeadline = time.Time{}
		g.Opportunities = nil
		s.log.Info("game finished", "game_id", g.ID, "winner", g.WinnerTeamID)
	} else {
		// Roll next quarter's market: events first, then the shared pool,
		// then each team's renewal offers, all in fixed order.
		master := engine.NewRand(engine.DeriveTeamSeed(g.Config.Seed, g.CurrentQuarter, ""))
		g.Events = engine.AdvanceEvents(g.CurrentQuarter, cfg.Events, g.Events, master)
		pool, err := engine.GenerateOpportunities(g.CurrentQuarter, cfg, master)
		if err != nil {
			return nil, err
		}
		for _, id := range g.Teams.IDs() {
			team, _ := g.Teams.Get(id)
			if team.State.IsBankrupt {
				continue
			}
			teamRng := engine.NewRand(engine.DeriveTeamSeed(g.Config.Seed, g.CurrentQuarter, "renewals:"+id))
			pool = append(pool, engine.GenerateRenewals(g.CurrentQuarter, cfg, id, team.State.Clients, teamRng)...)
		}
		g.Opportunities = pool
		g.SubmissionDeadline = s.now().UTC().Add(g.Config.QuarterDuration)
	}

	g.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info("quarter resolved", "game_id", g.ID, "quarter", quarter, "status", string(g.Status))
	return g, nil
}

func (s *Service) finished(g *Game) bool {
	if g.CurrentQuarter > g.Config.MaxQuarters {
		return true
	}
	return len(g.ActiveTeamIDs()) == 0
}

// ForceAdvanceOverdue sweeps games whose submission deadline passed and
// advances them with defaults for the missing teams. Used by the worker.
func (s *Service) ForceAdvanceOverdue(ctx context.Context) (int, error) {
	ids, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	advanced := 0
	for _, id := range ids {
		if _, err := s.AdvanceQuarter(ctx, id, true); err != nil {
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrGameFinished) {
				continue
			}
			return advanced, fmt.Errorf("force advance %s: %w", id, err)
		}
		advanced++
	}
	return advanced, nil
}

// GetGame loads a session.
func (s *Service) GetGame(ctx context.Context, gameID string) (*Game, error) {
	return s.repo.GetGame(ctx, gameID)
}

// Leaderboard ranks the game's teams.
func (s *Service) Leaderboard(ctx context.Context, gameID string) ([]engine.LeaderboardEntry, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return engine.Leaderboard(g.Teams.States()), nil
}

// TeamNotifications builds the feedback for a team's latest quarter.
func (s *Service) TeamNotifications(ctx context.Context, gameID, teamID string) ([]engine.Notification, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	team, ok := g.Teams.Get(teamID)
	if !ok {
		return nil, ErrTeamNotFound
	}
	result, ok := team.State.LatestResult()
	if !ok {
		return nil, nil
	}
	return engine.GenerateNotifications(team.State, result), nil
}

// TeamInsights builds strategic commentary for a team.
func (s *Service) TeamInsights(ctx context.Context, gameID, teamID string) ([]engine.Insight, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	team, ok := g.Teams.Get(teamID)
	if !ok {
		return nil, ErrTeamNotFound
	}
	return engine.Insights(team.State), nil
}

// generateCode builds an unambiguous uppercase code for join codes, team
// tokens, and facilitator keys.
func generateCode(n int) (string, error) {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = letters[int(buf[i])%len(letters)]
	}
	return string(buf), nil
}
