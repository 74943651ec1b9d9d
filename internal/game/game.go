package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/engine"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrGameFull         = errors.New("game already has the maximum number of teams")
	ErrGameFinished     = errors.New("game is finished")
	ErrGameNotStarted   = errors.New("game has not started")
	ErrAlreadySubmitted = errors.New("inputs already submitted for this quarter")
	ErrNotAllSubmitted  = errors.New("not every team has submitted yet")
	ErrBadJoinCode      = errors.New("join code not recognized")
	ErrNameTaken        = errors.New("company name already taken in this game")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("game was modified concurrently, retry")
)

// GameStatus is the coarse lifecycle of a session.
type GameStatus string

const (
	StatusLobby    GameStatus = "lobby"
	StatusRunning  GameStatus = "running"
	StatusFinished GameStatus = "finished"
)

// Team wraps the engine state with session concerns the engine never sees:
// the bearer token teams authenticate with and when they joined.
type Team struct {
	State    engine.TeamState `json:"state"`
	Token    string           `json:"token"`
	JoinedAt time.Time        `json:"joined_at"`
}

// TeamMap preserves join order and serializes as an array of [key, value]
// pairs, so a game survives a JSON round-trip without relying on map
// iteration order or reference identity.
type TeamMap struct {
	order []string
	teams map[string]*Team
}

func NewTeamMap() *TeamMap {
	return &TeamMap{teams: map[string]*Team{}}
}

func (m *TeamMap) Get(teamID string) (*Team, bool) {
	t, ok := m.teams[teamID]
	return t, ok
}

func (m *TeamMap) Put(teamID string, t *Team) {
	if m.teams == nil {
		m.teams = map[string]*Team{}
	}
	if _, ok := m.teams[teamID]; !ok {
		m.order = append(m.order, teamID)
	}
	m.teams[teamID] = t
}

// IDs returns team ids in join order. Resolution iterates this order so
// replays are stable.
func (m *TeamMap) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *TeamMap) Len() int {
	return len(m.order)
}

// States returns engine states in join order.
func (m *TeamMap) States() []engine.TeamState {
	out := make([]engine.TeamState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.teams[id].State)
	}
	return out
}

func (m *TeamMap) MarshalJSON() ([]byte, error) {
	pairs := make([][2]json.RawMessage, 0, len(m.order))
	for _, id := range m.order {
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.teams[id])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]json.RawMessage{k, v})
	}
	return json.Marshal(pairs)
}

func (m *TeamMap) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	m.order = nil
	m.teams = map[string]*Team{}
	for _, pair := range pairs {
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return fmt.Errorf("team map key: %w", err)
		}
		var t Team
		if err := json.Unmarshal(pair[1], &t); err != nil {
			return fmt.Errorf("team map value for %q: %w", id, err)
		}
		m.Put(id, &t)
	}
	return nil
}

// Config is the immutable part of a game, fixed at creation.
type Config struct {
	Level           string             `json:"level"`
	LevelConfig     engine.LevelConfig `json:"level_config"`
	NumberOfTeams   int                `json:"number_of_teams"`
	MaxQuarters     int                `json:"max_quarters"`
	Seed            int64              `json:"seed"`
	QuarterDuration time.Duration      `json:"quarter_duration"`
}

// Game is the full session record. It is plain data: everything is
// JSON-serializable and the store treats it as an opaque document.
type Game struct {
	ID             string     `json:"id"`
	JoinCode       string     `json:"join_code"`
	FacilitatorKey string     `json:"facilitator_key"`
	Status         GameStatus `json:"status"`
	Config         Config     `json:"config"`

	CurrentQuarter int                        `json:"current_quarter"`
	Teams          *TeamMap                   `json:"teams"`
	Opportunities  []engine.ClientOpportunity `json:"opportunities"`
	Events         []engine.GameEvent         `json:"events"`

	WinnerTeamID       string    `json:"winner_team_id,omitempty"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Version guards concurrent writers in the store layer.
	Version int64 `json:"version"`
}

// TeamByToken resolves a bearer token to its team.
func (g *Game) TeamByToken(token string) (*Team, bool) {
	if token == "" {
		return nil, false
	}
	for _, id := range g.Teams.IDs() {
		t, _ := g.Teams.Get(id)
		if t.Token == token {
			return t, true
		}
	}
	return nil, false
}

// ActiveTeamIDs returns solvent teams in join order.
func (g *Game) ActiveTeamIDs() []string {
	var out []string
	for _, id := range g.Teams.IDs() {
		t, _ := g.Teams.Get(id)
		if !t.State.IsBankrupt {
			out = append(out, id)
		}
	}
	return out
}

// AllSubmitted reports whether every solvent team has submitted this quarter.
func (g *Game) AllSubmitted() bool {
	for _, id := range g.ActiveTeamIDs() {
		t, _ := g.Teams.Get(id)
		if !t.State.SubmittedThisQuarter {
			return false
		}
	}
	return true
}

// PoolForTeam filters the opportunity snapshot to what one team may pitch:
// the shared pool plus its own renewal offers.
func (g *Game) PoolForTeam(teamID string) []engine.ClientOpportunity {
	out := make([]engine.ClientOpportunity, 0, len(g.Opportunities))
	for _, opp := range g.Opportunities {
		if opp.TeamID == "" || opp.TeamID == teamID {
			out = append(out, opp)
		}
	}
	return out
}
