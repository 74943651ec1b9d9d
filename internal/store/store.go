package store

import (
	"context"
	"time"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
)

// Store persists game sessions. The engine itself never touches a Store;
// only the orchestrating service reads and writes through it, and the whole
// simulation runs against the in-memory implementation when no database is
// configured.
type Store interface {
	// CreateGame persists a new game. The game's Version must be zero.
	CreateGame(ctx context.Context, g *game.Game) error

	// GetGame loads a game by id. Returns game.ErrGameNotFound when absent.
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// GetGameByJoinCode loads a game by its join code.
	GetGameByJoinCode(ctx context.Context, code string) (*game.Game, error)

	// UpdateGame replaces a game document. It fails with game.ErrConflict
	// when the stored version no longer matches g.Version; on success the
	// version is bumped.
	UpdateGame(ctx context.Context, g *game.Game) error

	// ListOverdue returns ids of running games whose submission deadline
	// passed before now. The worker force-advances these.
	ListOverdue(ctx context.Context, now time.Time) ([]string, error)

	Close()
}
