// Package store persists sessions and hands. Hands come back fully hydrated
// (players by seat, actions by sequence) and are saved back whole after each
// change.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/handtracker/internal/game"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a session or hand does not exist.
var ErrNotFound = errors.New("not found")

// Session groups the hands played in one sitting.
type Session struct {
	ID       int64       `json:"id"`
	SyncID   string      `json:"sync_id"`
	Date     time.Time   `json:"date"`
	Location string      `json:"location"`
	Stakes   game.Stakes `json:"stakes"`
	GameType string      `json:"game_type"`
	Note     string      `json:"note"`
}

// Store is the persistence layer for sessions and hands.
type Store interface {
	// SaveSession inserts the session when its ID is zero and updates it
	// otherwise. New sessions get an ID and, if missing, a sync id.
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	// DeleteSession removes the session; its hands are kept unlinked.
	DeleteSession(ctx context.Context, id int64) error

	// SaveHand inserts or updates the hand, its players and its action log
	// in one transaction. IDs assigned to new hands and players are written
	// back into h.
	SaveHand(ctx context.Context, h *game.Hand) error
	GetHand(ctx context.Context, id int64) (*game.Hand, error)
	// ListHands returns the hands of a session, oldest first. A zero
	// sessionID lists every hand.
	ListHands(ctx context.Context, sessionID int64) ([]*game.Hand, error)
	DeleteHand(ctx context.Context, id int64) error

	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string // DriverSQLite or DriverPostgres
	Path   string // SQLite file, or ":memory:"
	DSN    string // Postgres connection string
	Logger *log.Logger
}

// Open connects to the configured backend and applies its schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("store")

	var (
		s   *sqlStore
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite, "sqlite3":
		s, err = openSQLite(ctx, opts.Path, logger)
	case DriverPostgres, "postgresql", "pgx":
		s, err = openPostgres(ctx, opts.DSN, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (supported: %s, %s)", opts.Driver, DriverSQLite, DriverPostgres)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
