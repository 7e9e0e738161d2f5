package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrGameNotFound is returned for slots that were never allocated or have been freed
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidDriver is returned when an unknown storage driver is configured
	ErrInvalidDriver = errors.New("invalid storage driver")
)

// GameID is a 1-based game slot number. Freed slots are handed out again.
type GameID int64

func (id GameID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseGameID parses the decimal form produced by GameID.String.
func ParseGameID(s string) (GameID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return GameID(n), nil
}

// Driver selects the storage backend
type Driver string

const (
	// DriverMemory keeps everything in process memory
	DriverMemory Driver = "memory"
	// DriverFile keeps JSON documents in a directory
	DriverFile Driver = "file"
	// DriverPostgres keeps documents in a jsonb column
	DriverPostgres Driver = "postgres"
)

// Config contains configuration for the storage layer
type Config struct {
	Driver      Driver
	Dir         string
	PostgresURL string
	MaxConns    int
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() Config {
	return Config{
		Driver:   DriverMemory,
		Dir:      "data",
		MaxConns: 4,
	}
}

// GameStore holds one opaque document per game slot.
type GameStore interface {
	// Load returns the document in a live slot
	Load(ctx context.Context, id GameID) ([]byte, error)

	// Save replaces the document in a live slot
	Save(ctx context.Context, id GameID, doc []byte) error

	// Allocate reserves the lowest freed slot, or a new one
	Allocate(ctx context.Context) (GameID, error)

	// Free retires a slot. Its document is kept until the slot is reused.
	Free(ctx context.Context, id GameID) error
}

// SessionStore tracks which game each user is currently playing.
type SessionStore interface {
	CurrentGame(ctx context.Context, userID string) (GameID, bool, error)
	SetCurrentGame(ctx context.Context, userID string, id GameID) error
	ClearCurrentGame(ctx context.Context, userID string) error
}

// Store is a complete storage backend
type Store interface {
	GameStore
	SessionStore

	// Stats returns storage statistics
	Stats() Stats

	// Close cleanly shuts down the backend
	Close() error
}

// Stats contains statistics about storage operations
type Stats struct {
	Loads       int64
	Saves       int64
	Allocations int64
	Frees       int64
	Errors      int64
	LastSave    time.Time
}

// counters is embedded by every backend to keep Stats.
type counters struct {
	loads, saves, allocations, frees, errors atomic.Int64
	lastSave                                 atomic.Int64
}

func (c *counters) record(n *atomic.Int64, err error) {
	switch {
	case err == nil:
		n.Add(1)
	case !errors.Is(err, ErrGameNotFound):
		c.errors.Add(1)
	}
}

func (c *counters) recordSave(err error) {
	c.record(&c.saves, err)
	if err == nil {
		c.lastSave.Store(time.Now().UnixNano())
	}
}

func (c *counters) Stats() Stats {
	s := Stats{
		Loads:       c.loads.Load(),
		Saves:       c.saves.Load(),
		Allocations: c.allocations.Load(),
		Frees:       c.frees.Load(),
		Errors:      c.errors.Load(),
	}
	if ns := c.lastSave.Load(); ns != 0 {
		s.LastSave = time.Unix(0, ns)
	}
	return s
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Dir, logger)
	case DriverPostgres:
		s, err := NewPostgresStore(ctx, cfg.PostgresURL, cfg.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.Driver)
	}
}
