package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         BIGSERIAL PRIMARY KEY,
	document   JSONB,
	free       BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS games_free_idx ON games (id) WHERE free;
CREATE TABLE IF NOT EXISTS sessions (
	user_id TEXT PRIMARY KEY,
	game_id BIGINT NOT NULL
);`

// PostgresStore keeps game documents in a jsonb column.
type PostgresStore struct {
	counters

	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to url and verifies the connection.
func NewPostgresStore(ctx context.Context, url string, maxConns int, logger zerolog.Logger) (*PostgresStore, error) {
	if url == "" {
		return nil, errors.New("postgres url is required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	s := &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "PostgresStore").Logger(),
	}
	s.logger.Info().
		Str("host", cfg.ConnConfig.Host).
		Str("database", cfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxConns).
		Msg("Connected to postgres")
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id GameID) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM games WHERE id = $1 AND NOT free`, int64(id)).Scan(&doc)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = ErrGameNotFound
	case err != nil:
		err = fmt.Errorf("failed to load game %d: %w", id, err)
	case doc == nil:
		err = ErrGameNotFound
	}
	s.record(&s.loads, err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *PostgresStore) Save(ctx context.Context, id GameID, doc []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET document = $2, updated_at = now() WHERE id = $1 AND NOT free`, int64(id), doc)
	if err != nil {
		err = fmt.Errorf("failed to save game %d: %w", id, err)
	} else if tag.RowsAffected() == 0 {
		err = ErrGameNotFound
	}
	s.recordSave(err)
	return err
}

func (s *PostgresStore) Allocate(ctx context.Context) (GameID, error) {
	id, err := s.allocate(ctx)
	s.record(&s.allocations, err)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Stringer("game_id", id).Msg("Allocated game slot")
	return id, nil
}

func (s *PostgresStore) allocate(ctx context.Context) (GameID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM games WHERE free ORDER BY id LIMIT 1 FOR UPDATE SKIP LOCKED`).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := tx.QueryRow(ctx, `INSERT INTO games DEFAULT VALUES RETURNING id`).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert game slot: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("failed to find free slot: %w", err)
	default:
		if _, err := tx.Exec(ctx,
			`UPDATE games SET free = FALSE, document = NULL, updated_at = now() WHERE id = $1`, id); err != nil {
			return 0, fmt.Errorf("failed to reuse slot %d: %w", id, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit allocation: %w", err)
	}
	return GameID(id), nil
}

func (s *PostgresStore) Free(ctx context.Context, id GameID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET free = TRUE, updated_at = now() WHERE id = $1 AND NOT free`, int64(id))
	if err != nil {
		err = fmt.Errorf("failed to free game %d: %w", id, err)
	} else if tag.RowsAffected() == 0 {
		err = ErrGameNotFound
	}
	s.record(&s.frees, err)
	return err
}

func (s *PostgresStore) CurrentGame(ctx context.Context, userID string) (GameID, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT game_id FROM sessions WHERE user_id = $1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read session for %s: %w", userID, err)
	}
	return GameID(id), true, nil
}

func (s *PostgresStore) SetCurrentGame(ctx context.Context, userID string, id GameID) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (user_id, game_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET game_id = EXCLUDED.game_id`, userID, int64(id))
	if err != nil {
		return fmt.Errorf("failed to set session for %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) ClearCurrentGame(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear session for %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
