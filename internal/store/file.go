package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

const (
	indexFile    = "index.json"
	sessionsFile = "sessions.json"
	gamesDir     = "games"
)

type fileIndex struct {
	Slots int64    `json:"slots"`
	Free  []GameID `json:"free"`
}

// FileStore keeps one JSON document per game under dir, plus an index of
// slots and a sessions file. Writes go through a temp file and a rename.
type FileStore struct {
	counters

	dir    string
	logger zerolog.Logger

	mu       sync.Mutex
	index    fileIndex
	sessions map[string]GameID
}

// NewFileStore opens or creates a file store rooted at dir
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, gamesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	fs := &FileStore{
		dir:      dir,
		logger:   logger.With().Str("component", "FileStore").Logger(),
		sessions: make(map[string]GameID),
	}
	if err := readJSON(filepath.Join(dir, indexFile), &fs.index); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, sessionsFile), &fs.sessions); err != nil {
		return nil, err
	}
	fs.logger.Info().
		Str("dir", dir).
		Int64("slots", fs.index.Slots).
		Int("free", len(fs.index.Free)).
		Int("sessions", len(fs.sessions)).
		Msg("Opened file store")
	return fs, nil
}

func (fs *FileStore) gamePath(id GameID) string {
	return filepath.Join(fs.dir, gamesDir, fmt.Sprintf("game-%d.json", id))
}

// live reports whether id is an allocated slot. Callers hold mu.
func (fs *FileStore) live(id GameID) bool {
	return id >= 1 && int64(id) <= fs.index.Slots && !slices.Contains(fs.index.Free, id)
}

func (fs *FileStore) Load(_ context.Context, id GameID) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.live(id) {
		fs.record(&fs.loads, ErrGameNotFound)
		return nil, ErrGameNotFound
	}
	data, err := os.ReadFile(fs.gamePath(id))
	if errors.Is(err, os.ErrNotExist) {
		err = ErrGameNotFound
	} else if err != nil {
		err = fmt.Errorf("failed to read game %d: %w", id, err)
	}
	fs.record(&fs.loads, err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (fs *FileStore) Save(_ context.Context, id GameID, doc []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.live(id) {
		fs.recordSave(ErrGameNotFound)
		return ErrGameNotFound
	}
	err := writeFileAtomic(fs.gamePath(id), doc)
	fs.recordSave(err)
	if err != nil {
		return fmt.Errorf("failed to write game %d: %w", id, err)
	}
	fs.logger.Debug().Stringer("game_id", id).Int("bytes", len(doc)).Msg("Saved game")
	return nil
}

func (fs *FileStore) Allocate(_ context.Context) (GameID, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.index
	var id GameID
	if len(next.Free) > 0 {
		id = next.Free[0]
		next.Free = slices.Clone(next.Free[1:])
	} else {
		next.Slots++
		id = GameID(next.Slots)
	}
	if err := fs.writeIndex(next); err != nil {
		fs.record(&fs.allocations, err)
		return 0, err
	}
	fs.index = next
	if err := os.Remove(fs.gamePath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		fs.logger.Warn().Err(err).Stringer("game_id", id).Msg("Failed to remove retired game document")
	}
	fs.record(&fs.allocations, nil)
	return id, nil
}

func (fs *FileStore) Free(_ context.Context, id GameID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.live(id) {
		fs.record(&fs.frees, ErrGameNotFound)
		return ErrGameNotFound
	}
	next := fs.index
	next.Free = append(slices.Clone(next.Free), id)
	slices.Sort(next.Free)
	if err := fs.writeIndex(next); err != nil {
		fs.record(&fs.frees, err)
		return err
	}
	fs.index = next
	fs.record(&fs.frees, nil)
	return nil
}

func (fs *FileStore) CurrentGame(_ context.Context, userID string) (GameID, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	id, ok := fs.sessions[userID]
	return id, ok, nil
}

func (fs *FileStore) SetCurrentGame(_ context.Context, userID string, id GameID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.sessions[userID]
	fs.sessions[userID] = id
	if err := fs.writeSessions(); err != nil {
		if had {
			fs.sessions[userID] = prev
		} else {
			delete(fs.sessions, userID)
		}
		return err
	}
	return nil
}

func (fs *FileStore) ClearCurrentGame(_ context.Context, userID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.sessions[userID]
	if !had {
		return nil
	}
	delete(fs.sessions, userID)
	if err := fs.writeSessions(); err != nil {
		fs.sessions[userID] = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

func (fs *FileStore) writeIndex(idx fileIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(fs.dir, indexFile), data); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

func (fs *FileStore) writeSessions() error {
	data, err := json.Marshal(fs.sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(fs.dir, sessionsFile), data); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
