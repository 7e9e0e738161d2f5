package manager

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/store"
)

const (
	idempotencyTTL        = 24 * time.Hour
	idempotencyCleanupLen = 1000
)

// idempotencyKey represents a composite key for idempotent requests. Slots
// are reused, so the game id alone does not pin a game; Forget drops a
// retired game's entries before its slot can be handed out again.
type idempotencyKey struct {
	UserID         string
	GameID         store.GameID
	IdempotencyKey string
}

// idempotencyEntry stores a cached outcome with timestamp
type idempotencyEntry struct {
	result    *game.Result
	createdAt time.Time
}

// IdempotencyManager caches the results of successful commands so a retried
// request is answered without being applied twice.
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		ttl:   idempotencyTTL,
		now:   time.Now,
	}
}

// Check returns the cached outcome if the key exists for the user in game id
func (im *IdempotencyManager) Check(userID string, id store.GameID, key string) (*game.Result, bool) {
	if key == "" {
		return nil, false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{UserID: userID, GameID: id, IdempotencyKey: key}]
	if !exists || im.now().Sub(entry.createdAt) > im.ttl {
		return nil, false
	}
	return entry.result, true
}

// Store caches an outcome for the user's idempotency key in game id
func (im *IdempotencyManager) Store(userID string, id store.GameID, key string, res *game.Result) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{UserID: userID, GameID: id, IdempotencyKey: key}] = &idempotencyEntry{
		result:    res,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyCleanupLen {
		im.cleanupOldEntriesLocked()
	}
}

// Forget drops every entry recorded against game id
func (im *IdempotencyManager) Forget(id store.GameID) {
	im.mu.Lock()
	defer im.mu.Unlock()
	for key := range im.cache {
		if key.GameID == id {
			delete(im.cache, key)
		}
	}
}

// Len returns the number of cached entries
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries.
// Must be called with mu held
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-im.ttl)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
