package manager

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/store"
)

// Config holds the collaborators of a Manager
type Config struct {
	World  *core.World
	Store  store.Store
	Logger zerolog.Logger
	// EventBus receives the events of every committed command. Optional.
	EventBus events.Publisher
	// Seed fixes the random source for shuffles and dice. Zero uses the clock.
	Seed int64
	// Dice overrides the dice of every game. Tests only.
	Dice core.DiceRoller

	FillMinTroops int
	FillMaxTroops int
}

// Manager runs commands against stored games. Commands for the same game are
// serialised; different games proceed independently.
type Manager struct {
	world  *core.World
	store  store.Store
	bus    events.Publisher
	logger zerolog.Logger
	dice   core.DiceRoller

	fillMin int
	fillMax int

	seedMu sync.Mutex
	seeds  *rand.Rand

	// createMu serialises game creation so the session checks and the
	// session writes of one creation cannot interleave with another's.
	createMu sync.Mutex

	locksMu sync.Mutex
	locks   map[store.GameID]*sync.Mutex

	idempotency *IdempotencyManager
}

// New creates a manager
func New(cfg Config) (*Manager, error) {
	if cfg.World == nil {
		return nil, errors.New("manager requires a world")
	}
	if cfg.Store == nil {
		return nil, errors.New("manager requires a store")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		world:       cfg.World,
		store:       cfg.Store,
		bus:         cfg.EventBus,
		logger:      cfg.Logger.With().Str("component", "GameManager").Logger(),
		dice:        cfg.Dice,
		fillMin:     cfg.FillMinTroops,
		fillMax:     cfg.FillMaxTroops,
		seeds:       rand.New(rand.NewSource(seed)),
		locks:       make(map[store.GameID]*sync.Mutex),
		idempotency: NewIdempotencyManager(),
	}, nil
}

// World returns the board every game is played on
func (m *Manager) World() *core.World {
	return m.world
}

func (m *Manager) gameLock(id store.GameID) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	mu, ok := m.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		m.locks[id] = mu
	}
	return mu
}

func (m *Manager) gameConfig(id store.GameID) game.GameConfig {
	m.seedMu.Lock()
	rng := rand.New(rand.NewSource(m.seeds.Int63()))
	m.seedMu.Unlock()
	return game.GameConfig{
		GameID:        id.String(),
		World:         m.world,
		Rng:           rng,
		Dice:          m.dice,
		Logger:        m.logger,
		FillMinTroops: m.fillMin,
		FillMaxTroops: m.fillMax,
	}
}

// CreateGame starts a game for creator and the other players. Nobody may
// already be in a game.
func (m *Manager) CreateGame(ctx context.Context, creator string, players []string, instantFill bool) (store.GameID, *game.Result, error) {
	requestID := uuid.NewString()
	seated := append([]string{creator}, players...)
	if slices.Contains(players, creator) {
		seated = slices.Clone(players)
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()

	for _, p := range seated {
		if p == "" {
			continue
		}
		_, busy, err := m.store.CurrentGame(ctx, p)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to read session for %s: %w", p, err)
		}
		if busy {
			who := p + " is"
			if p == creator {
				who = "you are"
			}
			return 0, nil, core.NewGameError(0, p, "create", core.ErrAlreadyInGame, "%s already in a game", who)
		}
	}

	id, err := m.store.Allocate(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to allocate game: %w", err)
	}
	engine, res, err := game.NewGame(m.gameConfig(id), seated, instantFill)
	if err != nil {
		m.release(ctx, id)
		return 0, nil, err
	}
	if err := m.save(ctx, id, engine.State()); err != nil {
		m.release(ctx, id)
		return 0, nil, err
	}
	for _, p := range seated {
		if err := m.store.SetCurrentGame(ctx, p, id); err != nil {
			return 0, nil, fmt.Errorf("failed to record session for %s: %w", p, err)
		}
	}

	m.publish(res)
	m.logger.Info().
		Str("request_id", requestID).
		Stringer("game_id", id).
		Str("creator", creator).
		Strs("turn_order", engine.State().TurnOrder).
		Bool("instant_fill", instantFill).
		Msg("Created game")
	return id, res, nil
}

// Execute runs cmd for userID in the game their session points at. A
// non-empty idempotencyKey answers a retry with the earlier result. The cache
// is consulted under the game's lock so concurrent retries apply once.
func (m *Manager) Execute(ctx context.Context, userID string, cmd *game.Command, idempotencyKey string) (store.GameID, *game.Result, error) {
	if cmd == nil {
		return 0, nil, core.NewGameError(0, userID, "execute", core.ErrInvalidCommand, "no command given")
	}
	if err := cmd.Validate(); err != nil {
		return 0, nil, err
	}

	id, err := m.sessionGame(ctx, userID, string(cmd.Kind))
	if err != nil {
		return 0, nil, err
	}

	requestID := uuid.NewString()
	logger := m.logger.With().
		Str("request_id", requestID).
		Stringer("game_id", id).
		Str("user_id", userID).
		Str("op", string(cmd.Kind)).
		Logger()

	mu := m.gameLock(id)
	mu.Lock()
	defer mu.Unlock()

	if res, ok := m.idempotency.Check(userID, id, idempotencyKey); ok {
		logger.Debug().
			Str("idempotency_key", idempotencyKey).
			Msg("Returning cached result")
		return id, res, nil
	}

	engine, err := m.resume(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load game")
		return 0, nil, err
	}
	res, err := engine.Execute(userID, cmd)
	if err != nil {
		if core.IsRuleViolation(err) {
			logger.Debug().Err(err).Msg("Command rejected")
		} else {
			logger.Error().Err(err).Msg("Command failed")
		}
		return 0, nil, err
	}

	gs := engine.State()
	if err := m.save(ctx, id, gs); err != nil {
		logger.Error().Err(err).Msg("Failed to save game")
		return 0, nil, err
	}
	if err := m.settleSessions(ctx, id, gs, res); err != nil {
		logger.Error().Err(err).Msg("Failed to update sessions")
		return 0, nil, err
	}

	m.publish(res)
	if !res.GameOver {
		m.idempotency.Store(userID, id, idempotencyKey, res)
	}
	logger.Info().
		Int("turn", gs.TurnCount).
		Bool("game_over", res.GameOver).
		Msg("Command applied")
	return id, res, nil
}

// settleSessions releases players who are done with the game, and retires the
// slot once it has a winner.
func (m *Manager) settleSessions(ctx context.Context, id store.GameID, gs *game.GameState, res *game.Result) error {
	done := append([]string(nil), res.Eliminated...)
	if res.Resigned != "" {
		done = append(done, res.Resigned)
	}
	if res.GameOver {
		done = append([]string(nil), gs.TurnOrder...)
	}
	for _, p := range done {
		if err := m.clearSession(ctx, p, id); err != nil {
			return err
		}
	}
	if res.GameOver {
		if err := m.store.Free(ctx, id); err != nil && !errors.Is(err, store.ErrGameNotFound) {
			return fmt.Errorf("failed to retire game %s: %w", id, err)
		}
		m.idempotency.Forget(id)
		m.logger.Info().Stringer("game_id", id).Str("winner", gs.Winner).Msg("Game retired")
	}
	return nil
}

// clearSession drops userID's session if it still points at id.
func (m *Manager) clearSession(ctx context.Context, userID string, id store.GameID) error {
	current, ok, err := m.store.CurrentGame(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read session for %s: %w", userID, err)
	}
	if !ok || current != id {
		return nil
	}
	if err := m.store.ClearCurrentGame(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear session for %s: %w", userID, err)
	}
	return nil
}

// CurrentGame returns the game userID is playing
func (m *Manager) CurrentGame(ctx context.Context, userID string) (store.GameID, bool, error) {
	return m.store.CurrentGame(ctx, userID)
}

// Snapshot returns a private copy of a game's state
func (m *Manager) Snapshot(ctx context.Context, id store.GameID) (*game.GameState, error) {
	doc, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return game.DecodeState(doc, m.world)
}

// Hand lists userID's cards in their current game
func (m *Manager) Hand(ctx context.Context, userID string) (store.GameID, []game.HandCard, error) {
	id, err := m.sessionGame(ctx, userID, "hand")
	if err != nil {
		return 0, nil, err
	}
	engine, err := m.resume(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	hand, err := engine.Hand(userID)
	if err != nil {
		return 0, nil, err
	}
	return id, hand, nil
}

// Stats returns storage statistics
func (m *Manager) Stats() store.Stats {
	return m.store.Stats()
}

func (m *Manager) sessionGame(ctx context.Context, userID, op string) (store.GameID, error) {
	id, ok, err := m.store.CurrentGame(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read session for %s: %w", userID, err)
	}
	if !ok {
		return 0, core.NewGameError(0, userID, op, core.ErrNotInGame, "you're not in a game")
	}
	return id, nil
}

func (m *Manager) resume(ctx context.Context, id store.GameID) (*game.Engine, error) {
	doc, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	gs, err := game.DecodeState(doc, m.world)
	if err != nil {
		return nil, err
	}
	return game.Resume(m.gameConfig(id), gs)
}

func (m *Manager) save(ctx context.Context, id store.GameID, gs *game.GameState) error {
	doc, err := gs.Encode()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, id, doc); err != nil {
		return fmt.Errorf("failed to save game %s: %w", id, err)
	}
	return nil
}

func (m *Manager) release(ctx context.Context, id store.GameID) {
	if err := m.store.Free(ctx, id); err != nil {
		m.logger.Warn().Err(err).Stringer("game_id", id).Msg("Failed to release game slot")
	}
}

func (m *Manager) publish(res *game.Result) {
	if m.bus == nil || res == nil {
		return
	}
	m.bus.PublishAll(res.Events)
}
