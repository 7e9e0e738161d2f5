package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// GameConfig holds the collaborators an engine runs with
type GameConfig struct {
	GameID string
	World  *core.World
	Rng    *rand.Rand
	// Dice defaults to RandomDice over Rng.
	Dice   core.DiceRoller
	Logger zerolog.Logger
	// EventBus, when set, receives the events of every successful operation.
	EventBus events.Publisher

	// Troop range for territories filled by instant-fill games.
	FillMinTroops int
	FillMaxTroops int
}

// Engine applies the rules to one game. It is not safe for concurrent use;
// callers serialise access per game.
type Engine struct {
	gs         *GameState
	world      *core.World
	rng        *rand.Rand
	dice       core.DiceRoller
	logger     zerolog.Logger
	publisher  events.Publisher
	winChecker *rules.WinConditionChecker
	fillMin    int
	fillMax    int
}

func newEngine(cfg GameConfig) (*Engine, error) {
	if cfg.World == nil {
		return nil, errors.New("game config requires a world")
	}
	rng := cfg.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	dice := cfg.Dice
	if dice == nil {
		dice = core.NewRandomDice(rng)
	}
	fillMin, fillMax := cfg.FillMinTroops, cfg.FillMaxTroops
	if fillMin < 1 {
		fillMin = 1
	}
	if fillMax < fillMin {
		fillMax = fillMin + 9
	}

	logger := cfg.Logger.With().Str("component", "GameEngine").Str("game_id", cfg.GameID).Logger()
	return &Engine{
		world:      cfg.World,
		rng:        rng,
		dice:       dice,
		logger:     logger,
		publisher:  cfg.EventBus,
		winChecker: rules.NewWinConditionChecker(logger, cfg.World.NumTerritories()),
		fillMin:    fillMin,
		fillMax:    fillMax,
	}, nil
}

// Resume wraps a decoded game document in an engine.
func Resume(cfg GameConfig, gs *GameState) (*Engine, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	e.gs = gs
	return e, nil
}

// State returns the game document the engine mutates.
func (e *Engine) State() *GameState {
	return e.gs
}

func (e *Engine) World() *core.World {
	return e.world
}

// fail builds a rule error for op and logs it at debug level.
func (e *Engine) fail(playerID, op string, err error, format string, args ...interface{}) error {
	ge := core.NewGameError(e.gs.TurnCount, playerID, op, err, format, args...)
	e.logger.Debug().Str("player_id", playerID).Str("op", op).Err(ge).Msg("Rejected operation")
	return ge
}

// checkTurn verifies playerID may act in the current turn.
func (e *Engine) checkTurn(playerID, op string) error {
	if e.gs.Phase().IsTerminal() {
		return e.fail(playerID, op, core.ErrGameOver, "the game is over, %s won", e.gs.Winner)
	}
	p, ok := e.gs.Players[playerID]
	if !ok || p.Eliminated {
		return e.fail(playerID, op, core.ErrNotInGame, "you're not playing in this game")
	}
	if e.gs.ActivePlayerID() != playerID {
		return e.fail(playerID, op, core.ErrNotYourTurn, "it's %s's turn", e.gs.ActivePlayerID())
	}
	return nil
}

func (e *Engine) lookup(playerID, op, name string) (string, *TerritoryState, error) {
	resolved, ok := e.world.Lookup(name)
	if !ok {
		return "", nil, e.fail(playerID, op, core.ErrUnknownTerritory, "couldn't find the territory %q", name)
	}
	return resolved, e.gs.Territories[resolved], nil
}

// moveToPhase checks a lifecycle transition against the phase graph. The
// phase itself lives in the document's flags, which the caller updates.
func (e *Engine) moveToPhase(to states.GamePhase) {
	from := e.gs.Phase()
	if !from.CanTransitionTo(to) {
		e.logger.Error().
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Unexpected game phase transition")
	}
}

// moveToStage advances the turn stage within a turn.
func (e *Engine) moveToStage(to states.TurnStage) {
	if !e.gs.TurnStage.CanTransitionTo(to) {
		e.logger.Error().
			Str("from", e.gs.TurnStage.String()).
			Str("to", to.String()).
			Msg("Unexpected turn stage transition")
	}
	e.gs.TurnStage = to
}

// commit stamps the document and publishes the result's events.
func (e *Engine) commit(res *Result) *Result {
	e.gs.UpdatedAt = time.Now().UTC()
	if e.publisher != nil {
		e.publisher.PublishAll(res.Events)
	}
	return res
}

// Hand lists a player's cards with their 1-based trade indices.
func (e *Engine) Hand(playerID string) ([]HandCard, error) {
	p, ok := e.gs.Players[playerID]
	if !ok || p.Eliminated {
		return nil, e.fail(playerID, "hand", core.ErrNotInGame, "you're not playing in this game")
	}
	out := make([]HandCard, 0, len(p.Hand))
	for i, c := range p.Hand {
		out = append(out, HandCard{
			Index:     i + 1,
			Kind:      string(c.Kind),
			Territory: c.Territory,
			Bonus:     !c.IsWild() && e.gs.Owner(c.Territory) == playerID,
		})
	}
	return out, nil
}
