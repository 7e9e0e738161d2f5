package game

import (
	"fmt"
	"time"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// NewGame seats playerIDs in a random order and deals the opening position.
// Standard games start with a pregame in which territories are claimed one
// troop at a time; instant-fill games start with every territory already
// assigned at random.
func NewGame(cfg GameConfig, playerIDs []string, instantFill bool) (*Engine, *Result, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	const op = "create"

	starting, ok := rules.StartingTroops(len(playerIDs))
	if !ok {
		return nil, nil, core.NewGameError(0, "", op, core.ErrInvalidPlayerCount,
			"a game needs %d to %d players, got %d", rules.MinPlayers, rules.MaxPlayers, len(playerIDs))
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" {
			return nil, nil, core.NewGameError(0, "", op, core.ErrInvalidCommand, "player ids must not be empty")
		}
		if seen[id] {
			return nil, nil, core.NewGameError(0, id, op, core.ErrDuplicatePlayer, "%s is listed twice", id)
		}
		seen[id] = true
	}

	order := append([]string(nil), playerIDs...)
	e.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	now := time.Now().UTC()
	gs := &GameState{
		ID:                cfg.GameID,
		Players:           make(map[string]*PlayerState, len(order)),
		TurnOrder:         order,
		Territories:       make(map[string]*TerritoryState, e.world.NumTerritories()),
		Deck:              core.NewDeck(e.world.TerritoryNames(), e.rng),
		Discard:           []core.Card{},
		ActivePlayer:      1,
		EliminatedPlayers: []int{},
		TurnStage:         states.StageDeploying,
		TurnCount:         1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i, id := range order {
		gs.Players[id] = &PlayerState{
			ID:          id,
			TurnNumber:  i + 1,
			Colour:      Colours[i],
			Territories: []string{},
			Hand:        []core.Card{},
		}
	}
	for _, name := range e.world.TerritoryNames() {
		gs.Territories[name] = &TerritoryState{}
	}
	e.gs = gs

	if instantFill {
		e.fillTerritories()
	} else {
		gs.InPregame = true
		gs.UnclaimedTerritories = e.world.NumTerritories()
		for _, p := range gs.Players {
			p.DeployableTroops = starting
		}
	}

	first := gs.activePlayer()
	res := &Result{
		Operation: op,
		Message:   fmt.Sprintf("Game started with %d players. %s goes first.", len(order), first.ID),
		TurnStarted: &TurnStart{
			PlayerID:       first.ID,
			Reinforcements: first.DeployableTroops,
			InPregame:      gs.InPregame,
		},
	}
	res.emit(
		events.NewGameStartedEvent(gs.ID, append([]string(nil), order...), instantFill),
		events.NewTurnStartedEvent(gs.ID, first.ID, gs.TurnCount, first.DeployableTroops, false, gs.InPregame),
	)

	e.logger.Info().
		Strs("turn_order", order).
		Bool("instant_fill", instantFill).
		Int("starting_troops", starting).
		Msg("Game created")

	return e, e.commit(res), nil
}

// fillTerritories assigns every territory to a random player with a random
// garrison. Each player is guaranteed at least one territory.
func (e *Engine) fillTerritories() {
	gs := e.gs
	names := e.world.TerritoryNames()
	e.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	n := len(gs.TurnOrder)
	for i, name := range names {
		owner := gs.TurnOrder[e.rng.Intn(n)]
		if i < n {
			owner = gs.TurnOrder[i]
		}
		troops := e.fillMin + e.rng.Intn(e.fillMax-e.fillMin+1)
		gs.Territories[name] = &TerritoryState{Owner: owner, Troops: troops}
		p := gs.Players[owner]
		p.Territories = append(p.Territories, name)
	}

	gs.InPregame = false
	gs.UnclaimedTerritories = 0
	first := gs.activePlayer()
	first.DeployableTroops = e.CalculateReinforcements(first.ID)
	gs.TurnStage = states.OpeningStage(len(first.Hand))
}

// CalculateReinforcements returns the troops playerID receives at the start of
// a main-game turn.
func (e *Engine) CalculateReinforcements(playerID string) int {
	p, ok := e.gs.Players[playerID]
	if !ok {
		return 0
	}
	return rules.Reinforcements(e.world, p.Territories)
}

// advanceTurn hands the turn to the next player still in the game. During the
// pregame it stops at any player with troops left to place; the first player
// found without any ends the pregame and opens the main game.
func (e *Engine) advanceTurn(res *Result) {
	gs := e.gs
	n := len(gs.TurnOrder)
	for step := 0; step < n; step++ {
		gs.ActivePlayer = gs.ActivePlayer%n + 1
		if !gs.isTurnEliminated(gs.ActivePlayer) {
			break
		}
	}
	gs.TurnCount++
	gs.LastAttack = nil
	gs.CardClaimed = false
	player := gs.activePlayer()

	ts := &TurnStart{PlayerID: player.ID}
	if gs.InPregame && player.DeployableTroops > 0 {
		ts.Reinforcements = player.DeployableTroops
		ts.InPregame = true
	} else {
		if gs.InPregame {
			e.moveToPhase(states.PhaseRunning)
			gs.InPregame = false
			e.logger.Info().Int("turn", gs.TurnCount).Msg("Pregame finished")
		}
		player.DeployableTroops = e.CalculateReinforcements(player.ID)
		gs.TurnStage = states.OpeningStage(len(player.Hand))
		ts.Reinforcements = player.DeployableTroops
		ts.MustTrade = gs.TurnStage == states.StageAwaitingCardTrade
	}

	res.TurnStarted = ts
	res.emit(events.NewTurnStartedEvent(gs.ID, ts.PlayerID, gs.TurnCount, ts.Reinforcements, ts.MustTrade, ts.InPregame))
	e.logger.Debug().
		Str("player_id", ts.PlayerID).
		Int("turn", gs.TurnCount).
		Int("reinforcements", ts.Reinforcements).
		Bool("in_pregame", ts.InPregame).
		Msg("Turn advanced")
}

// AdvanceTurn passes the turn without any checks on the active player.
func (e *Engine) AdvanceTurn() (*Result, error) {
	if e.gs.Phase().IsTerminal() {
		return nil, e.fail("", "advance", core.ErrGameOver, "")
	}
	res := &Result{Operation: "advance"}
	e.advanceTurn(res)
	res.Message = fmt.Sprintf("It's now %s's turn.", res.TurnStarted.PlayerID)
	return e.commit(res), nil
}

// EndTurn finishes the active player's turn without a fortifying move.
func (e *Engine) EndTurn(playerID string) (*Result, error) {
	const op = "endturn"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	if e.gs.TurnStage != states.StageAttackOrMove {
		return nil, e.fail(playerID, op, core.ErrWrongPhase, "deploy all your troops before ending your turn")
	}

	res := &Result{Operation: op, PlayerID: playerID, Message: fmt.Sprintf("%s ended their turn.", playerID)}
	e.advanceTurn(res)
	e.logger.Info().Str("player_id", playerID).Msg("Turn ended")
	return e.commit(res), nil
}

// Resign takes playerID out of the game. Their cards are discarded while their
// territories stay on the board. If one player remains they win; otherwise
// the turn moves on if it was the resigner's.
func (e *Engine) Resign(playerID string) (*Result, error) {
	const op = "resign"
	gs := e.gs
	if gs.Phase().IsTerminal() {
		return nil, e.fail(playerID, op, core.ErrGameOver, "the game is over")
	}
	p, ok := gs.Players[playerID]
	if !ok || p.Eliminated {
		return nil, e.fail(playerID, op, core.ErrNotInGame, "you're not playing in this game")
	}
	wasActive := gs.ActivePlayerID() == playerID

	gs.Discard = append(gs.Discard, p.Hand...)
	p.Hand = []core.Card{}
	p.DeployableTroops = 0
	p.Eliminated = true
	p.Resigned = true
	gs.EliminatedPlayers = append(gs.EliminatedPlayers, p.TurnNumber)

	res := &Result{Operation: op, PlayerID: playerID, Resigned: playerID, Message: fmt.Sprintf("%s resigned.", playerID)}
	res.emit(events.NewPlayerResignedEvent(gs.ID, playerID, gs.TurnCount))
	e.logger.Info().Str("player_id", playerID).Bool("was_active", wasActive).Msg("Player resigned")

	players := make([]rules.Player, 0, len(gs.Players))
	for _, q := range gs.OrderedPlayers() {
		players = append(players, q)
	}
	if winner, ok := e.winChecker.LastStanding(players); ok {
		e.declareVictory(res, winner, "resignation")
	} else if wasActive {
		e.advanceTurn(res)
	}
	return e.commit(res), nil
}

// eliminate removes a player who has lost their last territory.
func (e *Engine) eliminate(res *Result, p *PlayerState, by string) {
	gs := e.gs
	gs.Discard = append(gs.Discard, p.Hand...)
	p.Hand = []core.Card{}
	p.DeployableTroops = 0
	p.Eliminated = true
	gs.EliminatedPlayers = append(gs.EliminatedPlayers, p.TurnNumber)

	res.Eliminated = append(res.Eliminated, p.ID)
	res.notice(fmt.Sprintf("%s has been eliminated by %s.", p.ID, by))
	res.emit(events.NewPlayerEliminatedEvent(gs.ID, p.ID, by, gs.TurnCount))
	e.logger.Info().Str("player_id", p.ID).Str("eliminated_by", by).Msg("Player eliminated")
}

// declareVictory ends the game. Nothing further is accepted for it.
func (e *Engine) declareVictory(res *Result, winner, reason string) {
	gs := e.gs
	e.moveToPhase(states.PhaseEnded)
	gs.Winner = winner
	gs.Over = true
	gs.LastAttack = nil

	res.Winner = winner
	res.GameOver = true
	res.notice(fmt.Sprintf("%s has won the game!", winner))
	res.emit(
		events.NewPlayerWonEvent(gs.ID, winner, gs.TurnCount),
		events.NewGameEndedEvent(gs.ID, winner, reason, gs.TurnCount),
	)
	e.logger.Info().Str("winner", winner).Str("reason", reason).Int("turn", gs.TurnCount).Msg("Game won")
}
