package main

import (
	"math/rand"

	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// Summary counts what a demo game did
type Summary struct {
	Commands int
	Rejected int
}

// play drives every seat with a random bot until the game ends or maxTurns
// turns have started.
func play(e *game.Engine, rng *rand.Rand, maxTurns int) Summary {
	var s Summary
	gs := e.State()
	lmc := rules.NewLegalMoveCalculator(e.World())
	for !gs.Over && gs.TurnCount <= maxTurns {
		playerID := gs.ActivePlayerID()
		cmd := nextCommand(gs, lmc, rng)
		s.Commands++
		if _, err := e.Execute(playerID, cmd); err != nil {
			if !core.IsRuleViolation(err) {
				break
			}
			s.Rejected++
			// fall back to a command that cannot be rejected
			if _, err := e.Execute(playerID, endTurnOrTrade(gs)); err != nil {
				break
			}
		}
	}
	return s
}

func endTurnOrTrade(gs *game.GameState) *game.Command {
	if gs.TurnStage == states.StageAwaitingCardTrade {
		return &game.Command{Kind: game.CommandTrade}
	}
	if gs.TurnStage == states.StageDeploying {
		p := gs.Players[gs.ActivePlayerID()]
		return deploy(p.DeployableTroops, p.Territories[0])
	}
	return &game.Command{Kind: game.CommandEndTurn}
}

func deploy(n int, territory string) *game.Command {
	return &game.Command{Kind: game.CommandDeploy, Territory: territory, Count: &n}
}

// nextCommand picks a plausible command for the active player. It attacks
// where its troop advantage is largest.
func nextCommand(gs *game.GameState, lmc *rules.LegalMoveCalculator, rng *rand.Rand) *game.Command {
	p := gs.Players[gs.ActivePlayerID()]
	switch gs.TurnStage {
	case states.StageAwaitingCardTrade:
		return &game.Command{Kind: game.CommandTrade}

	case states.StageDeploying:
		if len(p.Hand) >= rules.SetSize && rng.Intn(2) == 0 {
			return &game.Command{Kind: game.CommandTrade}
		}
		if attacks := lmc.Attacks(gs, p.ID); len(attacks) > 0 {
			return deploy(p.DeployableTroops, attacks[rng.Intn(len(attacks))].From)
		}
		return deploy(p.DeployableTroops, p.Territories[rng.Intn(len(p.Territories))])
	}

	if gs.LastAttack != nil && gs.Owner(gs.LastAttack.Target) == p.ID {
		return &game.Command{Kind: game.CommandMove}
	}

	var best *rules.Border
	for _, b := range lmc.Attacks(gs, p.ID) {
		if gs.Troops(b.From) <= gs.Troops(b.To) {
			continue
		}
		if best == nil || gs.Troops(b.From)-gs.Troops(b.To) > gs.Troops(best.From)-gs.Troops(best.To) {
			b := b
			best = &b
		}
	}
	if best != nil && rng.Intn(10) < 8 {
		return &game.Command{Kind: game.CommandAttack, Target: best.To, Attacker: best.From}
	}

	if moves := lmc.Fortifications(gs, p.ID); len(moves) > 0 && rng.Intn(3) == 0 {
		b := moves[rng.Intn(len(moves))]
		n := gs.Troops(b.From) - 1
		return &game.Command{Kind: game.CommandFortify, From: b.From, To: b.To, Count: &n}
	}
	return &game.Command{Kind: game.CommandEndTurn}
}
