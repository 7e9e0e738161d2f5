package game

import (
	"fmt"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// DefaultArmySize is used when an attack names no army size.
const DefaultArmySize = core.MaxAttackDice

// AttackOrder names one attack. A nil ArmySize means DefaultArmySize.
type AttackOrder struct {
	Target   string
	Attacker string
	ArmySize *int
}

// Attack resolves a single roll of combat. A nil order repeats the last attack
// of the turn.
func (e *Engine) Attack(playerID string, order *AttackOrder) (*Result, error) {
	const op = "attack"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	gs := e.gs
	if gs.TurnStage != states.StageAttackOrMove {
		return nil, e.fail(playerID, op, core.ErrWrongPhase,
			"you must first deploy all of your troops, you still have %d left", gs.Players[playerID].DeployableTroops)
	}

	var targetName, attackerName string
	armySize := DefaultArmySize
	if order == nil {
		if gs.LastAttack == nil {
			return nil, e.fail(playerID, op, core.ErrNoPendingAttack, "there is no previous attack to repeat")
		}
		targetName, attackerName, armySize = gs.LastAttack.Target, gs.LastAttack.Attacker, gs.LastAttack.ArmySize
	} else {
		targetName, attackerName = order.Target, order.Attacker
		if order.ArmySize != nil {
			armySize = *order.ArmySize
		}
	}
	if armySize < 1 {
		return nil, e.fail(playerID, op, core.ErrInvalidTroopCount, "can't attack with %d troops", armySize)
	}

	target, def, err := e.lookup(playerID, op, targetName)
	if err != nil {
		return nil, err
	}
	attacker, off, err := e.lookup(playerID, op, attackerName)
	if err != nil {
		return nil, err
	}
	if off.Owner != playerID {
		return nil, e.fail(playerID, op, core.ErrNotOwner, "you can't attack from %s, you don't own it", attacker)
	}
	if !e.world.Adjacent(attacker, target) {
		return nil, e.fail(playerID, op, core.ErrNotAdjacent, "%s and %s are not adjacent", attacker, target)
	}
	if def.Owner == playerID {
		return nil, e.fail(playerID, op, core.ErrSelfAttack, "you can't attack yourself")
	}
	if off.Troops <= 1 {
		return nil, e.fail(playerID, op, core.ErrInsufficientArmy,
			"you can't attack with one troop, %s would be left undefended", attacker)
	}

	res := &Result{Operation: op, PlayerID: playerID}
	clamped := false
	if armySize > core.MaxAttackDice {
		armySize = core.MaxAttackDice
		clamped = true
	}
	if off.Troops <= armySize {
		armySize = off.Troops - 1
		clamped = true
	}
	if clamped {
		res.notice(fmt.Sprintf("Automatically reducing attacking army size to %d.", armySize))
	}

	defenderID := def.Owner
	attDice := core.SortedDesc(e.dice.Roll(armySize))
	defDice := core.SortedDesc(e.dice.Roll(core.DefenderDice(def.Troops)))
	attLoss, defLoss := core.CompareDice(attDice, defDice)

	report := &CombatReport{
		Attacker:       attacker,
		Target:         target,
		Defender:       defenderID,
		ArmySize:       armySize,
		Clamped:        clamped,
		AttackerDice:   attDice,
		DefenderDice:   defDice,
		AttackerLosses: attLoss,
		DefenderLosses: defLoss,
	}
	res.Combat = report
	res.Message = fmt.Sprintf("%s attacked %s from %s: attackers lose %d, defenders lose %d.",
		playerID, target, attacker, attLoss, defLoss)

	off.Troops -= attLoss
	def.Troops -= defLoss
	gs.LastAttack = &AttackRecord{Target: target, Attacker: attacker, ArmySize: armySize}

	conquered := def.Troops == 0
	res.emit(events.NewCombatResolvedEvent(gs.ID, playerID, defenderID, gs.TurnCount, attacker, target,
		attDice, defDice, attLoss, defLoss, conquered))

	if conquered {
		e.conquer(res, playerID, defenderID, attacker, target, armySize-attLoss)
	} else if off.Troops == 1 {
		report.Exhausted = true
		res.notice("Your army has grown too small to continue the attack.")
	}
	report.AttackerTroops = off.Troops
	report.TargetTroops = def.Troops

	e.logger.Info().
		Str("player_id", playerID).
		Str("attacker", attacker).
		Str("target", target).
		Ints("attacker_dice", attDice).
		Ints("defender_dice", defDice).
		Int("attacker_losses", attLoss).
		Int("defender_losses", defLoss).
		Bool("conquered", report.Conquered).
		Msg("Combat resolved")

	return e.commit(res), nil
}

// conquer hands target to playerID after its garrison has fallen and moves
// the surviving attackers in. It handles elimination, victory and the
// conquest card.
func (e *Engine) conquer(res *Result, playerID, defenderID, attacker, target string, minMove int) {
	gs := e.gs
	off, def := gs.Territories[attacker], gs.Territories[target]
	report := res.Combat
	report.Conquered = true

	defender := gs.Players[defenderID]
	defender.removeTerritory(target)
	conqueror := gs.Players[playerID]

	maxMove := off.Troops - 1
	def.Owner = playerID
	def.Troops = minMove
	off.Troops -= minMove
	conqueror.Territories = append(conqueror.Territories, target)

	res.emit(events.NewTerritoryConqueredEvent(gs.ID, playerID, defenderID, gs.TurnCount, target, minMove))
	res.notice(fmt.Sprintf("%s conquered %s! %d troops moved in automatically.", playerID, target, minMove))

	if e.winChecker.IsEliminated(len(defender.Territories)) && !defender.Eliminated {
		e.eliminate(res, defender, playerID)
	}

	if e.winChecker.IsWorldConquered(len(conqueror.Territories)) {
		e.declareVictory(res, playerID, "conquest")
		return
	}

	if maxMove != minMove {
		report.PendingMove = maxMove - minMove
		res.notice(fmt.Sprintf("You may move up to %d more troops into %s before your next attack or move.",
			report.PendingMove, target))
	} else {
		gs.LastAttack = nil
	}

	if !gs.CardClaimed {
		if len(gs.Deck) == 0 {
			e.logger.Warn().Str("player_id", playerID).Msg("Deck exhausted, no conquest card awarded")
			return
		}
		card := gs.Deck[len(gs.Deck)-1]
		gs.Deck = gs.Deck[:len(gs.Deck)-1]
		conqueror.Hand = append(conqueror.Hand, card)
		gs.CardClaimed = true
		report.CardDrawn = true
		res.notice("For conquering a territory this turn, you also gained a card.")
		res.emit(events.NewCardDrawnEvent(gs.ID, playerID, gs.TurnCount, len(conqueror.Hand)))
	}
}
