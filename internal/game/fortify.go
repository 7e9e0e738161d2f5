package game

import (
	"fmt"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// MoveAfterConquest moves extra troops into the territory just conquered. A
// nil count moves as many as possible. The turn continues afterwards.
func (e *Engine) MoveAfterConquest(playerID string, count *int) (*Result, error) {
	const op = "move"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	gs := e.gs
	if gs.TurnStage != states.StageAttackOrMove {
		return nil, e.fail(playerID, op, core.ErrWrongPhase,
			"you must first deploy all of your troops, you still have %d left", gs.Players[playerID].DeployableTroops)
	}
	if gs.LastAttack == nil {
		return nil, e.fail(playerID, op, core.ErrNoPendingAttack, "there is no conquest to follow up")
	}
	target, attacker := gs.LastAttack.Target, gs.LastAttack.Attacker
	to, from := gs.Territories[target], gs.Territories[attacker]
	if to.Owner != from.Owner || from.Owner != playerID {
		return nil, e.fail(playerID, op, core.ErrNoPendingAttack, "you haven't conquered %s yet", target)
	}

	n := from.Troops - 1
	if count != nil {
		n = *count
	}
	switch {
	case n < 0:
		return nil, e.fail(playerID, op, core.ErrInvalidTroopCount, "can't move %d troops", n)
	case n >= from.Troops:
		return nil, e.fail(playerID, op, core.ErrInsufficientTroopsToMove,
			"you're trying to move too many troops, one must always stay behind in %s", attacker)
	}

	from.Troops -= n
	to.Troops += n
	gs.LastAttack = nil

	res := &Result{
		Operation: op,
		PlayerID:  playerID,
		Message:   fmt.Sprintf("Moved %d extra troops to %s, increasing its troop count to %d.", n, target, to.Troops),
		Move:      &MoveReport{From: attacker, To: target, Count: n, AfterConquest: true},
	}
	res.emit(events.NewTroopsMovedEvent(gs.ID, playerID, gs.TurnCount, attacker, target, n, true))
	e.logger.Info().
		Str("player_id", playerID).
		Str("from", attacker).
		Str("to", target).
		Int("count", n).
		Msg("Troops moved after conquest")
	return e.commit(res), nil
}

// Fortify moves count troops between two adjacent territories the player
// owns and ends their turn.
func (e *Engine) Fortify(playerID string, count int, from, to string) (*Result, error) {
	const op = "fortify"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	gs := e.gs
	if gs.TurnStage != states.StageAttackOrMove {
		return nil, e.fail(playerID, op, core.ErrWrongPhase,
			"you must first deploy all of your troops, you still have %d left", gs.Players[playerID].DeployableTroops)
	}
	if count <= 0 {
		return nil, e.fail(playerID, op, core.ErrInvalidTroopCount, "can't move %d troops", count)
	}

	src, srcState, err := e.lookup(playerID, op, from)
	if err != nil {
		return nil, err
	}
	dst, dstState, err := e.lookup(playerID, op, to)
	if err != nil {
		return nil, err
	}
	if srcState.Owner != playerID {
		return nil, e.fail(playerID, op, core.ErrNotOwner, "you don't own %s", src)
	}
	if dstState.Owner != playerID {
		return nil, e.fail(playerID, op, core.ErrNotOwner, "you don't own %s", dst)
	}
	if !e.world.Adjacent(src, dst) {
		return nil, e.fail(playerID, op, core.ErrNotAdjacent, "%s and %s are not adjacent", src, dst)
	}
	if count >= srcState.Troops {
		return nil, e.fail(playerID, op, core.ErrInsufficientTroopsToMove,
			"you're trying to move too many troops, at least one must stay behind in %s", src)
	}

	srcState.Troops -= count
	dstState.Troops += count

	res := &Result{
		Operation: op,
		PlayerID:  playerID,
		Message:   fmt.Sprintf("Moved %d troops to %s, increasing its troop count to %d.", count, dst, dstState.Troops),
		Move:      &MoveReport{From: src, To: dst, Count: count},
	}
	res.emit(events.NewTroopsMovedEvent(gs.ID, playerID, gs.TurnCount, src, dst, count, false))
	e.logger.Info().
		Str("player_id", playerID).
		Str("from", src).
		Str("to", dst).
		Int("count", count).
		Msg("Troops fortified")

	e.advanceTurn(res)
	return e.commit(res), nil
}
