package game

import (
	"fmt"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// Deploy places count of the player's reinforcements on territory. During the
// pregame troops go down one at a time, unclaimed territories must be taken
// before reinforcing owned ones, and every placement ends the turn.
func (e *Engine) Deploy(playerID string, count int, territory string) (*Result, error) {
	const op = "deploy"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	gs := e.gs
	player := gs.Players[playerID]

	switch gs.TurnStage {
	case states.StageAwaitingCardTrade:
		return nil, e.fail(playerID, op, core.ErrWrongPhase,
			"you have %d cards, trade in a set before deploying", len(player.Hand))
	case states.StageAttackOrMove:
		return nil, e.fail(playerID, op, core.ErrWrongPhase, "all your troops are already deployed")
	}

	if count == 0 {
		e.logger.Info().Str("player_id", playerID).Str("territory", territory).Msg("Deployed zero troops")
		return e.commit(&Result{
			Operation: op,
			PlayerID:  playerID,
			Message:   fmt.Sprintf("%s deployed no troops at all. The enemy trembles.", playerID),
		}), nil
	}
	if count < 0 {
		return nil, e.fail(playerID, op, core.ErrInvalidTroopCount, "can't deploy %d troops", count)
	}
	if gs.InPregame && count > 1 {
		return nil, e.fail(playerID, op, core.ErrTooManyTroops, "during the pregame troops are placed one at a time")
	}
	if count > player.DeployableTroops {
		return nil, e.fail(playerID, op, core.ErrTooManyTroops,
			"you only have %d troops to deploy", player.DeployableTroops)
	}

	name, t, err := e.lookup(playerID, op, territory)
	if err != nil {
		return nil, err
	}
	if t.Owner != "" && t.Owner != playerID {
		return nil, e.fail(playerID, op, core.ErrNotOwner, "%s belongs to %s", name, t.Owner)
	}
	if gs.UnclaimedTerritories > 0 && t.Owner != "" {
		return nil, e.fail(playerID, op, core.ErrClaimPhaseViolation,
			"claim one of the %d unclaimed territories first", gs.UnclaimedTerritories)
	}

	claimed := t.Owner == ""
	if claimed {
		t.Owner = playerID
		player.Territories = append(player.Territories, name)
		gs.UnclaimedTerritories--
	}
	t.Troops += count
	player.DeployableTroops -= count

	res := &Result{
		Operation: op,
		PlayerID:  playerID,
		Message:   fmt.Sprintf("%s deployed %d troops to %s.", playerID, count, name),
		Deploy: &DeployReport{
			Territory: name,
			Count:     count,
			Claimed:   claimed,
			Remaining: player.DeployableTroops,
		},
	}
	res.emit(events.NewTroopsDeployedEvent(gs.ID, playerID, gs.TurnCount, name, count, claimed))

	e.logger.Info().
		Str("player_id", playerID).
		Str("territory", name).
		Int("count", count).
		Bool("claimed", claimed).
		Int("remaining", player.DeployableTroops).
		Msg("Troops deployed")

	if gs.InPregame {
		e.advanceTurn(res)
	} else if player.DeployableTroops == 0 {
		e.moveToStage(states.StageAttackOrMove)
	}
	return e.commit(res), nil
}
