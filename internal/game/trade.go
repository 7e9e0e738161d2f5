package game

import (
	"fmt"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/rules"
	"github.com/mitchelldurbincs/conquest/internal/game/states"
)

// TradeCards trades a set of three cards for reinforcements. indices are the
// 1-based hand positions the player picked; fewer than three are completed
// with the best legal set the hand allows.
func (e *Engine) TradeCards(playerID string, indices []int) (*Result, error) {
	const op = "trade"
	if err := e.checkTurn(playerID, op); err != nil {
		return nil, err
	}
	gs := e.gs
	player := gs.Players[playerID]
	if gs.TurnStage == states.StageAttackOrMove {
		return nil, e.fail(playerID, op, core.ErrWrongPhase,
			"you've deployed all your troops and can no longer trade")
	}
	if len(player.Hand) < rules.SetSize {
		return nil, e.fail(playerID, op, core.ErrNotEnoughCards, "you don't have enough cards to trade")
	}
	if len(indices) > rules.SetSize {
		return nil, e.fail(playerID, op, core.ErrIllegalCardSet,
			"there are only three cards to a set, got %d", len(indices))
	}

	selected := make([]int, 0, rules.SetSize)
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(player.Hand) {
			cie := &core.CardIndexError{
				Index:    idx,
				HandSize: len(player.Hand),
				Absurd:   idx > core.DeckSize(e.world.NumTerritories()),
			}
			return nil, e.fail(playerID, op, cie, "")
		}
		if seen[idx] {
			return nil, e.fail(playerID, op, core.ErrIllegalCardSet, "card %d was picked twice", idx)
		}
		seen[idx] = true
		selected = append(selected, idx-1)
	}

	if len(selected) == rules.SetSize {
		if !rules.IsLegalSet(cardsAt(player.Hand, selected)) {
			return nil, e.fail(playerID, op, core.ErrIllegalCardSet, "that's not a legal set of cards")
		}
	} else {
		best, ok := rules.BestSet(player.Hand, selected, player.owns)
		if !ok {
			return nil, e.fail(playerID, op, core.ErrNoCompleteSet, "you don't have a complete set to trade in")
		}
		selected = best
	}

	traded := cardsAt(player.Hand, selected)
	bonusTerritory := ""
	for _, c := range traded {
		if !c.IsWild() && player.owns(c.Territory) {
			bonusTerritory = c.Territory
			break
		}
	}

	drop := make(map[int]bool, len(selected))
	for _, i := range selected {
		drop[i] = true
	}
	kept := make([]core.Card, 0, len(player.Hand)-len(selected))
	for i, c := range player.Hand {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	player.Hand = kept
	gs.Discard = append(gs.Discard, traded...)

	reward := rules.TradeReward(gs.TradeCount)
	gs.TradeCount++
	player.DeployableTroops += reward
	if bonusTerritory != "" {
		gs.Territories[bonusTerritory].Troops += rules.BonusCardTroops
	}
	if gs.TurnStage == states.StageAwaitingCardTrade {
		e.moveToStage(states.StageDeploying)
	}

	names := make([]string, len(traded))
	for i, c := range traded {
		names[i] = c.String()
	}
	res := &Result{
		Operation: op,
		PlayerID:  playerID,
		Message: fmt.Sprintf("%s received %d extra troops and now has %d troops left to deploy.",
			playerID, reward, player.DeployableTroops),
		Trade: &TradeReport{
			Cards:          names,
			Reward:         reward,
			BonusTerritory: bonusTerritory,
			TradeCount:     gs.TradeCount,
		},
	}
	if bonusTerritory != "" {
		res.notice(fmt.Sprintf("Two extra troops were deployed to %s for trading in its card.", bonusTerritory))
	}
	res.emit(events.NewCardsTradedEvent(gs.ID, playerID, gs.TurnCount, names, reward, bonusTerritory))

	e.logger.Info().
		Str("player_id", playerID).
		Strs("cards", names).
		Int("reward", reward).
		Str("bonus_territory", bonusTerritory).
		Int("trade_count", gs.TradeCount).
		Msg("Cards traded")
	return e.commit(res), nil
}

func cardsAt(hand []core.Card, indices []int) []core.Card {
	out := make([]core.Card, len(indices))
	for i, idx := range indices {
		out[i] = hand[idx]
	}
	return out
}
