package game

import (
	"fmt"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
)

// CommandKind names an operation a player can submit.
type CommandKind string

const (
	CommandDeploy  CommandKind = "deploy"
	CommandAttack  CommandKind = "attack"
	CommandMove    CommandKind = "move"
	CommandFortify CommandKind = "fortify"
	CommandTrade   CommandKind = "trade"
	CommandEndTurn CommandKind = "endturn"
	CommandResign  CommandKind = "resign"
)

// Command is a parsed player command. Optional numbers are pointers so an
// omitted value can be told apart from zero.
type Command struct {
	Kind CommandKind `json:"kind"`

	// deploy
	Territory string `json:"territory,omitempty"`

	// attack; Repeat reuses the last attack of the turn
	Target   string `json:"target,omitempty"`
	Attacker string `json:"attacker,omitempty"`
	ArmySize *int   `json:"army_size,omitempty"`
	Repeat   bool   `json:"repeat,omitempty"`

	// fortify
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// deploy, move and fortify; a deploy without a count places one troop
	Count *int `json:"count,omitempty"`

	// trade, 1-based hand positions
	Cards []int `json:"cards,omitempty"`
}

// Validate checks that the fields a command kind needs are present.
func (c *Command) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return core.NewGameError(0, "", string(c.Kind), core.ErrInvalidCommand, format, args...)
	}
	switch c.Kind {
	case CommandDeploy:
		if c.Territory == "" {
			return invalid("usage: deploy [number of troops] to (territory)")
		}
	case CommandAttack:
		if c.Repeat {
			if c.Target != "" || c.Attacker != "" || c.ArmySize != nil {
				return invalid("a repeated attack takes no arguments")
			}
			return nil
		}
		if c.Target == "" || c.Attacker == "" {
			return invalid("usage: attack (target) from (attacking territory) [with (army size)]")
		}
	case CommandFortify:
		if c.Count == nil || c.From == "" || c.To == "" {
			return invalid("usage: fortify (number of troops) from (territory) to (territory)")
		}
	case CommandMove, CommandTrade, CommandEndTurn, CommandResign:
	default:
		return invalid("unknown command %q", c.Kind)
	}
	return nil
}

// Execute validates cmd and runs it for playerID.
func (e *Engine) Execute(playerID string, cmd *Command) (*Result, error) {
	if cmd == nil {
		return nil, e.fail(playerID, "execute", core.ErrInvalidCommand, "no command given")
	}
	if err := cmd.Validate(); err != nil {
		var turn int
		if e.gs != nil {
			turn = e.gs.TurnCount
		}
		e.logger.Debug().Str("player_id", playerID).Int("turn", turn).Err(err).Msg("Invalid command")
		return nil, err
	}

	switch cmd.Kind {
	case CommandDeploy:
		count := 1
		if cmd.Count != nil {
			count = *cmd.Count
		}
		return e.Deploy(playerID, count, cmd.Territory)
	case CommandAttack:
		if cmd.Repeat {
			return e.Attack(playerID, nil)
		}
		return e.Attack(playerID, &AttackOrder{Target: cmd.Target, Attacker: cmd.Attacker, ArmySize: cmd.ArmySize})
	case CommandMove:
		return e.MoveAfterConquest(playerID, cmd.Count)
	case CommandFortify:
		return e.Fortify(playerID, *cmd.Count, cmd.From, cmd.To)
	case CommandTrade:
		return e.TradeCards(playerID, cmd.Cards)
	case CommandEndTurn:
		return e.EndTurn(playerID)
	case CommandResign:
		return e.Resign(playerID)
	}
	return nil, fmt.Errorf("unhandled command kind %q", cmd.Kind)
}
