package game

import (
	"github.com/mitchelldurbincs/conquest/internal/game/events"
)

// Result is the outcome of a successful operation, ready for the front end
// to announce.
type Result struct {
	Operation string   `json:"operation"`
	PlayerID  string   `json:"player_id,omitempty"`
	Message   string   `json:"message"`
	Notices   []string `json:"notices,omitempty"`

	Deploy *DeployReport `json:"deploy,omitempty"`
	Combat *CombatReport `json:"combat,omitempty"`
	Move   *MoveReport   `json:"move,omitempty"`
	Trade  *TradeReport  `json:"trade,omitempty"`

	TurnStarted *TurnStart `json:"turn_started,omitempty"`
	Eliminated  []string   `json:"eliminated,omitempty"`
	Resigned    string     `json:"resigned,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	GameOver    bool       `json:"game_over,omitempty"`

	Events []events.Event `json:"-"`
}

// TurnStart announces the player whose turn has just begun.
type TurnStart struct {
	PlayerID       string `json:"player_id"`
	Reinforcements int    `json:"reinforcements"`
	MustTrade      bool   `json:"must_trade"`
	InPregame      bool   `json:"in_pregame"`
}

type DeployReport struct {
	Territory string `json:"territory"`
	Count     int    `json:"count"`
	Claimed   bool   `json:"claimed"`
	Remaining int    `json:"remaining"`
}

type CombatReport struct {
	Attacker       string `json:"attacker"`
	Target         string `json:"target"`
	Defender       string `json:"defender"`
	ArmySize       int    `json:"army_size"`
	Clamped        bool   `json:"clamped"`
	AttackerDice   []int  `json:"attacker_dice"`
	DefenderDice   []int  `json:"defender_dice"`
	AttackerLosses int    `json:"attacker_losses"`
	DefenderLosses int    `json:"defender_losses"`
	AttackerTroops int    `json:"attacker_troops"`
	TargetTroops   int    `json:"target_troops"`
	Conquered      bool   `json:"conquered"`
	// PendingMove is how many more troops may follow into the conquered territory.
	PendingMove int  `json:"pending_move"`
	CardDrawn   bool `json:"card_drawn"`
	Exhausted   bool `json:"exhausted"`
}

type MoveReport struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Count         int    `json:"count"`
	AfterConquest bool   `json:"after_conquest"`
}

type TradeReport struct {
	Cards          []string `json:"cards"`
	Reward         int      `json:"reward"`
	BonusTerritory string   `json:"bonus_territory,omitempty"`
	TradeCount     int      `json:"trade_count"`
}

// HandCard is one entry of a player's hand listing. Index is 1-based.
type HandCard struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	// Territory is empty for wild cards.
	Territory string `json:"territory,omitempty"`
	Bonus     bool   `json:"bonus"`
}

func (r *Result) notice(msg string) {
	r.Notices = append(r.Notices, msg)
}

func (r *Result) emit(evts ...events.Event) {
	r.Events = append(r.Events, evts...)
}
