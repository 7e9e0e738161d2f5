package gameserver

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/conquest/internal/game"
)

// CreateGameRequest starts a game for UserID and Players
type CreateGameRequest struct {
	UserID      string   `json:"user_id"`
	Players     []string `json:"players"`
	InstantFill bool     `json:"instant_fill"`
}

type CreateGameResponse struct {
	GameID int64        `json:"game_id"`
	Result *game.Result `json:"result"`
}

// SubmitCommandRequest runs Command in the caller's current game. A retried
// request with the same IdempotencyKey returns the earlier result.
type SubmitCommandRequest struct {
	UserID         string        `json:"user_id"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
	Command        *game.Command `json:"command"`
}

type SubmitCommandResponse struct {
	GameID int64        `json:"game_id"`
	Result *game.Result `json:"result"`
}

// GetGameStateRequest names a game directly, or through a user's session
type GetGameStateRequest struct {
	GameID int64  `json:"game_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type GetGameStateResponse struct {
	GameID int64      `json:"game_id"`
	State  *game.View `json:"state"`
}

type GetHandRequest struct {
	UserID string `json:"user_id"`
}

type GetHandResponse struct {
	GameID int64           `json:"game_id"`
	Cards  []game.HandCard `json:"cards"`
}

// toStruct converts a message into a protobuf Struct through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("building struct: %w", err)
	}
	return s, nil
}

// fromStruct fills v from a protobuf Struct.
func fromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("reading struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return nil
}
