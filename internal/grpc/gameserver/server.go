package gameserver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/conquest/internal/manager"
	"github.com/mitchelldurbincs/conquest/internal/store"
)

// Server implements the game service on top of a manager
type Server struct {
	manager *manager.Manager
	logger  zerolog.Logger
}

// NewServer creates a new game server
func NewServer(m *manager.Manager, logger zerolog.Logger) *Server {
	return &Server{
		manager: m,
		logger:  logger.With().Str("component", "GameServer").Logger(),
	}
}

// CreateGame starts a new game
func (s *Server) CreateGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CreateGameRequest
	if err := s.decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	id, res, err := s.manager.CreateGame(ctx, req.UserID, req.Players, req.InstantFill)
	if err != nil {
		return nil, toStatus(s.logger, "CreateGame", err)
	}

	s.logger.Info().
		Stringer("game_id", id).
		Str("user_id", req.UserID).
		Strs("players", req.Players).
		Msg("Game created")
	return s.encode(&CreateGameResponse{GameID: int64(id), Result: res})
}

// SubmitCommand runs a command in the caller's current game
func (s *Server) SubmitCommand(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SubmitCommandRequest
	if err := s.decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}
	if req.Command == nil {
		return nil, status.Error(codes.InvalidArgument, "command is required")
	}

	id, res, err := s.manager.Execute(ctx, req.UserID, req.Command, req.IdempotencyKey)
	if err != nil {
		return nil, toStatus(s.logger, "SubmitCommand", err)
	}
	return s.encode(&SubmitCommandResponse{GameID: int64(id), Result: res})
}

// GetGameState returns the public view of a game
func (s *Server) GetGameState(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GetGameStateRequest
	if err := s.decode(in, &req); err != nil {
		return nil, err
	}

	id := store.GameID(req.GameID)
	if id == 0 {
		if err := requireUser(req.UserID); err != nil {
			return nil, status.Error(codes.InvalidArgument, "game_id or user_id is required")
		}
		current, ok, err := s.manager.CurrentGame(ctx, req.UserID)
		if err != nil {
			return nil, toStatus(s.logger, "GetGameState", err)
		}
		if !ok {
			return nil, status.Errorf(codes.NotFound, "%s is not in a game", req.UserID)
		}
		id = current
	}

	gs, err := s.manager.Snapshot(ctx, id)
	if err != nil {
		return nil, toStatus(s.logger, "GetGameState", err)
	}
	return s.encode(&GetGameStateResponse{GameID: int64(id), State: gs.View()})
}

// GetHand lists the caller's cards
func (s *Server) GetHand(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GetHandRequest
	if err := s.decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	id, cards, err := s.manager.Hand(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(s.logger, "GetHand", err)
	}
	return s.encode(&GetHandResponse{GameID: int64(id), Cards: cards})
}

func (s *Server) decode(in *structpb.Struct, v interface{}) error {
	if err := fromStruct(in, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func (s *Server) encode(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return status.Error(codes.InvalidArgument, "user_id is required")
	}
	return nil
}
