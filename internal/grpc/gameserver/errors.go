package gameserver

import (
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/store"
)

// ruleCodes maps rule violations onto status codes. Violations not listed are
// FailedPrecondition: the request was well formed but the game forbids it now.
var ruleCodes = []struct {
	err  error
	code codes.Code
}{
	{core.ErrNotInGame, codes.NotFound},
	{core.ErrUnknownTerritory, codes.NotFound},
	{core.ErrAlreadyInGame, codes.AlreadyExists},
	{core.ErrInvalidCommand, codes.InvalidArgument},
	{core.ErrInvalidTroopCount, codes.InvalidArgument},
	{core.ErrInvalidPlayerCount, codes.InvalidArgument},
	{core.ErrDuplicatePlayer, codes.InvalidArgument},
	{core.ErrCardIndexOutOfRange, codes.InvalidArgument},
}

// toStatus converts an error from the manager into a gRPC status error.
// Infrastructure failures are logged and hidden behind a generic message.
func toStatus(logger zerolog.Logger, method string, err error) error {
	if err == nil {
		return nil
	}
	if core.IsRuleViolation(err) {
		code := codes.FailedPrecondition
		for _, rc := range ruleCodes {
			if errors.Is(err, rc.err) {
				code = rc.code
				break
			}
		}
		logger.Warn().Str("method", method).Str("code", code.String()).Err(err).Msg("Request rejected")
		return status.Error(code, core.Message(err))
	}
	if errors.Is(err, store.ErrGameNotFound) {
		return status.Error(codes.NotFound, "game not found")
	}
	logger.Error().Str("method", method).Err(err).Msg("Request failed")
	return status.Error(codes.Internal, "internal error")
}
