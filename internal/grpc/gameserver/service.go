package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "conquest.v1.GameService"

// Full method names
const (
	GameService_CreateGame_FullMethodName    = "/" + ServiceName + "/CreateGame"
	GameService_SubmitCommand_FullMethodName = "/" + ServiceName + "/SubmitCommand"
	GameService_GetGameState_FullMethodName  = "/" + ServiceName + "/GetGameState"
	GameService_GetHand_FullMethodName       = "/" + ServiceName + "/GetHand"
)

// GameServiceServer is the server API for the game service. Requests and
// responses travel as google.protobuf.Struct documents whose shapes are the
// message types in messages.go.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitCommand(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGameState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHand(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GameService_ServiceDesc is the grpc.ServiceDesc for the game service
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateGame",
			Handler:    unaryHandler(GameService_CreateGame_FullMethodName, GameServiceServer.CreateGame),
		},
		{
			MethodName: "SubmitCommand",
			Handler:    unaryHandler(GameService_SubmitCommand_FullMethodName, GameServiceServer.SubmitCommand),
		},
		{
			MethodName: "GetGameState",
			Handler:    unaryHandler(GameService_GetGameState_FullMethodName, GameServiceServer.GetGameState),
		},
		{
			MethodName: "GetHand",
			Handler:    unaryHandler(GameService_GetHand_FullMethodName, GameServiceServer.GetHand),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "conquest/v1/game.proto",
}

// RegisterGameServiceServer registers srv with s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}
