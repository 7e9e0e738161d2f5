package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the game service with typed messages
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp interface{}, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

func (c *Client) CreateGame(ctx context.Context, req *CreateGameRequest, opts ...grpc.CallOption) (*CreateGameResponse, error) {
	resp := new(CreateGameResponse)
	if err := c.invoke(ctx, GameService_CreateGame_FullMethodName, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SubmitCommand(ctx context.Context, req *SubmitCommandRequest, opts ...grpc.CallOption) (*SubmitCommandResponse, error) {
	resp := new(SubmitCommandResponse)
	if err := c.invoke(ctx, GameService_SubmitCommand_FullMethodName, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetGameState(ctx context.Context, req *GetGameStateRequest, opts ...grpc.CallOption) (*GetGameStateResponse, error) {
	resp := new(GetGameStateResponse)
	if err := c.invoke(ctx, GameService_GetGameState_FullMethodName, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetHand(ctx context.Context, req *GetHandRequest, opts ...grpc.CallOption) (*GetHandResponse, error) {
	resp := new(GetHandResponse)
	if err := c.invoke(ctx, GameService_GetHand_FullMethodName, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}
