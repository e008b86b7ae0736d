package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mesto.Mesto"

// Full method names, as seen by interceptors.
const (
	MethodSignUp     = "/" + ServiceName + "/SignUp"
	MethodSignIn     = "/" + ServiceName + "/SignIn"
	MethodMe         = "/" + ServiceName + "/Me"
	MethodListCards  = "/" + ServiceName + "/ListCards"
	MethodCreateCard = "/" + ServiceName + "/CreateCard"
	MethodDeleteCard = "/" + ServiceName + "/DeleteCard"
	MethodLikeCard   = "/" + ServiceName + "/LikeCard"
	MethodUnlikeCard = "/" + ServiceName + "/UnlikeCard"
)

// ProtectedMethods require a bearer token in the "authorization" metadata.
var ProtectedMethods = []string{
	MethodMe,
	MethodListCards,
	MethodCreateCard,
	MethodDeleteCard,
	MethodLikeCard,
	MethodUnlikeCard,
}

// MestoServer is the server side of mesto.Mesto. Payloads are protobuf
// well-known types carrying the same JSON shapes as the HTTP API.
type MestoServer interface {
	SignUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error)
	Me(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	ListCards(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	CreateCard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeleteCard(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error)
	LikeCard(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	UnlikeCard(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

func unaryMethod(
	name string,
	newRequest func() interface{},
	call func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error),
) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv interface{},
			ctx context.Context,
			dec func(interface{}) error,
			interceptor grpc.UnaryServerInterceptor,
		) (interface{}, error) {
			in := newRequest()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MestoServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MestoServer), ctx, req)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

func newStruct() interface{}      { return new(structpb.Struct) }
func newEmpty() interface{}       { return new(emptypb.Empty) }
func newStringValue() interface{} { return new(wrapperspb.StringValue) }

// ServiceDesc describes mesto.Mesto for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MestoServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("SignUp", newStruct, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.SignUp(ctx, in.(*structpb.Struct))
		}),
		unaryMethod("SignIn", newStruct, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.SignIn(ctx, in.(*structpb.Struct))
		}),
		unaryMethod("Me", newEmpty, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.Me(ctx, in.(*emptypb.Empty))
		}),
		unaryMethod("ListCards", newEmpty, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.ListCards(ctx, in.(*emptypb.Empty))
		}),
		unaryMethod("CreateCard", newStruct, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.CreateCard(ctx, in.(*structpb.Struct))
		}),
		unaryMethod("DeleteCard", newStringValue, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.DeleteCard(ctx, in.(*wrapperspb.StringValue))
		}),
		unaryMethod("LikeCard", newStringValue, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.LikeCard(ctx, in.(*wrapperspb.StringValue))
		}),
		unaryMethod("UnlikeCard", newStringValue, func(srv MestoServer, ctx context.Context, in interface{}) (interface{}, error) {
			return srv.UnlikeCard(ctx, in.(*wrapperspb.StringValue))
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mesto.proto",
}

// RegisterMestoServer attaches srv to registrar.
func RegisterMestoServer(registrar grpc.ServiceRegistrar, srv MestoServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// MestoClient calls mesto.Mesto over an established connection.
type MestoClient struct {
	cc grpc.ClientConnInterface
}

func NewMestoClient(cc grpc.ClientConnInterface) *MestoClient {
	return &MestoClient{cc: cc}
}

func (c *MestoClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSignUp, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodSignIn, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) Me(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodMe, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) ListCards(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MethodListCards, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) CreateCard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodCreateCard, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) DeleteCard(ctx context.Context, cardID string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MethodDeleteCard, wrapperspb.String(cardID), new(emptypb.Empty), opts...)
}

func (c *MestoClient) LikeCard(ctx context.Context, cardID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodLikeCard, wrapperspb.String(cardID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MestoClient) UnlikeCard(ctx context.Context, cardID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodUnlikeCard, wrapperspb.String(cardID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
