package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "notekeeper.RemoteStore"

const (
	MethodRegister = "/" + ServiceName + "/Register"
	MethodGetSalt  = "/" + ServiceName + "/GetSalt"
	MethodLogin    = "/" + ServiceName + "/Login"
	MethodPing     = "/" + ServiceName + "/Ping"
	MethodList     = "/" + ServiceName + "/List"
	MethodInsert   = "/" + ServiceName + "/Insert"
	MethodUpdate   = "/" + ServiceName + "/Update"
	MethodDelete   = "/" + ServiceName + "/Delete"
)

// PublicMethods need no access token.
var PublicMethods = map[string]bool{
	MethodRegister: true,
	MethodGetSalt:  true,
	MethodLogin:    true,
	MethodPing:     true,
}

type RemoteStoreServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	Insert(context.Context, *InsertRequest) (*InsertResponse, error)
	Update(context.Context, *UpdateRequest) (*UpdateResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
}

// UnimplementedRemoteStoreServer answers every method with codes.Unimplemented.
type UnimplementedRemoteStoreServer struct{}

func (UnimplementedRemoteStoreServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedRemoteStoreServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedRemoteStoreServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedRemoteStoreServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedRemoteStoreServer) List(context.Context, *ListRequest) (*ListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedRemoteStoreServer) Insert(context.Context, *InsertRequest) (*InsertResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Insert not implemented")
}
func (UnimplementedRemoteStoreServer) Update(context.Context, *UpdateRequest) (*UpdateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}
func (UnimplementedRemoteStoreServer) Delete(context.Context, *DeleteRequest) (*DeleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

func RegisterRemoteStoreServer(s grpc.ServiceRegistrar, srv RemoteStoreServer) {
	s.RegisterService(&RemoteStoreServiceDesc, srv)
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](fullMethod string, call func(RemoteStoreServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RemoteStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RemoteStoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RemoteStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemoteStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, RemoteStoreServer.Register)},
		{MethodName: "GetSalt", Handler: unary(MethodGetSalt, RemoteStoreServer.GetSalt)},
		{MethodName: "Login", Handler: unary(MethodLogin, RemoteStoreServer.Login)},
		{MethodName: "Ping", Handler: unary(MethodPing, RemoteStoreServer.Ping)},
		{MethodName: "List", Handler: unary(MethodList, RemoteStoreServer.List)},
		{MethodName: "Insert", Handler: unary(MethodInsert, RemoteStoreServer.Insert)},
		{MethodName: "Update", Handler: unary(MethodUpdate, RemoteStoreServer.Update)},
		{MethodName: "Delete", Handler: unary(MethodDelete, RemoteStoreServer.Delete)},
	},
	Streams: []grpc.StreamDesc{},
}

type RemoteStoreClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Insert(ctx context.Context, in *InsertRequest, opts ...grpc.CallOption) (*InsertResponse, error)
	Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
}

type remoteStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewRemoteStoreClient(cc grpc.ClientConnInterface) RemoteStoreClient {
	return &remoteStoreClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append(CallOptions(), opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *remoteStoreClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *remoteStoreClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *remoteStoreClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *remoteStoreClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *remoteStoreClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, MethodList, in, opts)
}

func (c *remoteStoreClient) Insert(ctx context.Context, in *InsertRequest, opts ...grpc.CallOption) (*InsertResponse, error) {
	return invoke[InsertResponse](ctx, c.cc, MethodInsert, in, opts)
}

func (c *remoteStoreClient) Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error) {
	return invoke[UpdateResponse](ctx, c.cc, MethodUpdate, in, opts)
}

func (c *remoteStoreClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	return invoke[DeleteResponse](ctx, c.cc, MethodDelete, in, opts)
}
