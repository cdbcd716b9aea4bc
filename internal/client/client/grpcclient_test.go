package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
)

/*************
 * Fake rpc client
 *************/

type fakeRPC struct {
	// inputs captured
	lastRegisterReq *rpc.RegisterRequest
	lastGetSaltReq  *rpc.GetSaltRequest
	lastLoginReq    *rpc.LoginRequest
	lastListReq     *rpc.ListRequest
	lastInsertReq   *rpc.InsertRequest
	lastUpdateReq   *rpc.UpdateRequest
	lastDeleteReq   *rpc.DeleteRequest

	// outputs preset
	registerErr error

	getSaltResp *rpc.GetSaltResponse
	getSaltErr  error

	loginResp *rpc.LoginResponse
	loginErr  error

	pingResp *rpc.PingResponse
	pingErr  error

	listResp *rpc.ListResponse
	listErr  error

	insertResp *rpc.InsertResponse
	insertErr  error

	updateErr error
	deleteErr error
}

func (f *fakeRPC) Register(_ context.Context, in *rpc.RegisterRequest, _ ...grpc.CallOption) (*rpc.RegisterResponse, error) {
	f.lastRegisterReq = in
	return &rpc.RegisterResponse{}, f.registerErr
}
func (f *fakeRPC) GetSalt(_ context.Context, in *rpc.GetSaltRequest, _ ...grpc.CallOption) (*rpc.GetSaltResponse, error) {
	f.lastGetSaltReq = in
	return f.getSaltResp, f.getSaltErr
}
func (f *fakeRPC) Login(_ context.Context, in *rpc.LoginRequest, _ ...grpc.CallOption) (*rpc.LoginResponse, error) {
	f.lastLoginReq = in
	return f.loginResp, f.loginErr
}
func (f *fakeRPC) Ping(context.Context, *rpc.PingRequest, ...grpc.CallOption) (*rpc.PingResponse, error) {
	return f.pingResp, f.pingErr
}
func (f *fakeRPC) List(_ context.Context, in *rpc.ListRequest, _ ...grpc.CallOption) (*rpc.ListResponse, error) {
	f.lastListReq = in
	return f.listResp, f.listErr
}
func (f *fakeRPC) Insert(_ context.Context, in *rpc.InsertRequest, _ ...grpc.CallOption) (*rpc.InsertResponse, error) {
	f.lastInsertReq = in
	return f.insertResp, f.insertErr
}
func (f *fakeRPC) Update(_ context.Context, in *rpc.UpdateRequest, _ ...grpc.CallOption) (*rpc.UpdateResponse, error) {
	f.lastUpdateReq = in
	return &rpc.UpdateResponse{}, f.updateErr
}
func (f *fakeRPC) Delete(_ context.Context, in *rpc.DeleteRequest, _ ...grpc.CallOption) (*rpc.DeleteResponse, error) {
	f.lastDeleteReq = in
	return &rpc.DeleteResponse{}, f.deleteErr
}

/*************
 * accessTokenInterceptor tests
 *************/

func tokenOf(ctx context.Context) []string {
	md, _ := metadata.FromOutgoingContext(ctx)
	return md.Get(common.AccessTokenHeaderName)
}

func TestInterceptor_AttachesCurrentToken(t *testing.T) {
	token := "A1"
	c := &GRPCClient{token: func() string { return token }}

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		seen = tokenOf(ctx)
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), rpc.MethodList, nil, nil, nil, invoker))
	require.Equal(t, []string{"A1"}, seen)

	token = "A2"
	ctx := withAccessToken(context.Background(), "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, rpc.MethodInsert, nil, nil, nil, invoker))
	require.Equal(t, []string{"A2"}, seen)
}

func TestInterceptor_SkipsPublicAndEmpty(t *testing.T) {
	c := &GRPCClient{token: func() string { return "" }}

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		seen = tokenOf(ctx)
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), rpc.MethodList, nil, nil, nil, invoker))
	require.Empty(t, seen)

	c.token = func() string { return "A1" }
	require.NoError(t, c.accessTokenInterceptor(context.Background(), rpc.MethodLogin, nil, nil, nil, invoker))
	require.Empty(t, seen)
}

func TestInterceptor_PassesErrorThrough(t *testing.T) {
	c := &GRPCClient{}
	want := status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error { return want }

	err := c.accessTokenInterceptor(context.Background(), rpc.MethodList, nil, nil, nil, invoker)
	require.Equal(t, want, err)
}

/*************
 * RPC wrappers
 *************/

func TestAuthCalls(t *testing.T) {
	f := &fakeRPC{
		getSaltResp: &rpc.GetSaltResponse{Salt: []byte("salt")},
		loginResp:   &rpc.LoginResponse{AccessToken: "tok"},
		pingResp:    &rpc.PingResponse{Status: "OK"},
	}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "alice", []byte("s"), []byte("v")))
	require.Equal(t, "alice", f.lastRegisterReq.Username)
	require.Equal(t, []byte("v"), f.lastRegisterReq.Verifier)

	salt, err := c.GetSalt(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []byte("salt"), salt)

	token, err := c.Login(ctx, "alice", []byte("v"))
	require.NoError(t, err)
	require.Equal(t, "tok", token)
	require.Equal(t, []byte("v"), f.lastLoginReq.VerifierCandidate)

	require.NoError(t, c.Ping(ctx))
	f.pingResp = &rpc.PingResponse{Status: "DOWN"}
	require.ErrorIs(t, c.Ping(ctx), ErrUnavailable)
}

func TestRecordCalls(t *testing.T) {
	f := &fakeRPC{
		listResp:   &rpc.ListResponse{Records: []json.RawMessage{json.RawMessage(`{"id":"1"}`)}},
		insertResp: &rpc.InsertResponse{Record: json.RawMessage(`{"id":"2"}`)},
	}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	recs, err := c.List(ctx, models.KindNote, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, &rpc.ListRequest{Kind: "notes", OwnerID: "u1"}, f.lastListReq)

	rec, err := c.Insert(ctx, models.KindBook, "u1", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"2"}`, string(rec))
	require.Equal(t, "books", f.lastInsertReq.Kind)

	require.NoError(t, c.Update(ctx, models.KindMemory, "u1", "2", json.RawMessage(`{"title":"x"}`)))
	require.Equal(t, "2", f.lastUpdateReq.ID)

	require.NoError(t, c.Delete(ctx, models.KindMemory, "u1", "2"))
	require.Equal(t, "memory_items", f.lastDeleteReq.Kind)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.NoError(t, c.mapError(nil))
	require.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.PermissionDenied, "x")), ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x")), ErrUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x")), ErrUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "x")), common.ErrorNotFound)

	raw := status.Error(codes.Internal, "boom")
	err := c.mapError(raw)
	require.ErrorContains(t, err, "rpc error")
	require.True(t, errors.Is(err, raw))
}

func TestRecordCalls_MapErrors(t *testing.T) {
	f := &fakeRPC{
		listErr:   status.Error(codes.Unavailable, "down"),
		updateErr: status.Error(codes.NotFound, "gone"),
	}
	c := &GRPCClient{client: f}

	_, err := c.List(context.Background(), models.KindNote, "u1")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Update(context.Background(), models.KindNote, "u1", "x", nil), common.ErrorNotFound)
}

func TestNewGRPCClient_Close(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:1", nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
