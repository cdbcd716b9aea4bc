package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.RemoteStoreClient
	token       TokenSource
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.token != nil && !rpc.PublicMethods[method] {
		if token := s.token(); token != "" {
			ctx = withAccessToken(ctx, token)
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily. token is consulted on every
// authenticated call.
func NewGRPCClient(endpointURL string, token TokenSource) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, token: token}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewRemoteStoreClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, key []byte) error {
	req := &rpc.RegisterRequest{Username: userName, Salt: salt, Verifier: key}
	if _, err := s.client.Register(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &rpc.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, key []byte) (string, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: userName, VerifierCandidate: key})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.AccessToken, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) List(ctx context.Context, kind models.Kind, ownerID string) ([]json.RawMessage, error) {
	resp, err := s.client.List(ctx, &rpc.ListRequest{Kind: string(kind), OwnerID: ownerID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Records, nil
}

func (s *GRPCClient) Insert(ctx context.Context, kind models.Kind, ownerID string, record json.RawMessage) (json.RawMessage, error) {
	resp, err := s.client.Insert(ctx, &rpc.InsertRequest{Kind: string(kind), OwnerID: ownerID, Record: record})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Record, nil
}

func (s *GRPCClient) Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error {
	_, err := s.client.Update(ctx, &rpc.UpdateRequest{Kind: string(kind), OwnerID: ownerID, ID: id, Patch: patch})
	return s.mapError(err)
}

func (s *GRPCClient) Delete(ctx context.Context, kind models.Kind, ownerID, id string) error {
	_, err := s.client.Delete(ctx, &rpc.DeleteRequest{Kind: string(kind), OwnerID: ownerID, ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
