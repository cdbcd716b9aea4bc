// Package grpc exposes the remote store over gRPC using the rpc service
// descriptor and its JSON codec.
package grpc

import (
	"context"
	"encoding/json"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	sm "github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type UserService interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*sm.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (string, error)
}

type RecordService interface {
	List(ctx context.Context, kind models.Kind, ownerID string) ([]json.RawMessage, error)
	Insert(ctx context.Context, kind models.Kind, ownerID string, record json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, kind models.Kind, ownerID, id string, patch json.RawMessage) error
	Delete(ctx context.Context, kind models.Kind, ownerID, id string) error
}

type GRPCServer struct {
	rpc.UnimplementedRemoteStoreServer
	address   string
	users     UserService
	records   RecordService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, rs RecordService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		records:   rs,
		jwtSecret: []byte(secretKey),
	}
}

// Serve handles connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterRemoteStoreServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}
