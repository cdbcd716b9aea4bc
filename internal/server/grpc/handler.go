package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/models"
	"github.com/dmitrijs2005/notekeeper/internal/rpc"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	u, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "Registered", "username", u.UserName, "user_id", u.ID)
	return &rpc.RegisterResponse{}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *rpc.GetSaltRequest) (*rpc.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	token, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.LoginResponse{AccessToken: token}, nil
}

func (s *GRPCServer) Ping(context.Context, *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) List(ctx context.Context, req *rpc.ListRequest) (*rpc.ListResponse, error) {
	kind, owner, err := s.scope(ctx, req.Kind, req.OwnerID)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.List(ctx, kind, owner)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ListResponse{Records: recs}, nil
}

func (s *GRPCServer) Insert(ctx context.Context, req *rpc.InsertRequest) (*rpc.InsertResponse, error) {
	kind, owner, err := s.scope(ctx, req.Kind, req.OwnerID)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Insert(ctx, kind, owner, req.Record)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.InsertResponse{Record: rec}, nil
}

func (s *GRPCServer) Update(ctx context.Context, req *rpc.UpdateRequest) (*rpc.UpdateResponse, error) {
	kind, owner, err := s.scope(ctx, req.Kind, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, kind, owner, req.ID, req.Patch); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.UpdateResponse{}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *rpc.DeleteRequest) (*rpc.DeleteResponse, error) {
	kind, owner, err := s.scope(ctx, req.Kind, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.records.Delete(ctx, kind, owner, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.DeleteResponse{}, nil
}

// scope resolves the kind and owner of a record request. The owner must be
// the authenticated user; an empty owner means the authenticated user.
func (s *GRPCServer) scope(ctx context.Context, kind, ownerID string) (models.Kind, string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	k := models.Kind(kind)
	if !k.Valid() {
		return "", "", status.Errorf(codes.InvalidArgument, "unknown kind %q", kind)
	}
	if ownerID != "" && ownerID != userID {
		return "", "", status.Error(codes.PermissionDenied, "owner mismatch")
	}
	return k, userID, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorValidation), errors.Is(err, models.ErrUnknownKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, users.ErrUserExists):
		return status.Error(codes.AlreadyExists, users.ErrUserExists.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
