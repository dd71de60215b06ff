// Package grpcserver exposes the client authentication lifecycle over gRPC.
package grpcserver

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/bliss-auth/internal/acquire"
	"github.com/and161185/bliss-auth/internal/api/authv1"
	"github.com/and161185/bliss-auth/internal/convert"
	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
)

// Acquirer starts provisional registrations (acquire.Acquirer).
type Acquirer interface {
	Acquire(ctx context.Context, proof acquire.Proof) (model.Result, error)
}

// Reissuer refreshes transient tokens (service.TransientManager).
type Reissuer interface {
	Reissue(ctx context.Context, email string) (model.Result, error)
}

// Gate handles bearer-authenticated transitions (promote.Gate).
type Gate interface {
	Promote(ctx context.Context, bearer string) (model.Result, error)
	CompleteProfile(ctx context.Context, bearer string, in service.ProfileInput) (model.Result, error)
	Rotate(ctx context.Context, bearer string) (model.Result, error)
}

// Server wires the lifecycle into gRPC handlers.
type Server struct {
	acq  Acquirer
	tr   Reissuer
	gate Gate
	log  *zap.Logger
}

var _ authv1.ClientAuthServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(acq Acquirer, tr Reissuer, gate Gate, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{acq: acq, tr: tr, gate: gate, log: log}
}

// RegisterBasic starts a password registration.
func (s *Server) RegisterBasic(ctx context.Context, req *authv1.RegisterBasicRequest) (*authv1.AuthResponse, error) {
	res, err := s.acq.Acquire(ctx, acquire.PasswordProof{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	return s.respond("register basic", res, err)
}

// OAuthCallback completes an OAuth registration.
func (s *Server) OAuthCallback(ctx context.Context, req *authv1.OAuthCallbackRequest) (*authv1.AuthResponse, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "empty authorization code")
	}
	res, err := s.acq.Acquire(ctx, acquire.OAuthProof{Provider: req.Provider, Code: req.Code})
	return s.respond("oauth callback", res, err)
}

// ReissueTransient refreshes the transient token of a live registration.
func (s *Server) ReissueTransient(ctx context.Context, req *authv1.ReissueTransientRequest) (*authv1.AuthResponse, error) {
	res, err := s.tr.Reissue(ctx, req.Email)
	return s.respond("reissue", res, err)
}

// CompleteProfile stores the durable profile of a transient bearer.
func (s *Server) CompleteProfile(ctx context.Context, req *authv1.CompleteProfileRequest) (*authv1.AuthResponse, error) {
	in, err := convert.FromProfileRequest(req)
	if err != nil {
		return convert.ToResponse(model.Rejected(model.OutcomeInvalidInput)), nil
	}
	bearer, _ := BearerFromCtx(ctx)
	res, err := s.gate.CompleteProfile(ctx, bearer, in)
	return s.respond("complete profile", res, err)
}

// Promote exchanges a transient bearer for a permanent token.
func (s *Server) Promote(ctx context.Context, _ *authv1.PromoteRequest) (*authv1.AuthResponse, error) {
	bearer, _ := BearerFromCtx(ctx)
	res, err := s.gate.Promote(ctx, bearer)
	return s.respond("promote", res, err)
}

// Rotate re-mints a permanent bearer.
func (s *Server) Rotate(ctx context.Context, _ *authv1.RotateRequest) (*authv1.AuthResponse, error) {
	bearer, _ := BearerFromCtx(ctx)
	res, err := s.gate.Rotate(ctx, bearer)
	return s.respond("rotate", res, err)
}

// respond renders business outcomes as OK responses and infra failures as
// gRPC status errors.
func (s *Server) respond(op string, res model.Result, err error) (*authv1.AuthResponse, error) {
	if err == nil {
		return convert.ToResponse(res), nil
	}
	switch {
	case errors.Is(err, errs.ErrStoreUnavailable):
		s.log.Warn(op+": store unavailable", zap.Error(err))
		return nil, status.Error(codes.Unavailable, "store unavailable, retry later")
	case errors.Is(err, errs.ErrRateLimited):
		return nil, status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, errs.ErrInvalidInput):
		return nil, status.Error(codes.InvalidArgument, "invalid input")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, status.FromContextError(err).Err()
	default:
		s.log.Error(op+" failed", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s: internal error", op)
	}
}
