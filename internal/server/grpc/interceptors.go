package grpcserver

import (
	"context"
	"net"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/bliss-auth/internal/api/authv1"
	"github.com/and161185/bliss-auth/internal/limiter"
)

// LoggingUnary logs one line per call, including the outcome code of AuthResponse results.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		// metadata only, never payloads
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remoteAddr(ctx)),
		}
		if r, ok := resp.(*authv1.AuthResponse); ok && r != nil {
			fields = append(fields, zap.String("status", r.Status), zap.String("outcome", r.Code))
		}
		log.Info("grpc", fields...)
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// BearerUnary copies the "authorization: Bearer <token>" metadata into the
// request context. A missing header is not an error here; handlers decide.
func BearerUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if tok, err := bearerTokenFromMD(ctx); err == nil {
			ctx = WithBearer(ctx, tok)
		}
		return next(ctx, req)
	}
}

// ThrottleUnary applies lim per peer host to the listed full method names.
func ThrottleUnary(lim limiter.Limiter, log *zap.Logger, methods ...string) grpc.UnaryServerInterceptor {
	guarded := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		guarded[m] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if _, ok := guarded[info.FullMethod]; !ok {
			return next(ctx, req)
		}
		ok, retry, err := lim.Allow(ctx, limiter.HashIP(remoteHost(ctx)))
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			return nil, status.Error(codes.Unavailable, "rate limiter unavailable")
		}
		if !ok {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limited, retry in %s", retry.Round(time.Second))
		}
		return next(ctx, req)
	}
}

func remoteAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// remoteHost drops the ephemeral client port so one host shares one window.
func remoteHost(ctx context.Context) string {
	addr := remoteAddr(ctx)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
