package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

type ctxKey string

const bearerKey ctxKey = "bliss.bearer"

// WithBearer stores the presented bearer token in context.
func WithBearer(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, bearerKey, tok)
}

// BearerFromCtx fetches the bearer token stored by BearerUnary.
func BearerFromCtx(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(bearerKey).(string)
	return tok, ok && tok != ""
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
