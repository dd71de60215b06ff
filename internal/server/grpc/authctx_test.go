package grpcserver

import (
	"context"
	"testing"

	"google.golang.org/grpc/metadata"
)

func TestWithBearer_And_BearerFromCtx(t *testing.T) {
	t.Parallel()

	if tok, ok := BearerFromCtx(context.Background()); ok || tok != "" {
		t.Fatalf("expected no bearer in empty ctx")
	}

	ctx := WithBearer(context.Background(), "abc")
	got, ok := BearerFromCtx(ctx)
	if !ok || got != "abc" {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	if _, ok := BearerFromCtx(WithBearer(context.Background(), "")); ok {
		t.Fatalf("empty bearer must not count as present")
	}

	type otherKey string
	bad := context.WithValue(context.Background(), otherKey("bliss.bearer"), "x")
	if _, ok := BearerFromCtx(bad); ok {
		t.Fatalf("expected miss on foreign key type")
	}
}

func Test_bearerTokenFromMD_OkAndErrors(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer xyz"))
	if got, _ := bearerTokenFromMD(ctx); got != "xyz" {
		t.Fatalf("scheme is case-insensitive, got %q", got)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on empty token")
	}

	if _, err := bearerTokenFromMD(context.Background()); err == nil {
		t.Fatalf("want error on no metadata")
	}
}
