// Package promote is the bearer-token gate in front of the permanent lifecycle.
package promote

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
	"github.com/and161185/bliss-auth/internal/token"
)

// Lifecycle is the subset of service.PermanentManager used by the gate.
type Lifecycle interface {
	Promote(ctx context.Context, cl *model.Claims) (model.Result, error)
	CompleteProfile(ctx context.Context, cl *model.Claims, in service.ProfileInput) (model.Result, error)
	Rotate(ctx context.Context, cl *model.Claims) (model.Result, error)
}

// Verifier checks a raw token against an expected class.
type Verifier interface {
	Verify(raw string, want model.Class) (*model.Claims, error)
}

// Gate verifies bearer tokens before handing their claims to the lifecycle.
type Gate struct {
	verifier  Verifier
	lifecycle Lifecycle
	log       *zap.Logger
}

var _ Verifier = (*token.Codec)(nil)

// New constructs a Gate.
func New(v Verifier, l Lifecycle, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{verifier: v, lifecycle: l, log: log}
}

// Promote converts a transient bearer token into a permanent one. A token
// that is already PERMANENT is refused as WRONG_CLASS.
func (g *Gate) Promote(ctx context.Context, bearer string) (model.Result, error) {
	cl, rej := g.verify(bearer, model.ClassTransient)
	if rej != nil {
		return *rej, nil
	}
	return g.lifecycle.Promote(ctx, cl)
}

// CompleteProfile records the durable profile of a transient bearer.
func (g *Gate) CompleteProfile(ctx context.Context, bearer string, in service.ProfileInput) (model.Result, error) {
	cl, rej := g.verify(bearer, model.ClassTransient)
	if rej != nil {
		return *rej, nil
	}
	return g.lifecycle.CompleteProfile(ctx, cl, in)
}

// Rotate re-mints a permanent bearer token.
func (g *Gate) Rotate(ctx context.Context, bearer string) (model.Result, error) {
	cl, rej := g.verify(bearer, model.ClassPermanent)
	if rej != nil {
		return *rej, nil
	}
	return g.lifecycle.Rotate(ctx, cl)
}

func (g *Gate) verify(bearer string, want model.Class) (*model.Claims, *model.Result) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		r := model.Rejected(model.OutcomeUnauthenticated)
		return nil, &r
	}
	cl, err := g.verifier.Verify(bearer, want)
	if err != nil {
		f := token.FaultOf(err)
		if f == model.FaultNone {
			f = model.FaultMalformed
		}
		g.log.Info("token rejected", zap.String("fault", string(f)), zap.String("want", string(want)))
		r := model.InvalidToken(f)
		return nil, &r
	}
	return cl, nil
}
