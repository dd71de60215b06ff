package promote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
	"github.com/and161185/bliss-auth/internal/token/tokentest"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeLifecycle struct {
	profile bool
	calls   int
	got     *model.Claims
}

func (f *fakeLifecycle) Promote(_ context.Context, cl *model.Claims) (model.Result, error) {
	f.calls++
	f.got = cl
	if !f.profile {
		return model.Rejected(model.OutcomeProfileIncomplete), nil
	}
	return model.Issued(model.Issuance{AccountID: cl.AccountID, Class: model.ClassPermanent, Token: "perm"}), nil
}

func (f *fakeLifecycle) CompleteProfile(_ context.Context, cl *model.Claims, _ service.ProfileInput) (model.Result, error) {
	f.calls++
	f.got = cl
	return model.Result{Outcome: model.OutcomeProfileCreated}, nil
}

func (f *fakeLifecycle) Rotate(_ context.Context, cl *model.Claims) (model.Result, error) {
	f.calls++
	f.got = cl
	return model.Issued(model.Issuance{Token: "rotated"}), nil
}

func TestGate_Promote_Outcomes(t *testing.T) {
	clock := tokentest.NewClock(t0)
	codec := tokentest.Codec(t, tokentest.Key(t), clock)
	life := &fakeLifecycle{}
	g := New(codec, life, zaptest.NewLogger(t))
	ctx := context.Background()

	tr, err := codec.Issue("acc", model.ClassTransient, t0)
	require.NoError(t, err)
	pm, err := codec.Issue("acc", model.ClassPermanent, t0)
	require.NoError(t, err)

	res, err := g.Promote(ctx, "")
	require.NoError(t, err)
	require.Equal(t, model.OutcomeUnauthenticated, res.Outcome)

	res, _ = g.Promote(ctx, "garbage")
	require.Equal(t, model.OutcomeInvalidToken, res.Outcome)
	require.Equal(t, model.FaultMalformed, res.Fault)

	res, _ = g.Promote(ctx, pm.Token)
	require.Equal(t, model.OutcomeInvalidToken, res.Outcome)
	require.Equal(t, model.FaultWrongClass, res.Fault, "no double promotion")
	require.Zero(t, life.calls)

	res, _ = g.Promote(ctx, tr.Token)
	require.Equal(t, model.OutcomeProfileIncomplete, res.Outcome)
	require.Equal(t, model.AccountID("acc"), life.got.AccountID)

	life.profile = true
	res, _ = g.Promote(ctx, " "+tr.Token+" ")
	require.Equal(t, model.OutcomeIssued, res.Outcome)
	require.Equal(t, "perm", res.Issuance.Token)

	clock.Advance(25 * time.Hour)
	res, _ = g.Promote(ctx, tr.Token)
	require.Equal(t, model.OutcomeInvalidToken, res.Outcome)
	require.Equal(t, model.FaultExpired, res.Fault)
}

func TestGate_ProfileAndRotateClasses(t *testing.T) {
	codec := tokentest.Codec(t, tokentest.Key(t), tokentest.NewClock(t0))
	life := &fakeLifecycle{}
	g := New(codec, life, nil)
	ctx := context.Background()

	tr, _ := codec.Issue("acc", model.ClassTransient, t0)
	pm, _ := codec.Issue("acc", model.ClassPermanent, t0)

	res, _ := g.CompleteProfile(ctx, tr.Token, service.ProfileInput{})
	require.Equal(t, model.OutcomeProfileCreated, res.Outcome)
	res, _ = g.CompleteProfile(ctx, pm.Token, service.ProfileInput{})
	require.Equal(t, model.FaultWrongClass, res.Fault)

	res, _ = g.Rotate(ctx, pm.Token)
	require.Equal(t, "rotated", res.Issuance.Token)
	res, _ = g.Rotate(ctx, tr.Token)
	require.Equal(t, model.FaultWrongClass, res.Fault)
	res, _ = g.Rotate(ctx, "")
	require.Equal(t, model.OutcomeUnauthenticated, res.Outcome)
}
