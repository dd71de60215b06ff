// Package service implements the transient and permanent account lifecycles.
//
// Managers hold no mutable state of their own. Everything lives in the
// ephemeral and durable stores, and every store call runs under the caller's
// context bounded by Options.StoreTimeout.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/repository"
)

// DefaultTransientTTL bounds how long a started registration stays live.
const DefaultTransientTTL = 24 * time.Hour

// Options carries the tunables shared by both managers.
type Options struct {
	TransientTTL time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.TransientTTL <= 0 {
		o.TransientTTL = DefaultTransientTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// storeCtx derives the context for a single store round trip.
func (o Options) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.StoreTimeout)
}

// permanentExists reports whether the durable store holds a credential or a
// profile for id. Store failures are returned, never read as absence.
func permanentExists(ctx context.Context, o Options, durable repository.DurableStore, id model.AccountID) (bool, error) {
	sctx, cancel := o.storeCtx(ctx)
	defer cancel()

	_, err := durable.FindCredentialByIdentity(sctx, id)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, errs.ErrNotFound):
		return false, err
	}
	_, err = durable.FindProfileByIdentity(sctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errs.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
