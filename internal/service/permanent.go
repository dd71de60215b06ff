package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/identity"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/repository"
	"github.com/and161185/bliss-auth/internal/token"
)

// ProfileInput is the client-supplied part of a durable profile.
type ProfileInput struct {
	Category      string
	DateOfBirth   time.Time
	ContactNumber *int64
	OriginCountry string
	Bio           string
}

// Validate checks the required profile fields.
func (p ProfileInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Category, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.DateOfBirth, validation.Required),
		validation.Field(&p.OriginCountry, validation.Required, validation.Length(2, 64)),
		validation.Field(&p.Bio, validation.Length(0, 1024)),
	)
}

// PermanentManager drives the TRANSIENT -> PERMANENT transition.
type PermanentManager struct {
	ids       *identity.Deriver
	codec     *token.Codec
	durable   repository.DurableStore
	transient *TransientManager
	opts      Options
}

// NewPermanentManager constructs a PermanentManager. The transient manager
// supplies the live registration record read during promotion.
func NewPermanentManager(ids *identity.Deriver, codec *token.Codec, durable repository.DurableStore, transient *TransientManager, opts Options) *PermanentManager {
	return &PermanentManager{ids: ids, codec: codec, durable: durable, transient: transient, opts: opts.withDefaults()}
}

// IsPermanent reports whether email belongs to a registered account.
func (m *PermanentManager) IsPermanent(ctx context.Context, email string) (bool, error) {
	id, err := m.ids.Derive(email)
	if err != nil {
		return false, err
	}
	return permanentExists(ctx, m.opts, m.durable, id)
}

// Promote exchanges verified transient claims for a permanent token.
// Without a durable profile it returns PROFILE_INCOMPLETE and writes nothing.
func (m *PermanentManager) Promote(ctx context.Context, cl *model.Claims) (model.Result, error) {
	if cl == nil || cl.Class != model.ClassTransient {
		return model.InvalidToken(model.FaultWrongClass), nil
	}
	id := cl.AccountID
	log := m.opts.Logger.With(zap.String("client_id", string(id)))

	sctx, cancel := m.opts.storeCtx(ctx)
	_, err := m.durable.FindProfileByIdentity(sctx, id)
	cancel()
	switch {
	case errors.Is(err, errs.ErrNotFound):
		log.Info("promotion rejected", zap.String("outcome", string(model.OutcomeProfileIncomplete)))
		return model.Rejected(model.OutcomeProfileIncomplete), nil
	case err != nil:
		return model.Result{}, err
	}

	now := m.opts.Now()
	cred, err := m.ensureCredential(ctx, id, now)
	if err != nil {
		return model.Result{}, err
	}
	if cred == nil {
		log.Info("promotion rejected", zap.String("reason", "transient record expired"))
		return model.InvalidToken(model.FaultExpired), nil
	}

	is, err := m.codec.Issue(id, model.ClassPermanent, now)
	if err != nil {
		return model.Result{}, err
	}
	log.Info("permanent token issued")
	res := model.Issued(is)
	res.Email, res.Name = cred.Email, cred.Name
	return res, nil
}

// ensureCredential returns the credential row of id, creating it from the live
// transient record when missing. It returns nil when neither exists.
func (m *PermanentManager) ensureCredential(ctx context.Context, id model.AccountID, now time.Time) (*model.PermanentCredential, error) {
	sctx, cancel := m.opts.storeCtx(ctx)
	cred, err := m.durable.FindCredentialByIdentity(sctx, id)
	cancel()
	switch {
	case err == nil:
		return cred, nil
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	rec, err := m.transient.Lookup(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	cred = &model.PermanentCredential{
		AccountID:      id,
		Email:          rec.Email,
		Name:           rec.DisplayName,
		Password:       rec.Credential.PasswordHash,
		Provider:       rec.Credential.Provider,
		LastRevokeTime: now,
	}
	sctx, cancel = m.opts.storeCtx(ctx)
	defer cancel()
	if err := m.durable.CreateCredential(sctx, cred); err != nil && !errors.Is(err, errs.ErrAlreadyExists) {
		return nil, err
	}
	return cred, nil
}

// CompleteProfile writes the durable profile for a registration in progress.
func (m *PermanentManager) CompleteProfile(ctx context.Context, cl *model.Claims, in ProfileInput) (model.Result, error) {
	if cl == nil || cl.Class != model.ClassTransient {
		return model.InvalidToken(model.FaultWrongClass), nil
	}
	if err := in.Validate(); err != nil {
		m.opts.Logger.Debug("profile rejected", zap.Error(err))
		return model.Rejected(model.OutcomeInvalidInput), nil
	}
	id := cl.AccountID

	sctx, cancel := m.opts.storeCtx(ctx)
	defer cancel()
	_, err := m.durable.FindProfileByIdentity(sctx, id)
	switch {
	case err == nil:
		return model.Rejected(model.OutcomeAlreadyPermanent), nil
	case !errors.Is(err, errs.ErrNotFound):
		return model.Result{}, err
	}

	now := m.opts.Now()
	p := &model.Profile{
		AccountID:     id,
		Category:      in.Category,
		DateOfBirth:   in.DateOfBirth,
		ContactNumber: in.ContactNumber,
		OriginCountry: in.OriginCountry,
		Bio:           in.Bio,
		ImageLink:     string(id) + ".png",
		JoinedAt:      now,
		UpdatedAt:     now,
	}
	if err := m.durable.CreateProfile(sctx, p); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.Rejected(model.OutcomeAlreadyPermanent), nil
		}
		return model.Result{}, err
	}
	m.opts.Logger.Info("profile created", zap.String("client_id", string(id)))
	return model.Result{Outcome: model.OutcomeProfileCreated, Profile: p}, nil
}

// Rotate re-mints a permanent token with a fresh revocation time.
func (m *PermanentManager) Rotate(ctx context.Context, cl *model.Claims) (model.Result, error) {
	if cl == nil || cl.Class != model.ClassPermanent {
		return model.InvalidToken(model.FaultWrongClass), nil
	}
	sctx, cancel := m.opts.storeCtx(ctx)
	cred, err := m.durable.FindCredentialByIdentity(sctx, cl.AccountID)
	cancel()
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return model.Rejected(model.OutcomeNotFound), nil
	case err != nil:
		return model.Result{}, err
	}

	is, err := m.codec.Issue(cl.AccountID, model.ClassPermanent, m.opts.Now())
	if err != nil {
		return model.Result{}, err
	}
	m.opts.Logger.Info("permanent token rotated", zap.String("client_id", string(cl.AccountID)))
	res := model.Issued(is)
	res.Email, res.Name = cred.Email, cred.Name
	return res, nil
}
