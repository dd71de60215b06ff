package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/identity"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/repository"
	"github.com/and161185/bliss-auth/internal/token"
)

// Registration is the normalized profile handed over by an acquisition strategy.
type Registration struct {
	DisplayName string
	PhotoURL    string
	Credential  model.Credential
}

// TransientManager drives the UNREGISTERED -> TRANSIENT transition.
type TransientManager struct {
	ids     *identity.Deriver
	codec   *token.Codec
	eph     repository.EphemeralStore
	durable repository.DurableStore
	opts    Options
}

// NewTransientManager constructs a TransientManager.
func NewTransientManager(ids *identity.Deriver, codec *token.Codec, eph repository.EphemeralStore, durable repository.DurableStore, opts Options) *TransientManager {
	return &TransientManager{ids: ids, codec: codec, eph: eph, durable: durable, opts: opts.withDefaults()}
}

// RegisterProvisional starts a registration for email. The durable store is
// consulted first, then the ephemeral record is created with a conditional
// set so that of N concurrent calls exactly one is issued a token.
func (m *TransientManager) RegisterProvisional(ctx context.Context, email string, reg Registration) (model.Result, error) {
	id, err := m.ids.Derive(email)
	if err != nil {
		return invalidInput(err)
	}
	email, _ = identity.Normalize(email)
	log := m.opts.Logger.With(zap.String("client_id", string(id)))

	perm, err := permanentExists(ctx, m.opts, m.durable, id)
	if err != nil {
		return model.Result{}, err
	}
	if perm {
		log.Info("registration rejected", zap.String("outcome", string(model.OutcomeAlreadyPermanent)))
		return model.Rejected(model.OutcomeAlreadyPermanent), nil
	}

	now := m.opts.Now()
	rec := model.TransientRecord{
		AccountID:   id,
		Email:       email,
		DisplayName: reg.DisplayName,
		PhotoURL:    reg.PhotoURL,
		Credential:  reg.Credential,
		Status:      model.ClassTransient,
		RevokeTime:  now,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return model.Result{}, fmt.Errorf("encode transient record: %w", err)
	}

	sctx, cancel := m.opts.storeCtx(ctx)
	created, err := m.eph.CreateIfAbsent(sctx, string(id), raw, m.opts.TransientTTL)
	cancel()
	if err != nil {
		return model.Result{}, err
	}
	if !created {
		log.Info("registration rejected", zap.String("outcome", string(model.OutcomeAlreadyTransient)))
		return model.Rejected(model.OutcomeAlreadyTransient), nil
	}

	is, err := m.codec.IssueUntil(id, model.ClassTransient, now, now.Add(m.opts.TransientTTL))
	if err != nil {
		return model.Result{}, err
	}
	log.Info("transient token issued", zap.String("provider", reg.Credential.Provider))
	res := model.Issued(is)
	res.Email, res.Name, res.PhotoURL = email, reg.DisplayName, reg.PhotoURL
	return res, nil
}

// Reissue mints a fresh transient token for a live registration. The token
// keeps the record's original revocation time and expires with the record.
func (m *TransientManager) Reissue(ctx context.Context, email string) (model.Result, error) {
	id, err := m.ids.Derive(email)
	if err != nil {
		return invalidInput(err)
	}
	rec, err := m.Lookup(ctx, id)
	if err != nil {
		return model.Result{}, err
	}
	if rec == nil {
		return model.Rejected(model.OutcomeNotFound), nil
	}

	exp := rec.RevokeTime.Add(m.opts.TransientTTL)
	if !exp.After(m.opts.Now()) {
		return model.Rejected(model.OutcomeNotFound), nil
	}
	is, err := m.codec.IssueUntil(id, model.ClassTransient, rec.RevokeTime, exp)
	if err != nil {
		return model.Result{}, err
	}
	m.opts.Logger.Info("transient token reissued", zap.String("client_id", string(id)))
	res := model.Issued(is)
	res.Email, res.Name, res.PhotoURL = rec.Email, rec.DisplayName, rec.PhotoURL
	return res, nil
}

// Exists reports whether a live transient record exists for email.
func (m *TransientManager) Exists(ctx context.Context, email string) (bool, error) {
	id, err := m.ids.Derive(email)
	if err != nil {
		return false, err
	}
	rec, err := m.Lookup(ctx, id)
	return rec != nil, err
}

// Lookup loads the live transient record of id, or nil when there is none.
func (m *TransientManager) Lookup(ctx context.Context, id model.AccountID) (*model.TransientRecord, error) {
	sctx, cancel := m.opts.storeCtx(ctx)
	defer cancel()

	raw, err := m.eph.Get(sctx, string(id))
	if err != nil || raw == nil {
		return nil, err
	}
	var rec model.TransientRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode transient record: %w", errs.ErrStoreUnavailable, err)
	}
	return &rec, nil
}

func invalidInput(err error) (model.Result, error) {
	if errors.Is(err, errs.ErrInvalidInput) {
		return model.Rejected(model.OutcomeInvalidInput), nil
	}
	return model.Result{}, err
}
