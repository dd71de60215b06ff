// Package acquire turns external identity proofs into transient registrations.
//
// Each provider is a Strategy that normalizes its proof into a Profile. The
// Acquirer dispatches on the closed set of Proof variants and funnels every
// profile into the same provisional registration, so callers see one result
// shape regardless of provider.
package acquire

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
)

// Provider names recorded as credential provenance.
const (
	ProviderBasic    = "basic"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// Proof is an external identity proof. The set of variants is closed.
type Proof interface{ isProof() }

// PasswordProof is a submitted password registration form.
type PasswordProof struct {
	Email    string
	Username string
	Password string
}

// OAuthProof is an authorization code returned to the provider callback.
type OAuthProof struct {
	Provider string
	Code     string
}

func (PasswordProof) isProof() {}
func (OAuthProof) isProof()    {}

// Profile is the normalized identity produced by a Strategy.
type Profile struct {
	Email       string
	DisplayName string
	PhotoURL    string
	Credential  model.Credential
}

// Strategy normalizes one kind of proof. It fails with errs.ErrMissingEmail,
// errs.ErrProfileIncomplete or errs.ErrUnauthorized for rejected proofs; any
// other error is an infrastructure failure.
type Strategy interface {
	Normalize(ctx context.Context, proof Proof) (Profile, error)
}

// Registrar is the provisional registration entry point (service.TransientManager).
type Registrar interface {
	RegisterProvisional(ctx context.Context, email string, reg service.Registration) (model.Result, error)
	Exists(ctx context.Context, email string) (bool, error)
}

// PermanentProbe reports whether an email already has a durable account.
type PermanentProbe interface {
	IsPermanent(ctx context.Context, email string) (bool, error)
}

// Acquirer is the single entry point for all acquisition strategies.
type Acquirer struct {
	password Strategy
	oauth    map[string]Strategy
	reg      Registrar
	perm     PermanentProbe
	log      *zap.Logger
}

// New constructs an Acquirer. oauth maps provider names to strategies; perm
// may be nil to skip the early durable probe.
func New(password Strategy, oauth map[string]Strategy, reg Registrar, perm PermanentProbe, log *zap.Logger) *Acquirer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Acquirer{password: password, oauth: oauth, reg: reg, perm: perm, log: log}
}

// Acquire normalizes proof and starts a provisional registration.
func (a *Acquirer) Acquire(ctx context.Context, proof Proof) (model.Result, error) {
	var st Strategy
	switch p := proof.(type) {
	case PasswordProof:
		// skip hashing the password for accounts that cannot register
		if res, done, err := a.precheck(ctx, p.Email); done || err != nil {
			return res, err
		}
		st = a.password
	case OAuthProof:
		st = a.oauth[p.Provider]
	}
	if st == nil {
		return model.Rejected(model.OutcomeInvalidInput), nil
	}

	prof, err := st.Normalize(ctx, proof)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrMissingEmail):
		return model.Rejected(model.OutcomeMissingEmail), nil
	case errors.Is(err, errs.ErrProfileIncomplete):
		return model.Rejected(model.OutcomeProfileIncomplete), nil
	case errors.Is(err, errs.ErrInvalidInput):
		return model.Rejected(model.OutcomeInvalidInput), nil
	case errors.Is(err, errs.ErrUnauthorized):
		a.log.Info("external proof rejected", zap.Error(err))
		return model.Rejected(model.OutcomeUnauthenticated), nil
	default:
		return model.Result{}, err
	}

	return a.reg.RegisterProvisional(ctx, prof.Email, service.Registration{
		DisplayName: prof.DisplayName,
		PhotoURL:    prof.PhotoURL,
		Credential:  prof.Credential,
	})
}

// precheck short-circuits duplicate flows. RegisterProvisional repeats both
// checks atomically; this only saves work.
func (a *Acquirer) precheck(ctx context.Context, email string) (model.Result, bool, error) {
	if strings.TrimSpace(email) == "" {
		return model.Rejected(model.OutcomeMissingEmail), true, nil
	}
	if a.perm != nil {
		perm, err := a.perm.IsPermanent(ctx, email)
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			return model.Rejected(model.OutcomeInvalidInput), true, nil
		case err != nil:
			return model.Result{}, true, err
		case perm:
			return model.Rejected(model.OutcomeAlreadyPermanent), true, nil
		}
	}
	live, err := a.reg.Exists(ctx, email)
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return model.Rejected(model.OutcomeInvalidInput), true, nil
	case err != nil:
		return model.Result{}, true, err
	case live:
		return model.Rejected(model.OutcomeAlreadyTransient), true, nil
	}
	return model.Result{}, false, nil
}
