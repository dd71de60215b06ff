package acquire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
)

type fakeRegistrar struct {
	live   map[string]bool
	result model.Result
	err    error

	calls   int
	gotMail string
	gotReg  service.Registration
}

func (f *fakeRegistrar) RegisterProvisional(_ context.Context, email string, reg service.Registration) (model.Result, error) {
	f.calls++
	f.gotMail, f.gotReg = email, reg
	return f.result, f.err
}

func (f *fakeRegistrar) Exists(_ context.Context, email string) (bool, error) {
	return f.live[email], nil
}

type fakeProbe map[string]bool

func (f fakeProbe) IsPermanent(_ context.Context, email string) (bool, error) { return f[email], nil }

type stubStrategy struct {
	prof Profile
	err  error
}

func (s stubStrategy) Normalize(context.Context, Proof) (Profile, error) { return s.prof, s.err }

func newPassword() *Password {
	return &Password{hash: func(p string) (string, error) { return "hashed:" + p, nil }}
}

func TestPassword_Normalize(t *testing.T) {
	t.Parallel()
	s := newPassword()

	prof, err := s.Normalize(context.Background(), PasswordProof{Email: "a@x.com", Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", prof.Email)
	require.Equal(t, "alice", prof.DisplayName)
	require.Equal(t, model.Credential{Provider: ProviderBasic, PasswordHash: "hashed:pw"}, prof.Credential)

	_, err = s.Normalize(context.Background(), PasswordProof{Username: "alice", Password: "pw"})
	require.ErrorIs(t, err, errs.ErrMissingEmail)
	_, err = s.Normalize(context.Background(), PasswordProof{Email: "a@x.com"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = s.Normalize(context.Background(), OAuthProof{Code: "x"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestNewPassword_HashesWithArgon2(t *testing.T) {
	t.Parallel()
	prof, err := NewPassword().Normalize(context.Background(), PasswordProof{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	require.Contains(t, prof.Credential.PasswordHash, "$argon2id$")
}

func TestAcquire_PasswordFunnelsIntoRegistration(t *testing.T) {
	reg := &fakeRegistrar{result: model.Issued(model.Issuance{Token: "t"})}
	a := New(newPassword(), nil, reg, fakeProbe{}, zaptest.NewLogger(t))

	res, err := a.Acquire(context.Background(), PasswordProof{Email: "a@x.com", Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, model.OutcomeIssued, res.Outcome)
	require.Equal(t, "a@x.com", reg.gotMail)
	require.Equal(t, "alice", reg.gotReg.DisplayName)
	require.Equal(t, "hashed:pw", reg.gotReg.Credential.PasswordHash)
}

func TestAcquire_PasswordPrecheck(t *testing.T) {
	reg := &fakeRegistrar{live: map[string]bool{"t@x.com": true}}
	a := New(newPassword(), nil, reg, fakeProbe{"p@x.com": true}, nil)
	ctx := context.Background()

	cases := map[string]model.Outcome{
		"":        model.OutcomeMissingEmail,
		"p@x.com": model.OutcomeAlreadyPermanent,
		"t@x.com": model.OutcomeAlreadyTransient,
	}
	for email, want := range cases {
		res, err := a.Acquire(ctx, PasswordProof{Email: email, Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, want, res.Outcome, email)
	}
	require.Zero(t, reg.calls)
}

func TestAcquire_OAuthDispatchAndRejections(t *testing.T) {
	ctx := context.Background()
	reg := &fakeRegistrar{result: model.Rejected(model.OutcomeAlreadyPermanent)}

	a := New(newPassword(), map[string]Strategy{
		ProviderGoogle: stubStrategy{prof: Profile{Email: "g@x.com", DisplayName: "Gina", PhotoURL: "p", Credential: model.Credential{Provider: ProviderGoogle}}},
		"noemail":      stubStrategy{err: errs.ErrProfileIncomplete},
		"denied":       stubStrategy{err: errs.ErrUnauthorized},
		"broken":       stubStrategy{err: errors.New("dial tcp: refused")},
	}, reg, nil, nil)

	res, err := a.Acquire(ctx, OAuthProof{Provider: ProviderGoogle, Code: "c"})
	require.NoError(t, err)
	require.Equal(t, model.OutcomeAlreadyPermanent, res.Outcome, "conflicts surface unchanged")
	require.Equal(t, "g@x.com", reg.gotMail)
	require.Equal(t, "p", reg.gotReg.PhotoURL)

	res, _ = a.Acquire(ctx, OAuthProof{Provider: "noemail", Code: "c"})
	require.Equal(t, model.OutcomeProfileIncomplete, res.Outcome)

	res, _ = a.Acquire(ctx, OAuthProof{Provider: "denied", Code: "c"})
	require.Equal(t, model.OutcomeUnauthenticated, res.Outcome)

	_, err = a.Acquire(ctx, OAuthProof{Provider: "broken", Code: "c"})
	require.Error(t, err)

	res, err = a.Acquire(ctx, OAuthProof{Provider: "github", Code: "c"})
	require.NoError(t, err)
	require.Equal(t, model.OutcomeInvalidInput, res.Outcome)
	require.Equal(t, 1, reg.calls)
}
