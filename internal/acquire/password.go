package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/bliss-auth/internal/crypto"
	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
)

// Password normalizes PasswordProof. The password is stored only as an
// argon2id hash.
type Password struct {
	hash func(string) (string, error)
}

// NewPassword constructs the password strategy.
func NewPassword() *Password { return &Password{hash: crypto.HashPassword} }

// Normalize implements Strategy.
func (s *Password) Normalize(_ context.Context, proof Proof) (Profile, error) {
	p, ok := proof.(PasswordProof)
	if !ok {
		return Profile{}, fmt.Errorf("%w: password strategy got %T", errs.ErrInvalidInput, proof)
	}
	if strings.TrimSpace(p.Email) == "" {
		return Profile{}, errs.ErrMissingEmail
	}
	if p.Password == "" {
		return Profile{}, fmt.Errorf("%w: empty password", errs.ErrInvalidInput)
	}
	h, err := s.hash(p.Password)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Email:       p.Email,
		DisplayName: p.Username,
		Credential:  model.Credential{Provider: ProviderBasic, PasswordHash: h},
	}, nil
}
