// Package identity derives deterministic pseudonymous account keys from emails.
package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
)

// Deriver maps an email to an AccountID using sha256(email || secret).
// There is intentionally no inverse.
type Deriver struct {
	secret []byte
}

// NewDeriver constructs a Deriver salted with the server-side secret.
func NewDeriver(secret string) (*Deriver, error) {
	if secret == "" {
		return nil, errors.New("identity: empty secret")
	}
	return &Deriver{secret: []byte(secret)}, nil
}

// Derive returns the account identity for email.
// It fails with errs.ErrInvalidInput when email is empty or malformed.
func (d *Deriver) Derive(email string) (model.AccountID, error) {
	email, err := Normalize(email)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(email))
	h.Write(d.secret)
	return model.AccountID(base64.StdEncoding.EncodeToString(h.Sum(nil))), nil
}

// Normalize trims surrounding whitespace and validates the address.
// Case is preserved so that identities stay stable for existing accounts.
func Normalize(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return "", fmt.Errorf("%w: email: %v", errs.ErrInvalidInput, err)
	}
	return email, nil
}
