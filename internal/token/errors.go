package token

import (
	"errors"

	"github.com/and161185/bliss-auth/internal/model"
)

// Sentinels matched by errors.Is against a *VerificationError.
var (
	ErrExpired     = errors.New("token expired")
	ErrMalformed   = errors.New("token malformed or tampered")
	ErrNotYetValid = errors.New("token not active")
	ErrWrongClass  = errors.New("wrong token type")
)

// VerificationError reports why a token was rejected.
type VerificationError struct {
	Fault model.TokenFault
	Err   error
}

func (e *VerificationError) Error() string {
	msg := sentinel(e.Fault).Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the fault sentinel and the underlying cause.
func (e *VerificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{sentinel(e.Fault)}
	}
	return []error{sentinel(e.Fault), e.Err}
}

// FaultOf extracts the fault classification from err, or FaultNone.
func FaultOf(err error) model.TokenFault {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Fault
	}
	return model.FaultNone
}

func sentinel(f model.TokenFault) error {
	switch f {
	case model.FaultExpired:
		return ErrExpired
	case model.FaultNotYetValid:
		return ErrNotYetValid
	case model.FaultWrongClass:
		return ErrWrongClass
	default:
		return ErrMalformed
	}
}
