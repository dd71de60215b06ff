// Package token signs and verifies the service's ES512 bearer tokens and
// classifies verification failures.
package token

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/bliss-auth/internal/model"
)

// DefaultTTL is the lifetime of every issued token.
const DefaultTTL = 24 * time.Hour

// DefaultIssuer is embedded in and required from every token.
const DefaultIssuer = "Bliss LLC."

// claims is the wire form. Field names are shared with the other Bliss services.
type claims struct {
	jwt.RegisteredClaims
	ClientID      string      `json:"CLIENT_ID"`
	Authorization model.Class `json:"TOKEN_AUTHORIZATION"`
	RevokeTime    int64       `json:"REVOKE_TIME"` // unix millis
}

// Codec is stateless and safe for concurrent use.
type Codec struct {
	priv   *ecdsa.PrivateKey
	pub    *ecdsa.PublicKey
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option { return func(c *Codec) { c.ttl = d } }

// WithIssuer overrides DefaultIssuer.
func WithIssuer(iss string) Option { return func(c *Codec) { c.issuer = iss } }

// WithClock sets the time source used for issuance and validation windows.
func WithClock(now func() time.Time) Option { return func(c *Codec) { c.now = now } }

// NewCodec builds a codec from a P-521 key pair.
func NewCodec(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, opts ...Option) (*Codec, error) {
	if priv == nil || pub == nil {
		return nil, errors.New("token: nil key")
	}
	if priv.Curve.Params().BitSize != 521 || pub.Curve.Params().BitSize != 521 {
		return nil, errors.New("token: ES512 requires P-521 keys")
	}
	c := &Codec{priv: priv, pub: pub, issuer: DefaultIssuer, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for id with expiry issuance-time + TTL.
func (c *Codec) Issue(id model.AccountID, class model.Class, revokeAt time.Time) (model.Issuance, error) {
	return c.IssueUntil(id, class, revokeAt, c.now().Add(c.ttl))
}

// IssueUntil signs a token with an explicit expiry. notBefore is the issuance time.
func (c *Codec) IssueUntil(id model.AccountID, class model.Class, revokeAt, expiresAt time.Time) (model.Issuance, error) {
	if id == "" || !class.Valid() {
		return model.Issuance{}, errors.New("token: invalid claims")
	}
	jti, err := uuid.NewV4()
	if err != nil {
		return model.Issuance{}, err
	}
	now := c.now()
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   string(id),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ClientID:      string(id),
		Authorization: class,
		RevokeTime:    revokeAt.UnixMilli(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES512, cl).SignedString(c.priv)
	if err != nil {
		return model.Issuance{}, fmt.Errorf("token: sign: %w", err)
	}
	return model.Issuance{
		AccountID:  id,
		Class:      class,
		Token:      signed,
		ExpiresAt:  cl.ExpiresAt.Time,
		RevokeTime: time.UnixMilli(cl.RevokeTime),
	}, nil
}

// Verify checks signature, issuer and the notBefore/expiry windows, then the
// authorization class. A class mismatch returns the decoded claims together
// with an error matching ErrWrongClass.
func (c *Codec) Verify(raw string, want model.Class) (*model.Claims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return c.pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES512.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if cl.ClientID == "" || !cl.Authorization.Valid() {
		return nil, &VerificationError{Fault: model.FaultMalformed, Err: errors.New("missing client id or token authorization")}
	}

	out := &model.Claims{
		AccountID:  model.AccountID(cl.ClientID),
		Class:      cl.Authorization,
		RevokeTime: time.UnixMilli(cl.RevokeTime),
		Issuer:     cl.Issuer,
		TokenID:    cl.ID,
		ExpiresAt:  cl.ExpiresAt.Time,
	}
	if cl.IssuedAt != nil {
		out.IssuedAt = cl.IssuedAt.Time
	}
	if cl.NotBefore != nil {
		out.NotBefore = cl.NotBefore.Time
	}
	if cl.Authorization != want {
		return out, &VerificationError{Fault: model.FaultWrongClass, Err: fmt.Errorf("want %s, got %s", want, cl.Authorization)}
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerificationError{Fault: model.FaultExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return &VerificationError{Fault: model.FaultNotYetValid, Err: err}
	default:
		return &VerificationError{Fault: model.FaultMalformed, Err: err}
	}
}
