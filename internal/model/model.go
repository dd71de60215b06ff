// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
)

// AccountID is the pseudonymous account key derived from an email address.
// It is the sole join point between ephemeral and durable state.
type AccountID string

// Class is the authorization class embedded in a token.
type Class string

const (
	ClassTransient Class = "TRANSIENT"
	ClassPermanent Class = "PERMANENT"
)

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool { return c == ClassTransient || c == ClassPermanent }

// Claims is the decoded, verified content of a token.
type Claims struct {
	AccountID  AccountID
	Class      Class
	RevokeTime time.Time // revocation watermark (issuance time of the account's token family)
	Issuer     string
	TokenID    string
	IssuedAt   time.Time
	NotBefore  time.Time
	ExpiresAt  time.Time
}

// Issuance is a freshly minted bearer token with its reporting metadata.
type Issuance struct {
	AccountID  AccountID
	Class      Class
	Token      string
	ExpiresAt  time.Time
	RevokeTime time.Time
}

// Credential is opaque credential material obtained during acquisition.
type Credential struct {
	Provider     string `json:"provider"`                // "basic", "google", "facebook"
	PasswordHash string `json:"password,omitempty"`      // encoded argon2id hash; empty for OAuth
	AccessToken  string `json:"access_token,omitempty"`  // provider tokens; empty for basic
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TransientRecord is the ephemeral, TTL-bound state of a started registration.
// It is never updated in place.
type TransientRecord struct {
	AccountID   AccountID  `json:"client_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"username"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	Credential  Credential `json:"credential"`
	Status      Class      `json:"token_status"`
	RevokeTime  time.Time  `json:"revoke_time"`
}

// PermanentCredential is the durable credential row created during promotion.
type PermanentCredential struct {
	AccountID      AccountID
	Email          string
	Name           string
	Password       string // credential material (password hash, or empty for OAuth)
	Provider       string
	LastRevokeTime time.Time
}

// Profile is the durable client profile written by profile completion.
type Profile struct {
	AccountID     AccountID
	Category      string
	DateOfBirth   time.Time
	ContactNumber *int64
	OriginCountry string
	Bio           string
	ImageLink     string
	JoinedAt      time.Time
	UpdatedAt     time.Time
}

// Outcome is the business result of a lifecycle operation.
type Outcome string

const (
	OutcomeIssued            Outcome = "ISSUED"
	OutcomeAlreadyTransient  Outcome = "ALREADY_TRANSIENT"
	OutcomeAlreadyPermanent  Outcome = "ALREADY_PERMANENT"
	OutcomeNotFound          Outcome = "NOT_FOUND"
	OutcomeMissingEmail      Outcome = "MISSING_EMAIL"
	OutcomeProfileIncomplete Outcome = "PROFILE_INCOMPLETE"
	OutcomeInvalidInput      Outcome = "INVALID_INPUT"
	OutcomeUnauthenticated   Outcome = "UNAUTHENTICATED"
	OutcomeInvalidToken      Outcome = "INVALID_TOKEN"
	OutcomeProfileCreated    Outcome = "PROFILE_CREATED"
)

// TokenFault classifies why a presented token was rejected.
type TokenFault string

const (
	FaultNone        TokenFault = ""
	FaultExpired     TokenFault = "EXPIRED"
	FaultMalformed   TokenFault = "MALFORMED"
	FaultNotYetValid TokenFault = "NOT_YET_VALID"
	FaultWrongClass  TokenFault = "WRONG_CLASS"
)

// Result carries any lifecycle outcome in one shape so the presentation
// layer needs no per-strategy branching.
type Result struct {
	Outcome  Outcome
	Issuance *Issuance  // set when Outcome == OutcomeIssued
	Fault    TokenFault // set when Outcome == OutcomeInvalidToken
	Profile  *Profile   // set when Outcome == OutcomeProfileCreated
	Email    string
	Name     string
	PhotoURL string
}

// Issued wraps a successful issuance.
func Issued(is Issuance) Result { return Result{Outcome: OutcomeIssued, Issuance: &is} }

// Rejected builds a non-issuing result.
func Rejected(o Outcome) Result { return Result{Outcome: o} }

// InvalidToken builds a token rejection result.
func InvalidToken(f TokenFault) Result { return Result{Outcome: OutcomeInvalidToken, Fault: f} }
