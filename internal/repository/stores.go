// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/bliss-auth/internal/model"
)

// DurableStore provides single-row access to permanent credential and profile
// records keyed by account identity.
type DurableStore interface {
	// FindCredentialByIdentity loads a credential row; errs.ErrNotFound when absent.
	FindCredentialByIdentity(ctx context.Context, id model.AccountID) (*model.PermanentCredential, error)
	// FindProfileByIdentity loads a profile row; errs.ErrNotFound when absent.
	FindProfileByIdentity(ctx context.Context, id model.AccountID) (*model.Profile, error)
	// CreateCredential inserts a credential row; errs.ErrAlreadyExists on duplicate identity.
	CreateCredential(ctx context.Context, c *model.PermanentCredential) error
	// CreateProfile inserts a profile row; errs.ErrAlreadyExists on duplicate identity.
	CreateProfile(ctx context.Context, p *model.Profile) error
}

// EphemeralStore is a TTL-capable key/value store for transient records.
// A miss is reported as (nil, nil), never as an error.
type EphemeralStore interface {
	// Get returns the live value under key, or nil.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL writes value unconditionally.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// CreateIfAbsent atomically writes value only when no live value exists.
	// It reports false when the key is already present.
	CreateIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}
