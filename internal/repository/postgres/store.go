package postgres

import "github.com/and161185/bliss-auth/internal/repository"

// Store combines the credential and profile repositories into a single
// repository.DurableStore backed by one pool.
type Store struct {
	*CredentialRepo
	*ProfileRepo
}

var _ repository.DurableStore = (*Store)(nil)

// NewStore constructs the durable store.
func NewStore(db *DB) *Store {
	return &Store{CredentialRepo: NewCredentialRepo(db), ProfileRepo: NewProfileRepo(db)}
}
