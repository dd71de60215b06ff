package postgres

import (
	"context"

	"github.com/and161185/bliss-auth/internal/model"
)

// CredentialRepo implements the credential half of repository.DurableStore.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

// FindCredentialByIdentity selects the credential row of an account.
func (r *CredentialRepo) FindCredentialByIdentity(ctx context.Context, id model.AccountID) (*model.PermanentCredential, error) {
	const q = `
SELECT client_id, client_email, client_name, client_password, auth_provider, token_last_revokes
FROM client_credentials WHERE client_id=$1`
	var c model.PermanentCredential
	var cid string
	err := r.db.Pool.QueryRow(ctx, q, string(id)).
		Scan(&cid, &c.Email, &c.Name, &c.Password, &c.Provider, &c.LastRevokeTime)
	if err != nil {
		return nil, storeErr("find credential", err)
	}
	c.AccountID = model.AccountID(cid)
	return &c, nil
}

// CreateCredential inserts a credential row.
func (r *CredentialRepo) CreateCredential(ctx context.Context, c *model.PermanentCredential) error {
	const q = `
INSERT INTO client_credentials (client_id, client_email, client_name, client_password, auth_provider, token_last_revokes)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, string(c.AccountID), c.Email, c.Name, c.Password, c.Provider, c.LastRevokeTime)
	return storeErr("create credential", err)
}
