package postgres

import (
	"context"

	"github.com/and161185/bliss-auth/internal/model"
)

// ProfileRepo implements the profile half of repository.DurableStore.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// FindProfileByIdentity selects the profile row of an account.
func (r *ProfileRepo) FindProfileByIdentity(ctx context.Context, id model.AccountID) (*model.Profile, error) {
	const q = `
SELECT client_id, client_category, client_dob, client_contact_number, client_origin_country,
       client_bio, client_profile_image_link, client_joining_date, client_update_date
FROM client_profiles WHERE client_id=$1`
	var (
		p   model.Profile
		cid string
		bio *string
	)
	err := r.db.Pool.QueryRow(ctx, q, string(id)).Scan(
		&cid, &p.Category, &p.DateOfBirth, &p.ContactNumber, &p.OriginCountry,
		&bio, &p.ImageLink, &p.JoinedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, storeErr("find profile", err)
	}
	p.AccountID = model.AccountID(cid)
	if bio != nil {
		p.Bio = *bio
	}
	return &p, nil
}

// CreateProfile inserts a profile row. An empty bio is stored as NULL.
func (r *ProfileRepo) CreateProfile(ctx context.Context, p *model.Profile) error {
	const q = `
INSERT INTO client_profiles (client_id, client_category, client_dob, client_contact_number, client_origin_country,
                             client_bio, client_profile_image_link, client_joining_date, client_update_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var bio *string
	if p.Bio != "" {
		bio = &p.Bio
	}
	_, err := r.db.Pool.Exec(ctx, q, string(p.AccountID), p.Category, p.DateOfBirth, p.ContactNumber,
		p.OriginCountry, bio, p.ImageLink, p.JoinedAt, p.UpdatedAt)
	return storeErr("create profile", err)
}
