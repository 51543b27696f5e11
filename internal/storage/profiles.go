package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const profileColumns = "id, username, full_name, bio, avatar_url, role, created_at, updated_at"

// CreateProfile inserts a profile row. Profiles are normally created
// alongside external auth-account creation; this is used by seeding and
// tests.
func (p *Postgres) CreateProfile(ctx context.Context, profile *Profile) error {
	err := p.db.GetContext(ctx, profile,
		`INSERT INTO profiles (username, full_name, bio, avatar_url, role)
		 VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'user')::user_role)
		 RETURNING `+profileColumns,
		profile.Username, profile.FullName, profile.Bio, profile.AvatarURL, profile.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile returns a profile by id, or nil if absent.
func (p *Postgres) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profile Profile
	err := p.db.GetContext(ctx, &profile,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.ID == uuid.Nil {
		return nil, nil
	}
	return &profile, nil
}

// GetProfileByUsername returns a profile by its unique username, or nil.
func (p *Postgres) GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	var profile Profile
	err := p.db.GetContext(ctx, &profile,
		"SELECT "+profileColumns+" FROM profiles WHERE username = $1", username)
	if err := noRows(err); err != nil {
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}
	if profile.ID == uuid.Nil {
		return nil, nil
	}
	return &profile, nil
}

// UsernameTaken reports whether a different profile already holds username.
func (p *Postgres) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM profiles WHERE username = $1 AND id <> $2", username, exclude)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

// UpdateProfile applies the supplied fields and returns the updated row,
// or nil if the profile does not exist.
func (p *Postgres) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	b := sq.Update("profiles").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + profileColumns)
	if upd.Username != nil {
		b = b.Set("username", *upd.Username)
	}
	if upd.FullName.Set {
		b = b.Set("full_name", upd.FullName.Value)
	}
	if upd.Bio.Set {
		b = b.Set("bio", upd.Bio.Value)
	}
	if upd.AvatarURL.Set {
		b = b.Set("avatar_url", upd.AvatarURL.Value)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile update: %w", err)
	}

	var profile Profile
	if err := noRows(p.db.GetContext(ctx, &profile, query, args...)); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if profile.ID == uuid.Nil {
		return nil, nil
	}
	return &profile, nil
}
