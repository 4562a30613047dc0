package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

type ProfileRepository struct {
	conn
}

const profileColumns = `id, email, full_name, role::text, producer_id, access_code, password_hash, created_at, updated_at`

func scanProfile(row rowScanner) (booking.Profile, error) {
	var (
		p          booking.Profile
		producerID *string
	)
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Role,
		&producerID,
		&p.AccessCode,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.ProducerID = derefString(producerID)
	return p, err
}

func (r *ProfileRepository) List(ctx context.Context, filter storage.ProfileFilter) ([]booking.Profile, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+profileColumns+`
  FROM profiles
 WHERE ($1 = '' OR role::text = $1)
 ORDER BY created_at ASC, id ASC
 LIMIT $2 OFFSET $3`,
		filter.Role,
		limitArg(filter.Limit),
		max(filter.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]booking.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*booking.Profile, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	p, err := scanProfile(r.queryer().QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get profile", err)
	}
	return &p, nil
}

// GetByEmail matches case-insensitively.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*booking.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, storage.ErrNotFound
	}
	p, err := scanProfile(r.queryer().QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapError("get profile by email", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile booking.Profile) (*booking.Profile, error) {
	role := profile.Role
	if role == "" {
		role = "produtor"
	}
	p, err := scanProfile(r.queryer().QueryRow(ctx, `
INSERT INTO profiles (id, email, full_name, role, producer_id, access_code, password_hash)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4::user_role, $5, $6, $7)
RETURNING `+profileColumns,
		nullID(profile.ID),
		strings.TrimSpace(profile.Email),
		profile.FullName,
		role,
		nullID(profile.ProducerID),
		profile.AccessCode,
		profile.PasswordHash,
	))
	if err != nil {
		return nil, mapError("create profile", err)
	}
	return &p, nil
}

// UpdateRole sets the role and producer link together. Roles other than
// produtor clear the producer link.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role string, producerID string) (*booking.Profile, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	if role != "produtor" {
		producerID = ""
	}
	p, err := scanProfile(r.queryer().QueryRow(ctx, `
UPDATE profiles
   SET role = $2::user_role, producer_id = $3
 WHERE id = $1
RETURNING `+profileColumns,
		id,
		role,
		nullID(producerID),
	))
	if err != nil {
		return nil, mapError("update profile role", err)
	}
	return &p, nil
}

func (r *ProfileRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.queryer().QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE role = 'admin'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func (r *ProfileRepository) LockAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx, `
SELECT COUNT(*)
  FROM (SELECT id FROM profiles WHERE role = 'admin' ORDER BY id FOR UPDATE) AS admins`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("lock admins: %w", err)
	}
	return count, nil
}
