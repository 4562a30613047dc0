package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.DJRepository = (*DJRepository)(nil)

type DJRepository struct {
	conn
}

const djColumns = `id, artist_name, real_name, bio, avatar_url, genres, phone, email, base_price, status,
       whatsapp, instagram, soundcloud, experience_years, rider_requirements, is_active, created_at, updated_at`

var djOrder = map[string]string{
	storage.SortName:    "artist_name",
	storage.SortPrice:   "base_price",
	storage.SortStatus:  "status",
	storage.SortCreated: "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDJ(row rowScanner) (legacy.DJRow, error) {
	var r legacy.DJRow
	err := row.Scan(
		&r.ID,
		&r.ArtistName,
		&r.RealName,
		&r.Bio,
		&r.AvatarURL,
		&r.Genres,
		&r.Phone,
		&r.Email,
		&r.BasePrice,
		&r.Status,
		&r.Whatsapp,
		&r.Instagram,
		&r.Soundcloud,
		&r.ExperienceYears,
		&r.RiderRequirements,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// List returns active DJs. Unavailable matches every stored status other
// than disponivel and ocupado.
func (r *DJRepository) List(ctx context.Context, filter storage.DJFilter) ([]booking.DJ, error) {
	column, ok := djOrder[filter.Sort]
	if !ok {
		column = djOrder[storage.SortName]
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	var status string
	if filter.Status != "" {
		status = legacy.DJStoredStatus(filter.Status)
	}

	query := `
SELECT ` + djColumns + `
  FROM djs
 WHERE is_active
   AND ($1 = '' OR artist_name ILIKE $1 OR bio ILIKE $1
        OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ILIKE $1))
   AND ($2 = '' OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE lower(g) = lower($2)))
   AND ($3 = ''
        OR ($3 = '` + legacy.DJInativo + `' AND status NOT IN ('` + legacy.DJDisponivel + `', '` + legacy.DJOcupado + `'))
        OR status = $3)
 ORDER BY ` + column + ` ` + direction + ` NULLS LAST, artist_name ASC, id ASC
 LIMIT $4 OFFSET $5`

	rows, err := r.queryer().Query(ctx, query,
		likePattern(filter.Search),
		strings.TrimSpace(filter.Genre),
		status,
		limitArg(filter.Limit),
		max(filter.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list djs: %w", err)
	}
	defer rows.Close()

	djs := make([]booking.DJ, 0)
	for rows.Next() {
		row, err := scanDJ(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dj: %w", err)
		}
		djs = append(djs, legacy.DJFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate djs: %w", err)
	}
	return djs, nil
}

func (r *DJRepository) Get(ctx context.Context, id string) (*booking.DJ, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	row, err := scanDJ(r.queryer().QueryRow(ctx, `SELECT `+djColumns+` FROM djs WHERE id = $1 AND is_active`, id))
	if err != nil {
		return nil, mapError("get dj", err)
	}
	dj := legacy.DJFromRow(row)
	return &dj, nil
}

// Create inserts a DJ. A preset ID and CreatedAt are kept, which the import
// command relies on.
func (r *DJRepository) Create(ctx context.Context, dj booking.DJ) (*booking.DJ, error) {
	row := legacy.DJToRow(dj)
	if row.Genres == nil {
		row.Genres = []string{}
	}
	created, err := scanDJ(r.queryer().QueryRow(ctx, `
INSERT INTO djs (id, artist_name, real_name, bio, avatar_url, genres, phone, email, base_price, status,
                 whatsapp, instagram, is_active, created_at)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10,
        $11, $12, true, COALESCE($13, now()))
RETURNING `+djColumns,
		nullID(row.ID),
		row.ArtistName,
		row.RealName,
		row.Bio,
		row.AvatarURL,
		row.Genres,
		row.Phone,
		row.Email,
		row.BasePrice,
		row.Status,
		row.Whatsapp,
		row.Instagram,
		nullTime(dj.CreatedAt),
	))
	if err != nil {
		return nil, mapError("create dj", err)
	}
	out := legacy.DJFromRow(created)
	return &out, nil
}

func (r *DJRepository) Update(ctx context.Context, dj booking.DJ) (*booking.DJ, error) {
	if !validID(dj.ID) {
		return nil, storage.ErrNotFound
	}
	row := legacy.DJToRow(dj)
	if row.Genres == nil {
		row.Genres = []string{}
	}
	updated, err := scanDJ(r.queryer().QueryRow(ctx, `
UPDATE djs
   SET artist_name = $2, real_name = $3, bio = $4, avatar_url = $5, genres = $6, phone = $7,
       email = $8, base_price = $9, status = $10, whatsapp = $11, instagram = $12
 WHERE id = $1 AND is_active
RETURNING `+djColumns,
		row.ID,
		row.ArtistName,
		row.RealName,
		row.Bio,
		row.AvatarURL,
		row.Genres,
		row.Phone,
		row.Email,
		row.BasePrice,
		row.Status,
		row.Whatsapp,
		row.Instagram,
	))
	if err != nil {
		return nil, mapError("update dj", err)
	}
	out := legacy.DJFromRow(updated)
	return &out, nil
}

func (r *DJRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.queryer().Exec(ctx, `UPDATE djs SET is_active = false, status = $2 WHERE id = $1 AND is_active`, id, legacy.DJInativo)
	if err != nil {
		return mapError("delete dj", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *DJRepository) ActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.queryer().Query(ctx, `SELECT id FROM djs WHERE is_active ORDER BY artist_name`)
	if err != nil {
		return nil, fmt.Errorf("list dj ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dj id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// likePattern builds an ILIKE pattern matching value anywhere, or "" for a
// blank value.
func likePattern(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return "%" + escapeLike(value) + "%"
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as no limit.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
