package postgres

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.MediaRepository = (*MediaRepository)(nil)

// MediaRepository stores media with the portal's own field names.
type MediaRepository struct {
	conn
}

const mediaColumns = `id, dj_id, event_id, file_url, file_type, category, title, description, file_size, created_at, updated_at`

func scanMedia(row rowScanner) (booking.Media, error) {
	var (
		m       booking.Media
		djID    *string
		eventID *string
	)
	err := row.Scan(
		&m.ID,
		&djID,
		&eventID,
		&m.FileURL,
		&m.FileType,
		&m.Category,
		&m.Title,
		&m.Description,
		&m.FileSize,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	m.DJID = derefString(djID)
	m.EventID = derefString(eventID)
	return m, err
}

func (r *MediaRepository) List(ctx context.Context, filter storage.MediaFilter) ([]booking.Media, error) {
	if (filter.DJID != "" && !validID(filter.DJID)) || (filter.EventID != "" && !validID(filter.EventID)) {
		return []booking.Media{}, nil
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+mediaColumns+`
  FROM media
 WHERE ($1::uuid IS NULL OR dj_id = $1::uuid)
   AND ($2::uuid IS NULL OR event_id = $2::uuid)
   AND ($3 = '' OR category = $3)
 ORDER BY created_at DESC, id ASC`,
		nullID(filter.DJID),
		nullID(filter.EventID),
		string(filter.Category),
	)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := make([]booking.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return items, nil
}

func (r *MediaRepository) Get(ctx context.Context, id string) (*booking.Media, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	m, err := scanMedia(r.queryer().QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get media", err)
	}
	return &m, nil
}

func (r *MediaRepository) Create(ctx context.Context, media booking.Media) (*booking.Media, error) {
	fileType := media.FileType
	if fileType == "" {
		fileType = booking.MediaImage
	}
	category := media.Category
	if category == "" {
		category = booking.CategoryOther
	}
	created, err := scanMedia(r.queryer().QueryRow(ctx, `
INSERT INTO media (id, dj_id, event_id, file_url, file_type, category, title, description, file_size, created_at)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
RETURNING `+mediaColumns,
		nullID(media.ID),
		nullID(media.DJID),
		nullID(media.EventID),
		media.FileURL,
		string(fileType),
		string(category),
		media.Title,
		media.Description,
		media.FileSize,
		nullTime(media.CreatedAt),
	))
	if err != nil {
		return nil, mapError("create media", err)
	}
	return &created, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.queryer().Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return mapError("delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
