package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.ProducerRepository = (*ProducerRepository)(nil)

type ProducerRepository struct {
	conn
}

const producerColumns = `id, company_name, cnpj, business_address, contact_person, contact_email, contact_phone,
       zip_code, is_active, notes, access_code, created_at, updated_at`

func scanProducer(row rowScanner) (legacy.ProducerRow, error) {
	var r legacy.ProducerRow
	err := row.Scan(
		&r.ID,
		&r.CompanyName,
		&r.CNPJ,
		&r.BusinessAddress,
		&r.ContactPerson,
		&r.ContactEmail,
		&r.ContactPhone,
		&r.ZipCode,
		&r.IsActive,
		&r.Notes,
		&r.AccessCode,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (r *ProducerRepository) List(ctx context.Context, filter storage.ProducerFilter) ([]booking.Producer, error) {
	var active *bool
	if filter.Status != "" {
		value := filter.Status == booking.ProducerActive
		active = &value
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+producerColumns+`
  FROM producers
 WHERE ($1 = '' OR company_name ILIKE $1 OR contact_person ILIKE $1 OR contact_email ILIKE $1)
   AND ($2::boolean IS NULL OR is_active = $2::boolean)
 ORDER BY company_name ASC NULLS LAST, id ASC`,
		likePattern(filter.Search),
		active,
	)
	if err != nil {
		return nil, fmt.Errorf("list producers: %w", err)
	}
	defer rows.Close()

	producers := make([]booking.Producer, 0)
	for rows.Next() {
		row, err := scanProducer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producer: %w", err)
		}
		producers = append(producers, legacy.ProducerFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate producers: %w", err)
	}
	return producers, nil
}

func (r *ProducerRepository) Get(ctx context.Context, id string) (*booking.Producer, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	row, err := scanProducer(r.queryer().QueryRow(ctx, `SELECT `+producerColumns+` FROM producers WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get producer", err)
	}
	producer := legacy.ProducerFromRow(row)
	return &producer, nil
}

// GetByAccessCode matches active producers only.
func (r *ProducerRepository) GetByAccessCode(ctx context.Context, code string) (*booking.Producer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, storage.ErrNotFound
	}
	row, err := scanProducer(r.queryer().QueryRow(ctx,
		`SELECT `+producerColumns+` FROM producers WHERE access_code = $1 AND is_active`, code))
	if err != nil {
		return nil, mapError("get producer by access code", err)
	}
	producer := legacy.ProducerFromRow(row)
	return &producer, nil
}

func (r *ProducerRepository) Create(ctx context.Context, producer booking.Producer) (*booking.Producer, error) {
	row := legacy.ProducerToRow(producer)
	created, err := scanProducer(r.queryer().QueryRow(ctx, `
INSERT INTO producers (id, company_name, business_address, contact_person, contact_email, contact_phone,
                       zip_code, is_active, notes, access_code, created_at)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
RETURNING `+producerColumns,
		nullID(row.ID),
		row.CompanyName,
		row.BusinessAddress,
		row.ContactPerson,
		row.ContactEmail,
		row.ContactPhone,
		row.ZipCode,
		row.IsActive,
		row.Notes,
		row.AccessCode,
		nullTime(producer.CreatedAt),
	))
	if err != nil {
		return nil, mapError("create producer", err)
	}
	out := legacy.ProducerFromRow(created)
	return &out, nil
}

// Update leaves the access code alone; SetAccessCode owns it.
func (r *ProducerRepository) Update(ctx context.Context, producer booking.Producer) (*booking.Producer, error) {
	if !validID(producer.ID) {
		return nil, storage.ErrNotFound
	}
	row := legacy.ProducerToRow(producer)
	updated, err := scanProducer(r.queryer().QueryRow(ctx, `
UPDATE producers
   SET company_name = $2, business_address = $3, contact_person = $4, contact_email = $5,
       contact_phone = $6, zip_code = $7, is_active = $8, notes = $9
 WHERE id = $1
RETURNING `+producerColumns,
		row.ID,
		row.CompanyName,
		row.BusinessAddress,
		row.ContactPerson,
		row.ContactEmail,
		row.ContactPhone,
		row.ZipCode,
		row.IsActive,
		row.Notes,
	))
	if err != nil {
		return nil, mapError("update producer", err)
	}
	out := legacy.ProducerFromRow(updated)
	return &out, nil
}

func (r *ProducerRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.queryer().Exec(ctx, `DELETE FROM producers WHERE id = $1`, id)
	if err != nil {
		err = mapError("delete producer", err)
		if errors.Is(err, storage.ErrInvalidReference) {
			return fmt.Errorf("delete producer: contracts still reference it: %w", storage.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *ProducerRepository) SetAccessCode(ctx context.Context, id string, code string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.queryer().Exec(ctx, `UPDATE producers SET access_code = $2 WHERE id = $1`, id, code)
	if err != nil {
		return mapError("set access code", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
