package postgres

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.ContractRepository = (*ContractRepository)(nil)

type ContractRepository struct {
	conn
}

const contractColumns = `id, event_id, dj_id, producer_id, fee, commission_rate, commission_amount, payment_terms,
       cancellation_policy, equipment_requirements, performance_duration, setup_time, dress_code,
       technical_rider, is_signed_by_producer, is_signed_by_dj, signed_at, contract_url, custom_clauses,
       status, created_at, updated_at`

func scanContract(row rowScanner) (legacy.ContractRow, error) {
	var r legacy.ContractRow
	err := row.Scan(
		&r.ID,
		&r.EventID,
		&r.DJID,
		&r.ProducerID,
		&r.Fee,
		&r.CommissionRate,
		&r.CommissionAmount,
		&r.PaymentTerms,
		&r.CancellationPolicy,
		&r.EquipmentRequirements,
		&r.PerformanceDuration,
		&r.SetupTime,
		&r.DressCode,
		&r.TechnicalRider,
		&r.IsSignedByProducer,
		&r.IsSignedByDJ,
		&r.SignedAt,
		&r.ContractURL,
		&r.CustomClauses,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// List filters on the decoded status, since signed is derived from the two
// signature flags rather than stored.
func (r *ContractRepository) List(ctx context.Context, filter storage.ContractFilter) ([]booking.Contract, error) {
	for _, id := range []string{filter.EventID, filter.DJID, filter.ProducerID} {
		if id != "" && !validID(id) {
			return []booking.Contract{}, nil
		}
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+contractColumns+`
  FROM contracts
 WHERE ($1::uuid IS NULL OR event_id = $1::uuid)
   AND ($2::uuid IS NULL OR dj_id = $2::uuid)
   AND ($3::uuid IS NULL OR producer_id = $3::uuid)
 ORDER BY created_at DESC, id ASC`,
		nullID(filter.EventID),
		nullID(filter.DJID),
		nullID(filter.ProducerID),
	)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]booking.Contract, 0)
	for rows.Next() {
		row, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contract := legacy.ContractFromRow(row)
		if filter.Status != "" && contract.Status != filter.Status {
			continue
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return contracts, nil
}

func (r *ContractRepository) Get(ctx context.Context, id string) (*booking.Contract, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	row, err := scanContract(r.queryer().QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get contract", err)
	}
	contract := legacy.ContractFromRow(row)
	return &contract, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract booking.Contract) (*booking.Contract, error) {
	row := legacy.ContractToRow(contract)
	created, err := scanContract(r.queryer().QueryRow(ctx, `
INSERT INTO contracts (id, event_id, dj_id, producer_id, fee, commission_rate, commission_amount,
                       payment_terms, cancellation_policy, equipment_requirements, performance_duration,
                       setup_time, dress_code, technical_rider, is_signed_by_producer, is_signed_by_dj,
                       signed_at, custom_clauses, status, created_at)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7,
        $8, $9, $10, $11,
        $12, $13, $14, $15, $16,
        $17, $18, $19, COALESCE($20, now()))
RETURNING `+contractColumns,
		nullID(row.ID),
		row.EventID,
		row.DJID,
		row.ProducerID,
		row.Fee,
		row.CommissionRate,
		row.CommissionAmount,
		row.PaymentTerms,
		row.CancellationPolicy,
		row.EquipmentRequirements,
		row.PerformanceDuration,
		row.SetupTime,
		row.DressCode,
		row.TechnicalRider,
		row.IsSignedByProducer,
		row.IsSignedByDJ,
		row.SignedAt,
		row.CustomClauses,
		row.Status,
		nullTime(contract.CreatedAt),
	))
	if err != nil {
		return nil, mapError("create contract", err)
	}
	out := legacy.ContractFromRow(created)
	return &out, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract booking.Contract) (*booking.Contract, error) {
	if !validID(contract.ID) {
		return nil, storage.ErrNotFound
	}
	row := legacy.ContractToRow(contract)
	updated, err := scanContract(r.queryer().QueryRow(ctx, `
UPDATE contracts
   SET event_id = $2, dj_id = $3, producer_id = $4, fee = $5, commission_rate = $6, commission_amount = $7,
       payment_terms = $8, cancellation_policy = $9, equipment_requirements = $10,
       performance_duration = $11, setup_time = $12, dress_code = $13, technical_rider = $14,
       is_signed_by_producer = $15, is_signed_by_dj = $16, signed_at = $17, custom_clauses = $18,
       status = $19
 WHERE id = $1
RETURNING `+contractColumns,
		row.ID,
		row.EventID,
		row.DJID,
		row.ProducerID,
		row.Fee,
		row.CommissionRate,
		row.CommissionAmount,
		row.PaymentTerms,
		row.CancellationPolicy,
		row.EquipmentRequirements,
		row.PerformanceDuration,
		row.SetupTime,
		row.DressCode,
		row.TechnicalRider,
		row.IsSignedByProducer,
		row.IsSignedByDJ,
		row.SignedAt,
		row.CustomClauses,
		row.Status,
	))
	if err != nil {
		return nil, mapError("update contract", err)
	}
	out := legacy.ContractFromRow(updated)
	return &out, nil
}
