// Package legacy translates between the portal's domain types and the row
// shape of the hosted backend the portal grew out of. Postgres tables keep
// that shape, including Portuguese column and status names, so existing
// exports import unchanged.
package legacy

import (
	"encoding/json"
	"time"
)

// DJRow mirrors the djs table.
type DJRow struct {
	ID                string    `json:"id"`
	ArtistName        string    `json:"artist_name"`
	RealName          *string   `json:"real_name,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	AvatarURL         *string   `json:"avatar_url,omitempty"`
	Genres            []string  `json:"genres,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	Email             *string   `json:"email,omitempty"`
	BasePrice         *float64  `json:"base_price,omitempty"`
	Status            string    `json:"status"`
	Whatsapp          *string   `json:"whatsapp,omitempty"`
	Instagram         *string   `json:"instagram,omitempty"`
	Soundcloud        *string   `json:"soundcloud,omitempty"`
	ExperienceYears   *int      `json:"experience_years,omitempty"`
	RiderRequirements *string   `json:"rider_requirements,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EventRow mirrors the events table. address holds the city.
type EventRow struct {
	ID                string    `json:"id"`
	EventName         string    `json:"event_name"`
	EventDate         time.Time `json:"event_date"`
	Description       *string   `json:"description,omitempty"`
	Venue             *string   `json:"venue,omitempty"`
	Address           *string   `json:"address,omitempty"`
	State             *string   `json:"state,omitempty"`
	Fee               *float64  `json:"fee,omitempty"`
	TicketPrice       *float64  `json:"ticket_price,omitempty"`
	ExpectedAttendees *int      `json:"expected_attendees,omitempty"`
	DJID              *string   `json:"dj_id,omitempty"`
	ProducerID        *string   `json:"producer_id,omitempty"`
	Status            string    `json:"status"`
	PaymentStatus     *string   `json:"payment_status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ContractRow mirrors the contracts table.
type ContractRow struct {
	ID                    string          `json:"id"`
	EventID               string          `json:"event_id"`
	DJID                  string          `json:"dj_id"`
	ProducerID            string          `json:"producer_id"`
	Fee                   float64         `json:"fee"`
	CommissionRate        *float64        `json:"commission_rate,omitempty"`
	CommissionAmount      *float64        `json:"commission_amount,omitempty"`
	PaymentTerms          *string         `json:"payment_terms,omitempty"`
	CancellationPolicy    *string         `json:"cancellation_policy,omitempty"`
	EquipmentRequirements *string         `json:"equipment_requirements,omitempty"`
	PerformanceDuration   *string         `json:"performance_duration,omitempty"`
	SetupTime             *string         `json:"setup_time,omitempty"`
	DressCode             *string         `json:"dress_code,omitempty"`
	TechnicalRider        *string         `json:"technical_rider,omitempty"`
	IsSignedByProducer    bool            `json:"is_signed_by_producer"`
	IsSignedByDJ          bool            `json:"is_signed_by_dj"`
	SignedAt              *time.Time      `json:"signed_at,omitempty"`
	ContractURL           *string         `json:"contract_url,omitempty"`
	CustomClauses         json.RawMessage `json:"custom_clauses,omitempty"`
	Status                *string         `json:"status,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ProducerRow mirrors the producers table. City and state live in notes.
type ProducerRow struct {
	ID              string    `json:"id"`
	CompanyName     *string   `json:"company_name,omitempty"`
	CNPJ            *string   `json:"cnpj,omitempty"`
	BusinessAddress *string   `json:"business_address,omitempty"`
	ContactPerson   *string   `json:"contact_person,omitempty"`
	ContactEmail    *string   `json:"contact_email,omitempty"`
	ContactPhone    *string   `json:"contact_phone,omitempty"`
	ZipCode         *string   `json:"zip_code,omitempty"`
	IsActive        bool      `json:"is_active"`
	Notes           *string   `json:"notes,omitempty"`
	AccessCode      *string   `json:"access_code,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
