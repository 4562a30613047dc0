// Package booking holds the agency's entities and the rules shared by every
// service: enums, input validation and sanitisation, and domain errors.
//
// Optional foreign keys are plain strings where "" means none. Optional
// free-text and numeric fields are pointers so that absence survives JSON.
package booking

import "time"

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

type ProducerStatus string

const (
	ProducerActive   ProducerStatus = "active"
	ProducerInactive ProducerStatus = "inactive"
)

type MediaFileType string

const (
	MediaImage MediaFileType = "image"
	MediaVideo MediaFileType = "video"
	MediaAudio MediaFileType = "audio"
)

type MediaCategory string

const (
	CategoryPresskit    MediaCategory = "presskit"
	CategoryLogo        MediaCategory = "logo"
	CategoryBackdrop    MediaCategory = "backdrop"
	CategoryPerformance MediaCategory = "performance"
	CategoryOther       MediaCategory = "other"
)

type DJ struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              *string            `json:"email,omitempty"`
	Phone              *string            `json:"phone,omitempty"`
	Bio                *string            `json:"bio,omitempty"`
	Genres             []string           `json:"genres"`
	BookingPrice       *float64           `json:"booking_price,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	InstagramHandle    *string            `json:"instagram_handle,omitempty"`
	ProfileImageURL    *string            `json:"profile_image_url,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type Event struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        *string     `json:"description,omitempty"`
	EventDate          time.Time   `json:"event_date"`
	Venue              string      `json:"venue"`
	City               string      `json:"city"`
	State              string      `json:"state"`
	DJID               string      `json:"dj_id,omitempty"`
	ProducerID         string      `json:"producer_id,omitempty"`
	Status             EventStatus `json:"status"`
	BookingFee         *float64    `json:"booking_fee,omitempty"`
	TicketPrice        *float64    `json:"ticket_price,omitempty"`
	ExpectedAttendance *int        `json:"expected_attendance,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type Contract struct {
	ID                    string         `json:"id"`
	EventID               string         `json:"event_id"`
	DJID                  string         `json:"dj_id"`
	ProducerID            string         `json:"producer_id"`
	ContractValue         float64        `json:"contract_value"`
	PaymentTerms          *string        `json:"payment_terms,omitempty"`
	AdditionalTerms       *string        `json:"additional_terms,omitempty"`
	EquipmentRequirements *string        `json:"equipment_requirements,omitempty"`
	PerformanceDuration   *string        `json:"performance_duration,omitempty"`
	SetupTime             *string        `json:"setup_time,omitempty"`
	CancellationPolicy    *string        `json:"cancellation_policy,omitempty"`
	DressCode             *string        `json:"dress_code,omitempty"`
	TechnicalRider        *string        `json:"technical_rider,omitempty"`
	Status                ContractStatus `json:"status"`
	SignedByProducer      bool           `json:"signed_by_producer"`
	SignedByDJ            bool           `json:"signed_by_dj"`
	SignedDate            *time.Time     `json:"signed_date,omitempty"`
	CommissionRate        *float64       `json:"commission_rate,omitempty"`
	CommissionAmount      *float64       `json:"commission_amount,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

type Producer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	CompanyName   *string        `json:"company_name,omitempty"`
	Email         string         `json:"email"`
	Phone         *string        `json:"phone,omitempty"`
	Address       *string        `json:"address,omitempty"`
	City          *string        `json:"city,omitempty"`
	State         *string        `json:"state,omitempty"`
	ZipCode       *string        `json:"zip_code,omitempty"`
	ContactPerson *string        `json:"contact_person,omitempty"`
	Status        ProducerStatus `json:"status"`
	AccessCode    *string        `json:"access_code,omitempty"` // admins only
	// Notes is the stored free text that also carries city and state.
	Notes     *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Media struct {
	ID          string        `json:"id"`
	DJID        string        `json:"dj_id,omitempty"`
	EventID     string        `json:"event_id,omitempty"`
	FileURL     string        `json:"file_url"`
	FileType    MediaFileType `json:"file_type"`
	Category    MediaCategory `json:"category"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	FileSize    *string       `json:"file_size,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Profile is a portal account. Role is one of admin, produtor or dj.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	ProducerID   string    `json:"producer_id,omitempty"`
	AccessCode   *string   `json:"access_code,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MonthlyEarning struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Amount      float64 `json:"amount"`
	EventsCount int     `json:"events_count"`
}

type FinancialData struct {
	DJID              string           `json:"dj_id"`
	TotalEarnings     float64          `json:"total_earnings"`
	PendingPayments   float64          `json:"pending_payments"`
	CompletedEvents   int              `json:"completed_events"`
	AverageEventValue float64          `json:"average_event_value"`
	CommissionRate    float64          `json:"commission_rate"`
	NetEarnings       float64          `json:"net_earnings"`
	MonthlyEarnings   []MonthlyEarning `json:"monthly_earnings"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// PlatformStats is the admin overview returned by /stats/platform.
type PlatformStats struct {
	TotalDJs        int     `json:"total_djs"`
	ActiveDJs       int     `json:"active_djs"`
	TotalEvents     int     `json:"total_events"`
	UpcomingEvents  int     `json:"upcoming_events"`
	TotalProducers  int     `json:"total_producers"`
	TotalContracts  int     `json:"total_contracts"`
	SignedContracts int     `json:"signed_contracts"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalCommission float64 `json:"total_commission"`
	PendingPayments float64 `json:"pending_payments"`
	TotalUsers      int     `json:"total_users"`
	ProducerUsers   int     `json:"producer_users"`
}
