package booking

import (
	"strings"

	"github.com/Togather-Foundation/booking/internal/sanitize"
)

type DJInput struct {
	Name               string             `json:"name" validate:"required,max=200"`
	Email              *string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string            `json:"phone,omitempty" validate:"omitempty,max=40"`
	Bio                *string            `json:"bio,omitempty" validate:"omitempty,max=10000"`
	Genres             []string           `json:"genres,omitempty" validate:"max=30,dive,max=60"`
	BookingPrice       *float64           `json:"booking_price,omitempty" validate:"omitempty,gte=0"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status,omitempty" validate:"omitempty,oneof=available busy unavailable"`
	InstagramHandle    *string            `json:"instagram_handle,omitempty" validate:"omitempty,max=60"`
	ProfileImageURL    *string            `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

func (in *DJInput) Normalize() {
	in.Name = sanitize.Text(in.Name)
	in.Email = trimOptional(in.Email)
	in.Phone = sanitize.OptionalText(in.Phone)
	in.Bio = sanitize.OptionalHTML(in.Bio)
	in.Genres = sanitize.Tags(in.Genres)
	in.InstagramHandle = normalizeHandle(in.InstagramHandle)
	in.ProfileImageURL = trimOptional(in.ProfileImageURL)
	if in.AvailabilityStatus == "" {
		in.AvailabilityStatus = AvailabilityAvailable
	}
}

// DJ returns a new entity built from the input. ID and timestamps are left
// to storage.
func (in DJInput) DJ() DJ {
	genres := in.Genres
	if genres == nil {
		genres = []string{}
	}
	return DJ{
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		Bio:                in.Bio,
		Genres:             genres,
		BookingPrice:       in.BookingPrice,
		AvailabilityStatus: in.AvailabilityStatus,
		InstagramHandle:    in.InstagramHandle,
		ProfileImageURL:    in.ProfileImageURL,
	}
}

// DJPatch is a partial update. Nil fields are left unchanged; a pointer to
// the empty string clears an optional field.
type DJPatch struct {
	Name               *string             `json:"name,omitempty" validate:"omitempty,max=200"`
	Email              *string             `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string             `json:"phone,omitempty" validate:"omitempty,max=40"`
	Bio                *string             `json:"bio,omitempty" validate:"omitempty,max=10000"`
	Genres             []string            `json:"genres,omitempty" validate:"omitempty,max=30,dive,max=60"`
	BookingPrice       *float64            `json:"booking_price,omitempty" validate:"omitempty,gte=0"`
	AvailabilityStatus *AvailabilityStatus `json:"availability_status,omitempty" validate:"omitempty,oneof=available busy unavailable"`
	InstagramHandle    *string             `json:"instagram_handle,omitempty" validate:"omitempty,max=60"`
	ProfileImageURL    *string             `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

func (p DJPatch) Apply(dj *DJ) {
	if p.Name != nil {
		if name := sanitize.Text(*p.Name); name != "" {
			dj.Name = name
		}
	}
	if p.Email != nil {
		dj.Email = trimOptional(p.Email)
	}
	if p.Phone != nil {
		dj.Phone = sanitize.OptionalText(p.Phone)
	}
	if p.Bio != nil {
		dj.Bio = sanitize.OptionalHTML(p.Bio)
	}
	if p.Genres != nil {
		dj.Genres = sanitize.Tags(p.Genres)
	}
	if p.BookingPrice != nil {
		dj.BookingPrice = p.BookingPrice
	}
	if p.AvailabilityStatus != nil {
		dj.AvailabilityStatus = *p.AvailabilityStatus
	}
	if p.InstagramHandle != nil {
		dj.InstagramHandle = normalizeHandle(p.InstagramHandle)
	}
	if p.ProfileImageURL != nil {
		dj.ProfileImageURL = trimOptional(p.ProfileImageURL)
	}
}

// EventInput carries event_date as text. Services parse it with the
// legacy date parser, which also accepts pt-BR natural dates.
type EventInput struct {
	Title              string      `json:"title" validate:"required,max=300"`
	Description        *string     `json:"description,omitempty" validate:"omitempty,max=10000"`
	EventDate          string      `json:"event_date" validate:"required"`
	Venue              string      `json:"venue" validate:"required,max=300"`
	City               string      `json:"city" validate:"required,max=120"`
	State              string      `json:"state" validate:"required,max=60"`
	DJID               string      `json:"dj_id,omitempty" validate:"omitempty,uuid"`
	ProducerID         string      `json:"producer_id,omitempty" validate:"omitempty,uuid"`
	Status             EventStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	BookingFee         *float64    `json:"booking_fee,omitempty" validate:"omitempty,gte=0"`
	TicketPrice        *float64    `json:"ticket_price,omitempty" validate:"omitempty,gte=0"`
	ExpectedAttendance *int        `json:"expected_attendance,omitempty" validate:"omitempty,gte=0"`
}

func (in *EventInput) Normalize() {
	in.Title = sanitize.Text(in.Title)
	in.Description = sanitize.OptionalHTML(in.Description)
	in.EventDate = strings.TrimSpace(in.EventDate)
	in.Venue = sanitize.Text(in.Venue)
	in.City = sanitize.Text(in.City)
	in.State = sanitize.Text(in.State)
	in.DJID = strings.TrimSpace(in.DJID)
	in.ProducerID = strings.TrimSpace(in.ProducerID)
	if in.Status == "" {
		in.Status = EventPending
	}
}

type EventPatch struct {
	Title              *string      `json:"title,omitempty" validate:"omitempty,max=300"`
	Description        *string      `json:"description,omitempty" validate:"omitempty,max=10000"`
	EventDate          *string      `json:"event_date,omitempty"`
	Venue              *string      `json:"venue,omitempty" validate:"omitempty,max=300"`
	City               *string      `json:"city,omitempty" validate:"omitempty,max=120"`
	State              *string      `json:"state,omitempty" validate:"omitempty,max=60"`
	DJID               *string      `json:"dj_id,omitempty" validate:"omitempty,uuid"`
	ProducerID         *string      `json:"producer_id,omitempty" validate:"omitempty,uuid"`
	Status             *EventStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	BookingFee         *float64     `json:"booking_fee,omitempty" validate:"omitempty,gte=0"`
	TicketPrice        *float64     `json:"ticket_price,omitempty" validate:"omitempty,gte=0"`
	ExpectedAttendance *int         `json:"expected_attendance,omitempty" validate:"omitempty,gte=0"`
}

// Apply copies every field except EventDate, which the caller parses.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		if title := sanitize.Text(*p.Title); title != "" {
			e.Title = title
		}
	}
	if p.Description != nil {
		e.Description = sanitize.OptionalHTML(p.Description)
	}
	if p.Venue != nil {
		e.Venue = sanitize.Text(*p.Venue)
	}
	if p.City != nil {
		e.City = sanitize.Text(*p.City)
	}
	if p.State != nil {
		e.State = sanitize.Text(*p.State)
	}
	if p.DJID != nil {
		e.DJID = strings.TrimSpace(*p.DJID)
	}
	if p.ProducerID != nil {
		e.ProducerID = strings.TrimSpace(*p.ProducerID)
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.BookingFee != nil {
		e.BookingFee = p.BookingFee
	}
	if p.TicketPrice != nil {
		e.TicketPrice = p.TicketPrice
	}
	if p.ExpectedAttendance != nil {
		e.ExpectedAttendance = p.ExpectedAttendance
	}
}

type ContractTerms struct {
	PaymentTerms          *string `json:"payment_terms,omitempty" validate:"omitempty,max=5000"`
	AdditionalTerms       *string `json:"additional_terms,omitempty" validate:"omitempty,max=20000"`
	EquipmentRequirements *string `json:"equipment_requirements,omitempty" validate:"omitempty,max=5000"`
	PerformanceDuration   *string `json:"performance_duration,omitempty" validate:"omitempty,max=100"`
	SetupTime             *string `json:"setup_time,omitempty" validate:"omitempty,max=100"`
	CancellationPolicy    *string `json:"cancellation_policy,omitempty" validate:"omitempty,max=5000"`
	DressCode             *string `json:"dress_code,omitempty" validate:"omitempty,max=500"`
	TechnicalRider        *string `json:"technical_rider,omitempty" validate:"omitempty,max=20000"`
}

// applyTo copies the set terms onto c. Blank values clear a term.
func (t ContractTerms) applyTo(c *Contract) {
	fields := []struct {
		dst  **string
		src  *string
		text bool
	}{
		{&c.PaymentTerms, t.PaymentTerms, true},
		{&c.AdditionalTerms, t.AdditionalTerms, false},
		{&c.EquipmentRequirements, t.EquipmentRequirements, true},
		{&c.PerformanceDuration, t.PerformanceDuration, true},
		{&c.SetupTime, t.SetupTime, true},
		{&c.CancellationPolicy, t.CancellationPolicy, true},
		{&c.DressCode, t.DressCode, true},
		{&c.TechnicalRider, t.TechnicalRider, true},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		if f.text {
			*f.dst = sanitize.OptionalText(f.src)
		} else {
			*f.dst = trimOptional(f.src)
		}
	}
}

// ContractInput creates a contract. DJID and ProducerID default to the
// event's when omitted.
type ContractInput struct {
	EventID        string         `json:"event_id" validate:"required,uuid"`
	DJID           string         `json:"dj_id,omitempty" validate:"omitempty,uuid"`
	ProducerID     string         `json:"producer_id,omitempty" validate:"omitempty,uuid"`
	ContractValue  float64        `json:"contract_value" validate:"gte=0"`
	Status         ContractStatus `json:"status,omitempty" validate:"omitempty,oneof=pending signed completed cancelled"`
	CommissionRate *float64       `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	ContractTerms
}

func (in *ContractInput) Normalize() {
	in.EventID = strings.TrimSpace(in.EventID)
	in.DJID = strings.TrimSpace(in.DJID)
	in.ProducerID = strings.TrimSpace(in.ProducerID)
	if in.Status == "" {
		in.Status = ContractPending
	}
}

func (in ContractInput) Contract() Contract {
	c := Contract{
		EventID:        in.EventID,
		DJID:           in.DJID,
		ProducerID:     in.ProducerID,
		ContractValue:  in.ContractValue,
		Status:         in.Status,
		CommissionRate: in.CommissionRate,
	}
	in.ContractTerms.applyTo(&c)
	return c
}

type ContractPatch struct {
	ContractValue  *float64        `json:"contract_value,omitempty" validate:"omitempty,gte=0"`
	Status         *ContractStatus `json:"status,omitempty" validate:"omitempty,oneof=pending signed completed cancelled"`
	CommissionRate *float64        `json:"commission_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	ContractTerms
}

func (p ContractPatch) Apply(c *Contract) {
	if p.ContractValue != nil {
		c.ContractValue = *p.ContractValue
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CommissionRate != nil {
		c.CommissionRate = p.CommissionRate
	}
	p.ContractTerms.applyTo(c)
}

type ProducerInput struct {
	Name          string         `json:"name" validate:"required,max=200"`
	CompanyName   *string        `json:"company_name,omitempty" validate:"omitempty,max=200"`
	Email         string         `json:"email" validate:"required,email"`
	Phone         *string        `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address       *string        `json:"address,omitempty" validate:"omitempty,max=300"`
	City          *string        `json:"city,omitempty" validate:"omitempty,max=120"`
	State         *string        `json:"state,omitempty" validate:"omitempty,max=60"`
	ZipCode       *string        `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	ContactPerson *string        `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Status        ProducerStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (in *ProducerInput) Normalize() {
	in.Name = sanitize.Text(in.Name)
	in.CompanyName = sanitize.OptionalText(in.CompanyName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = sanitize.OptionalText(in.Phone)
	in.Address = sanitize.OptionalText(in.Address)
	in.City = sanitize.OptionalText(in.City)
	in.State = sanitize.OptionalText(in.State)
	in.ZipCode = sanitize.OptionalText(in.ZipCode)
	in.ContactPerson = sanitize.OptionalText(in.ContactPerson)
	if in.Status == "" {
		in.Status = ProducerActive
	}
}

func (in ProducerInput) Producer() Producer {
	return Producer{
		Name:          in.Name,
		CompanyName:   in.CompanyName,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		ZipCode:       in.ZipCode,
		ContactPerson: in.ContactPerson,
		Status:        in.Status,
	}
}

type ProducerPatch struct {
	Name          *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	CompanyName   *string         `json:"company_name,omitempty" validate:"omitempty,max=200"`
	Email         *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string         `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address       *string         `json:"address,omitempty" validate:"omitempty,max=300"`
	City          *string         `json:"city,omitempty" validate:"omitempty,max=120"`
	State         *string         `json:"state,omitempty" validate:"omitempty,max=60"`
	ZipCode       *string         `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	ContactPerson *string         `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Status        *ProducerStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// Apply updates pr in place. Name and company name share one stored column,
// so a renamed producer whose company name mirrored the old name follows it.
func (p ProducerPatch) Apply(pr *Producer) {
	if p.Name != nil {
		if name := sanitize.Text(*p.Name); name != "" {
			if p.CompanyName == nil && pr.CompanyName != nil && *pr.CompanyName == pr.Name {
				pr.CompanyName = &name
			}
			pr.Name = name
		}
	}
	if p.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*p.Email)); email != "" {
			pr.Email = email
		}
	}
	optional := []struct {
		dst **string
		src *string
	}{
		{&pr.CompanyName, p.CompanyName},
		{&pr.Phone, p.Phone},
		{&pr.Address, p.Address},
		{&pr.City, p.City},
		{&pr.State, p.State},
		{&pr.ZipCode, p.ZipCode},
		{&pr.ContactPerson, p.ContactPerson},
	}
	for _, f := range optional {
		if f.src != nil {
			*f.dst = sanitize.OptionalText(f.src)
		}
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
}

// MediaInput needs at least one owner: a DJ, an event, or both.
type MediaInput struct {
	DJID        string        `json:"dj_id,omitempty" validate:"required_without=EventID,omitempty,uuid"`
	EventID     string        `json:"event_id,omitempty" validate:"omitempty,uuid"`
	FileURL     string        `json:"file_url" validate:"required,url"`
	FileType    MediaFileType `json:"file_type" validate:"required,oneof=image video audio"`
	Category    MediaCategory `json:"category,omitempty" validate:"omitempty,oneof=presskit logo backdrop performance other"`
	Title       string        `json:"title" validate:"required,max=300"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=5000"`
	FileSize    *string       `json:"file_size,omitempty" validate:"omitempty,max=40"`
}

func (in *MediaInput) Normalize() {
	in.DJID = strings.TrimSpace(in.DJID)
	in.EventID = strings.TrimSpace(in.EventID)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.Title = sanitize.Text(in.Title)
	in.Description = sanitize.OptionalHTML(in.Description)
	in.FileSize = sanitize.OptionalText(in.FileSize)
	if in.Category == "" {
		in.Category = CategoryOther
	}
}

func (in MediaInput) Media() Media {
	return Media{
		DJID:        in.DJID,
		EventID:     in.EventID,
		FileURL:     in.FileURL,
		FileType:    in.FileType,
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		FileSize:    in.FileSize,
	}
}

type SignUpInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FullName   string `json:"full_name" validate:"required,max=200"`
	AccessCode string `json:"access_code,omitempty" validate:"omitempty,max=32"`
}

func (in *SignUpInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = sanitize.Text(in.FullName)
	in.AccessCode = strings.TrimSpace(in.AccessCode)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// RoleUpdate is the body of PUT /admin/users/{id}/role.
type RoleUpdate struct {
	Role       string `json:"role" validate:"required,oneof=admin produtor dj"`
	ProducerID string `json:"producer_id,omitempty" validate:"required_if=Role produtor,omitempty,uuid"`
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeHandle(value *string) *string {
	clean := sanitize.OptionalText(value)
	if clean == nil {
		return nil
	}
	handle := strings.TrimPrefix(*clean, "@")
	if handle == "" {
		return nil
	}
	return &handle
}
