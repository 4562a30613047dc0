package legacy

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// UnnamedProducer is shown for producers stored without a company name.
const UnnamedProducer = "Produtor sem nome"

func DJFromRow(row DJRow) booking.DJ {
	phone := row.Phone
	if isBlank(phone) {
		phone = row.Whatsapp
	}
	genres := row.Genres
	if genres == nil {
		genres = []string{}
	}
	return booking.DJ{
		ID:                 row.ID,
		Name:               row.ArtistName,
		Email:              row.Email,
		Phone:              phone,
		Bio:                row.Bio,
		Genres:             genres,
		BookingPrice:       row.BasePrice,
		AvailabilityStatus: DJStatus(row.Status),
		InstagramHandle:    row.Instagram,
		ProfileImageURL:    row.AvatarURL,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// DJToRow writes the phone to both phone and whatsapp and the name to both
// artist_name and real_name, as the hosted backend's own forms did.
func DJToRow(dj booking.DJ) DJRow {
	name := dj.Name
	return DJRow{
		ID:         dj.ID,
		ArtistName: dj.Name,
		RealName:   &name,
		Bio:        dj.Bio,
		AvatarURL:  dj.ProfileImageURL,
		Genres:     dj.Genres,
		Phone:      dj.Phone,
		Email:      dj.Email,
		BasePrice:  dj.BookingPrice,
		Status:     DJStoredStatus(dj.AvailabilityStatus),
		Whatsapp:   dj.Phone,
		Instagram:  dj.InstagramHandle,
		IsActive:   true,
		CreatedAt:  dj.CreatedAt,
		UpdatedAt:  dj.UpdatedAt,
	}
}

func EventFromRow(row EventRow) booking.Event {
	return booking.Event{
		ID:                 row.ID,
		Title:              row.EventName,
		Description:        row.Description,
		EventDate:          row.EventDate,
		Venue:              deref(row.Venue),
		City:               deref(row.Address),
		State:              deref(row.State),
		DJID:               deref(row.DJID),
		ProducerID:         deref(row.ProducerID),
		Status:             EventStatus(row.Status),
		BookingFee:         row.Fee,
		TicketPrice:        row.TicketPrice,
		ExpectedAttendance: row.ExpectedAttendees,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func EventToRow(e booking.Event) EventRow {
	return EventRow{
		ID:                e.ID,
		EventName:         e.Title,
		EventDate:         e.EventDate,
		Description:       e.Description,
		Venue:             ref(e.Venue),
		Address:           ref(e.City),
		State:             ref(e.State),
		Fee:               e.BookingFee,
		TicketPrice:       e.TicketPrice,
		ExpectedAttendees: e.ExpectedAttendance,
		DJID:              ref(e.DJID),
		ProducerID:        ref(e.ProducerID),
		Status:            EventStoredStatus(e.Status),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func ContractFromRow(row ContractRow) booking.Contract {
	return booking.Contract{
		ID:                    row.ID,
		EventID:               row.EventID,
		DJID:                  row.DJID,
		ProducerID:            row.ProducerID,
		ContractValue:         row.Fee,
		PaymentTerms:          row.PaymentTerms,
		AdditionalTerms:       ClausesText(row.CustomClauses),
		EquipmentRequirements: row.EquipmentRequirements,
		PerformanceDuration:   row.PerformanceDuration,
		SetupTime:             row.SetupTime,
		CancellationPolicy:    row.CancellationPolicy,
		DressCode:             row.DressCode,
		TechnicalRider:        row.TechnicalRider,
		Status:                ContractStatus(row.Status, row.IsSignedByProducer, row.IsSignedByDJ),
		SignedByProducer:      row.IsSignedByProducer,
		SignedByDJ:            row.IsSignedByDJ,
		SignedDate:            row.SignedAt,
		CommissionRate:        row.CommissionRate,
		CommissionAmount:      row.CommissionAmount,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

// ContractToRow marks both sides signed when the domain status is signed.
func ContractToRow(c booking.Contract) ContractRow {
	byProducer, byDJ := c.SignedByProducer, c.SignedByDJ
	if c.Status == booking.ContractSigned {
		byProducer, byDJ = true, true
	}
	status := ContractStoredStatus(c.Status)
	return ContractRow{
		ID:                    c.ID,
		EventID:               c.EventID,
		DJID:                  c.DJID,
		ProducerID:            c.ProducerID,
		Fee:                   c.ContractValue,
		CommissionRate:        c.CommissionRate,
		CommissionAmount:      c.CommissionAmount,
		PaymentTerms:          c.PaymentTerms,
		CancellationPolicy:    c.CancellationPolicy,
		EquipmentRequirements: c.EquipmentRequirements,
		PerformanceDuration:   c.PerformanceDuration,
		SetupTime:             c.SetupTime,
		DressCode:             c.DressCode,
		TechnicalRider:        c.TechnicalRider,
		IsSignedByProducer:    byProducer,
		IsSignedByDJ:          byDJ,
		SignedAt:              c.SignedDate,
		CustomClauses:         ClausesJSON(c.AdditionalTerms),
		Status:                &status,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// ClausesText renders custom_clauses for additional_terms. JSON strings are
// unwrapped; objects and arrays are returned as compact JSON text.
func ClausesText(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var text string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return &text
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		text = string(trimmed)
		return &text
	}
	text = buf.String()
	return &text
}

// ClausesJSON is the inverse of ClausesText. JSON object or array text is
// stored as-is; anything else is stored as a JSON string.
func ClausesJSON(terms *string) json.RawMessage {
	if terms == nil || strings.TrimSpace(*terms) == "" {
		return nil
	}
	value := strings.TrimSpace(*terms)
	if (value[0] == '{' || value[0] == '[') && json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return encoded
}

func ProducerFromRow(row ProducerRow) booking.Producer {
	name := strings.TrimSpace(deref(row.CompanyName))
	if name == "" {
		name = UnnamedProducer
	}
	status := booking.ProducerInactive
	if row.IsActive {
		status = booking.ProducerActive
	}
	city, state := ParseNotes(deref(row.Notes))
	return booking.Producer{
		ID:            row.ID,
		Name:          name,
		CompanyName:   row.CompanyName,
		Email:         deref(row.ContactEmail),
		Phone:         row.ContactPhone,
		Address:       row.BusinessAddress,
		City:          city,
		State:         state,
		ZipCode:       row.ZipCode,
		ContactPerson: row.ContactPerson,
		Status:        status,
		AccessCode:    row.AccessCode,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// ProducerToRow stores the company name, or the display name when there is
// none, as company_name. City and state are written into the existing notes.
func ProducerToRow(p booking.Producer) ProducerRow {
	company := p.CompanyName
	if isBlank(company) {
		company = ref(p.Name)
	}
	notes := MergeNotes(deref(p.Notes), p.City, p.State)
	return ProducerRow{
		ID:              p.ID,
		CompanyName:     company,
		BusinessAddress: p.Address,
		ContactPerson:   p.ContactPerson,
		ContactEmail:    ref(p.Email),
		ContactPhone:    p.Phone,
		ZipCode:         p.ZipCode,
		IsActive:        p.Status != booking.ProducerInactive,
		Notes:           &notes,
		AccessCode:      p.AccessCode,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

var notesPattern = regexp.MustCompile(`Cidade:[ \t]*(.*?),[ \t]*Estado:[ \t]*([^\n,]*)`)

// ParseNotes extracts city and state from "Cidade: X, Estado: Y".
func ParseNotes(notes string) (city, state *string) {
	m := notesPattern.FindStringSubmatch(notes)
	if m == nil {
		return nil, nil
	}
	return ref(strings.TrimSpace(m[1])), ref(strings.TrimSpace(m[2]))
}

func FormatNotes(city, state *string) string {
	return "Cidade: " + deref(city) + ", Estado: " + deref(state)
}

// MergeNotes replaces the city and state segment of notes, keeping any other
// text. Without a segment one is appended, unless there is nothing to record.
func MergeNotes(notes string, city, state *string) string {
	segment := FormatNotes(city, state)
	if loc := notesPattern.FindStringIndex(notes); loc != nil {
		return notes[:loc[0]] + segment + notes[loc[1]:]
	}
	if strings.TrimSpace(notes) == "" {
		return segment
	}
	if isBlank(city) && isBlank(state) {
		return notes
	}
	return strings.TrimRight(notes, "\n") + "\n" + segment
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ref returns nil for the empty string.
func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
