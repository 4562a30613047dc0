// Package schema provides typed Go structs for the schema.org JSON-LD the
// portal publishes about its events.
package schema

// MusicEvent is a booked gig.
type MusicEvent struct {
	Context            any           `json:"@context,omitempty"`
	Type               string        `json:"@type"`
	ID                 string        `json:"@id,omitempty"`
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	StartDate          string        `json:"startDate"`
	EventStatus        string        `json:"eventStatus,omitempty"`
	Location           *Place        `json:"location,omitempty"`
	Performer          *Person       `json:"performer,omitempty"`
	Organizer          *Organization `json:"organizer,omitempty"`
	Offers             []Offer       `json:"offers,omitempty"`
	BookingStatus      string        `json:"bookingStatus,omitempty"`
	ExpectedAttendance *int          `json:"expectedAttendance,omitempty"`
}

func NewMusicEvent(name string) *MusicEvent {
	return &MusicEvent{Type: "MusicEvent", Name: name}
}

type Place struct {
	Type    string         `json:"@type"`
	Name    string         `json:"name"`
	Address *PostalAddress `json:"address,omitempty"`
}

func NewPlace(name string) *Place {
	return &Place{Type: "Place", Name: name}
}

type PostalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

// Person is a performing DJ. Only public profile fields belong here.
type Person struct {
	Type      string   `json:"@type"`
	ID        string   `json:"@id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Genre     []string `json:"genre,omitempty"`
	Image     string   `json:"image,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
}

// NewPerson returns a performer node known only by its @id.
func NewPerson(id string) *Person {
	return &Person{Type: "Person", ID: id}
}

type Organization struct {
	Type string `json:"@type"`
	ID   string `json:"@id,omitempty"`
	Name string `json:"name,omitempty"`
}

func NewOrganization(id string) *Organization {
	return &Organization{Type: "Organization", ID: id}
}

// Offer is a ticket price. Price is a pointer so that a free event (0)
// differs from an unknown price.
type Offer struct {
	Type          string   `json:"@type"`
	Price         *float64 `json:"price,omitempty"`
	PriceCurrency string   `json:"priceCurrency,omitempty"`
}

func NewOffer(price float64, currency string) *Offer {
	return &Offer{Type: "Offer", Price: &price, PriceCurrency: currency}
}
