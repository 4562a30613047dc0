package jsonld

import (
	"time"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/jsonld/schema"
)

const (
	country  = "BR"
	currency = "BRL"
)

// BuildMusicEvent describes an event as a schema.org MusicEvent. dj and
// producer may be nil; the performer and organizer then carry only an @id.
// Contact details and fees stay out of the document.
func BuildMusicEvent(baseURL string, e booking.Event, dj *booking.DJ, producer *booking.Producer) *schema.MusicEvent {
	doc := schema.NewMusicEvent(e.Title)
	doc.ID = schema.BuildEventURI(baseURL, e.ID)
	doc.StartDate = e.EventDate.Format(time.RFC3339)
	doc.BookingStatus = string(e.Status)
	doc.ExpectedAttendance = e.ExpectedAttendance
	if e.Description != nil {
		doc.Description = *e.Description
	}

	doc.EventStatus = schema.StatusScheduled
	if e.Status == booking.EventCancelled {
		doc.EventStatus = schema.StatusCancelled
	}

	if e.Venue != "" {
		doc.Location = schema.NewPlace(e.Venue)
		doc.Location.Address = schema.NewPostalAddress(e.City, e.State, country)
	}

	if e.DJID != "" {
		performer := schema.NewPerson(schema.BuildDJURI(baseURL, e.DJID))
		if dj != nil {
			performer.Name = dj.Name
			performer.Genre = dj.Genres
			if dj.ProfileImageURL != nil {
				performer.Image = *dj.ProfileImageURL
			}
			if dj.InstagramHandle != nil {
				performer.Instagram = *dj.InstagramHandle
			}
		}
		doc.Performer = performer
	}

	if e.ProducerID != "" {
		organizer := schema.NewOrganization(schema.BuildProducerURI(baseURL, e.ProducerID))
		if producer != nil {
			organizer.Name = producer.Name
			if producer.CompanyName != nil && *producer.CompanyName != "" {
				organizer.Name = *producer.CompanyName
			}
		}
		doc.Organizer = organizer
	}

	if e.TicketPrice != nil {
		doc.Offers = []schema.Offer{*schema.NewOffer(*e.TicketPrice, currency)}
	}
	return doc
}

// Event renders one event as compacted JSON-LD.
func (s *Serializer) Event(baseURL string, e booking.Event, dj *booking.DJ, producer *booking.Producer) (map[string]any, error) {
	ctx, err := s.context(s.version)
	if err != nil {
		return nil, err
	}
	doc := BuildMusicEvent(baseURL, e, dj, producer)
	doc.Context = ctx
	tree, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	return s.Compact(tree, s.version)
}

// Events renders a list as a framed @graph of MusicEvents. djs supplies
// performer details by id and may be empty.
func (s *Serializer) Events(baseURL string, events []booking.Event, djs map[string]booking.DJ) (map[string]any, error) {
	ctx, err := s.context(s.version)
	if err != nil {
		return nil, err
	}
	graph := make([]any, 0, len(events))
	for _, e := range events {
		var dj *booking.DJ
		if d, ok := djs[e.DJID]; ok {
			dj = &d
		}
		node, err := toDocument(BuildMusicEvent(baseURL, e, dj, nil))
		if err != nil {
			return nil, err
		}
		graph = append(graph, node)
	}
	if len(graph) == 0 {
		return map[string]any{"@context": ctx, "@graph": []any{}}, nil
	}
	return s.FrameAndCompact(map[string]any{"@context": ctx, "@graph": graph}, "MusicEvent", s.version)
}
