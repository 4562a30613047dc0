package jsonld

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

const baseURL = "https://booking.example.com"

func strptr(s string) *string { return &s }

func sampleEvent() booking.Event {
	price := 40.0
	crowd := 300
	return booking.Event{
		ID:                 "e1",
		Title:              "Sunset Session",
		Description:        strptr("Open air"),
		EventDate:          time.Date(2025, 6, 15, 20, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
		Venue:              "Clube Azul",
		City:               "São Paulo",
		State:              "SP",
		DJID:               "d1",
		ProducerID:         "p1",
		Status:             booking.EventConfirmed,
		TicketPrice:        &price,
		ExpectedAttendance: &crowd,
	}
}

func TestNewSerializerDefaults(t *testing.T) {
	s := NewSerializer(nil)
	require.Equal(t, defaultLoader, s.loader)
	require.Equal(t, DefaultContextVersion, s.version)
}

func TestSerializerCompactMissingContext(t *testing.T) {
	s := NewSerializer(NewContextLoader(fstest.MapFS{"v1.jsonld": {Data: []byte(`{}`)}}))
	_, err := s.Compact(map[string]any{}, "v1")
	require.ErrorIs(t, err, ErrMissingContext)
}

func TestBuildMusicEvent(t *testing.T) {
	dj := &booking.DJ{ID: "d1", Name: "DJ Lua", Genres: []string{"house", "techno"}, Email: strptr("lua@example.com")}
	producer := &booking.Producer{ID: "p1", Name: "Festa", CompanyName: strptr("Festa Boa Ltda"), Email: "festa@example.com"}

	doc := BuildMusicEvent(baseURL, sampleEvent(), dj, producer)
	assert.Equal(t, "https://booking.example.com/api/v1/events/e1", doc.ID)
	assert.Equal(t, "2025-06-15T20:00:00-03:00", doc.StartDate)
	assert.Equal(t, "https://schema.org/EventScheduled", doc.EventStatus)
	assert.Equal(t, "confirmed", doc.BookingStatus)
	require.NotNil(t, doc.Performer)
	assert.Equal(t, "DJ Lua", doc.Performer.Name)
	require.NotNil(t, doc.Organizer)
	assert.Equal(t, "Festa Boa Ltda", doc.Organizer.Name)
	require.Len(t, doc.Offers, 1)
	assert.Equal(t, "BRL", doc.Offers[0].PriceCurrency)

	cancelled := sampleEvent()
	cancelled.Status = booking.EventCancelled
	cancelled.DJID = ""
	cancelled.TicketPrice = nil
	doc = BuildMusicEvent(baseURL, cancelled, nil, nil)
	assert.Equal(t, "https://schema.org/EventCancelled", doc.EventStatus)
	assert.Nil(t, doc.Performer)
	assert.Empty(t, doc.Offers)
	require.NotNil(t, doc.Organizer)
	assert.Empty(t, doc.Organizer.Name)
}

func TestSerializerEvent(t *testing.T) {
	dj := &booking.DJ{ID: "d1", Name: "DJ Lua", Genres: []string{"house"}}

	got, err := NewSerializer(nil).Event(baseURL, sampleEvent(), dj, nil)
	require.NoError(t, err)

	assert.Equal(t, "MusicEvent", got["@type"])
	assert.Equal(t, "https://booking.example.com/api/v1/events/e1", got["@id"])
	assert.Equal(t, "Sunset Session", got["name"])
	assert.Equal(t, "confirmed", got["bookingStatus"])
	assert.Contains(t, got, "@context")

	performer, ok := got["performer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DJ Lua", performer["name"])
	assert.Equal(t, "house", performer["genre"], "single values compact to scalars")

	location, ok := got["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Clube Azul", location["name"])
}

func TestSerializerEvents(t *testing.T) {
	second := sampleEvent()
	second.ID = "e2"
	second.Title = "Night Drive"

	got, err := NewSerializer(nil).Events(baseURL, []booking.Event{sampleEvent(), second}, map[string]booking.DJ{
		"d1": {ID: "d1", Name: "DJ Lua"},
	})
	require.NoError(t, err)

	graph, ok := got["@graph"].([]any)
	require.True(t, ok)
	require.Len(t, graph, 2)
	for _, n := range graph {
		node := n.(map[string]any)
		assert.Equal(t, "MusicEvent", node["@type"])
		performer := node["performer"].(map[string]any)
		assert.Equal(t, "DJ Lua", performer["name"])
	}
}

func TestSerializerEventsEmpty(t *testing.T) {
	got, err := NewSerializer(nil).Events(baseURL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got["@graph"])
}
