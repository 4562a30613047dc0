package tools

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/events"
	"github.com/Togather-Foundation/booking/internal/jsonld"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type EventService interface {
	List(ctx context.Context, user access.User, filter storage.EventFilter) ([]booking.Event, error)
	Get(ctx context.Context, user access.User, id string) (*booking.Event, error)
}

// EventTools provides MCP tools for querying events.
type EventTools struct {
	events     EventService
	djs        DJService
	serializer *jsonld.Serializer
	baseURL    string
	loc        *time.Location
}

// NewEventTools creates a new EventTools instance. djService is optional
// and only fills in performer details.
func NewEventTools(eventService EventService, djService DJService, serializer *jsonld.Serializer, baseURL string, loc *time.Location) *EventTools {
	if serializer == nil {
		serializer = jsonld.NewSerializer(nil)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EventTools{
		events:     eventService,
		djs:        djService,
		serializer: serializer,
		baseURL:    strings.TrimSpace(baseURL),
		loc:        loc,
	}
}

// ListEventsTool returns the MCP tool definition for listing events.
func (t *EventTools) ListEventsTool() mcp.Tool {
	return mcp.NewTool("list_events",
		mcp.WithDescription("List booked events, newest first, with optional filters for DJ, producer, status, date range and text."),
		mcp.WithString("dj_id", mcp.Description("Only events for this DJ")),
		mcp.WithString("producer_id", mcp.Description("Only events for this producer")),
		mcp.WithString("status", mcp.Description("Event status"), mcp.Enum("pending", "confirmed", "completed", "cancelled")),
		mcp.WithString("from", mcp.Description("Events on or after this date (YYYY-MM-DD)")),
		mcp.WithString("to", mcp.Description("Events on or before this date (YYYY-MM-DD)")),
		mcp.WithString("query", mcp.Description("Match on title, venue or city")),
		mcp.WithNumber("limit", mcp.Description("Maximum events to return (default 50, max 200)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// ListEventsHandler handles the list_events tool call.
func (t *EventTools) ListEventsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}

	values := url.Values{}
	for arg, param := range map[string]string{
		"dj_id":       "dj_id",
		"producer_id": "producer_id",
		"status":      "status",
		"from":        "from",
		"to":          "to",
		"query":       "q",
	} {
		if v := strings.TrimSpace(request.GetString(arg, "")); v != "" {
			values.Set(param, v)
		}
	}
	values.Set("limit", strconv.Itoa(limitArg(request)))

	filter, err := events.ParseFilters(values, t.loc)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid filters", err), nil
	}
	list, err := t.events.List(ctx, user, filter)
	if err != nil {
		return toolError("list events", err)
	}
	return toolResultJSON(map[string]any{"items": list, "count": len(list)})
}

// GetEventTool returns the MCP tool definition for getting a single event by ID.
func (t *EventTools) GetEventTool() mcp.Tool {
	return mcp.NewTool("get_event",
		mcp.WithDescription("Get one event as a schema.org MusicEvent (JSON-LD)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id (UUID)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// GetEventHandler handles the get_event tool call.
func (t *EventTools) GetEventHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := t.events.Get(ctx, user, id)
	if err != nil {
		return toolError("get event", err)
	}

	var dj *booking.DJ
	if event.DJID != "" && t.djs != nil {
		// Performer details are optional; the document still links the DJ.
		dj, _ = t.djs.Get(ctx, user, event.DJID)
	}
	doc, err := t.serializer.Event(t.baseURL, *event, dj, nil)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build JSON-LD", err), nil
	}
	return toolResultJSON(doc)
}
