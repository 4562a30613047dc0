package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/djs"
	"github.com/Togather-Foundation/booking/internal/domain/financials"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type DJService interface {
	List(ctx context.Context, user access.User, filter storage.DJFilter) ([]booking.DJ, error)
	Get(ctx context.Context, user access.User, id string) (*booking.DJ, error)
	Calendar(ctx context.Context, user access.User, djID string, year int, month time.Month, now time.Time, loc *time.Location) (djs.Calendar, error)
}

type FinancialService interface {
	Summary(ctx context.Context, user access.User, djID string) (financials.Summary, error)
}

// DJTools exposes the roster, calendars and earnings.
type DJTools struct {
	djs        DJService
	financials FinancialService
	loc        *time.Location
	now        func() time.Time
}

func NewDJTools(djService DJService, financialService FinancialService, loc *time.Location) *DJTools {
	if loc == nil {
		loc = time.UTC
	}
	return &DJTools{djs: djService, financials: financialService, loc: loc, now: time.Now}
}

func (t *DJTools) ListDJsTool() mcp.Tool {
	return mcp.NewTool("list_djs",
		mcp.WithDescription("List DJs on the roster, optionally filtered by name, genre or availability."),
		mcp.WithString("query", mcp.Description("Case-insensitive match on DJ name")),
		mcp.WithString("genre", mcp.Description("Only DJs playing this genre")),
		mcp.WithString("status", mcp.Description("Availability"), mcp.Enum("available", "busy", "unavailable")),
		mcp.WithNumber("limit", mcp.Description("Maximum DJs to return (default 50, max 200)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *DJTools) ListDJsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	list, err := t.djs.List(ctx, user, storage.DJFilter{
		Search: request.GetString("query", ""),
		Genre:  request.GetString("genre", ""),
		Status: booking.AvailabilityStatus(request.GetString("status", "")),
		Sort:   storage.SortName,
		Limit:  limitArg(request),
	})
	if err != nil {
		return toolError("list djs", err)
	}
	return toolResultJSON(map[string]any{"items": list, "count": len(list)})
}

func (t *DJTools) GetDJTool() mcp.Tool {
	return mcp.NewTool("get_dj",
		mcp.WithDescription("Get one DJ's profile by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("DJ id (UUID)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *DJTools) GetDJHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dj, err := t.djs.Get(ctx, user, id)
	if err != nil {
		return toolError("get dj", err)
	}
	return toolResultJSON(dj)
}

func (t *DJTools) CalendarTool() mcp.Tool {
	return mcp.NewTool("dj_calendar",
		mcp.WithDescription("Show a DJ's bookings for one month, with upcoming and same-day events."),
		mcp.WithString("id", mcp.Required(), mcp.Description("DJ id (UUID)")),
		mcp.WithNumber("year", mcp.Description("Calendar year (default current)")),
		mcp.WithNumber("month", mcp.Description("Month 1-12 (default current)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *DJTools) CalendarHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	now := t.now().In(t.loc)
	year := request.GetInt("year", now.Year())
	month := time.Month(request.GetInt("month", int(now.Month())))

	cal, err := t.djs.Calendar(ctx, user, id, year, month, now, t.loc)
	if err != nil {
		return toolError("dj calendar", err)
	}
	return toolResultJSON(cal)
}

func (t *DJTools) FinancialsTool() mcp.Tool {
	return mcp.NewTool("dj_financials",
		mcp.WithDescription("Summarise a DJ's earnings: totals, commission and month-over-month growth."),
		mcp.WithString("id", mcp.Required(), mcp.Description("DJ id (UUID)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *DJTools) FinancialsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if t.financials == nil {
		return mcp.NewToolResultError("financials not configured"), nil
	}
	summary, err := t.financials.Summary(ctx, user, id)
	if err != nil {
		return toolError("dj financials", err)
	}
	return toolResultJSON(summary)
}
