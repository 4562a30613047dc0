package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/dashboard"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type ContractService interface {
	List(ctx context.Context, user access.User, filter storage.ContractFilter) ([]booking.Contract, error)
}

type DashboardService interface {
	Load(ctx context.Context, user access.User) (*dashboard.Dashboard, error)
}

// PortalTools covers contracts and the dashboard overview.
type PortalTools struct {
	contracts ContractService
	dashboard DashboardService
}

func NewPortalTools(contracts ContractService, dash DashboardService) *PortalTools {
	return &PortalTools{contracts: contracts, dashboard: dash}
}

func (t *PortalTools) ListContractsTool() mcp.Tool {
	return mcp.NewTool("list_contracts",
		mcp.WithDescription("List contracts with their signature state. Filter by event, DJ, producer or status."),
		mcp.WithString("event_id", mcp.Description("Only contracts for this event")),
		mcp.WithString("dj_id", mcp.Description("Only contracts for this DJ")),
		mcp.WithString("producer_id", mcp.Description("Only contracts for this producer")),
		mcp.WithString("status", mcp.Description("Contract status"), mcp.Enum("pending", "signed", "completed", "cancelled")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *PortalTools) ListContractsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	status := booking.ContractStatus(request.GetString("status", ""))
	switch status {
	case "", booking.ContractPending, booking.ContractSigned, booking.ContractCompleted, booking.ContractCancelled:
	default:
		return mcp.NewToolResultError("status must be pending, signed, completed or cancelled"), nil
	}
	list, err := t.contracts.List(ctx, user, storage.ContractFilter{
		EventID:    request.GetString("event_id", ""),
		DJID:       request.GetString("dj_id", ""),
		ProducerID: request.GetString("producer_id", ""),
		Status:     status,
	})
	if err != nil {
		return toolError("list contracts", err)
	}

	unsigned := 0
	for _, c := range list {
		if c.Status == booking.ContractPending && (!c.SignedByDJ || !c.SignedByProducer) {
			unsigned++
		}
	}
	return toolResultJSON(map[string]any{"items": list, "count": len(list), "awaiting_signature": unsigned})
}

func (t *PortalTools) OverviewTool() mcp.Tool {
	return mcp.NewTool("portal_overview",
		mcp.WithDescription("Counts and platform statistics from the dashboard: DJs, events, contracts, producers and revenue."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *PortalTools) OverviewHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, denied := actor(ctx)
	if denied != nil {
		return denied, nil
	}
	d, err := t.dashboard.Load(ctx, user)
	if err != nil {
		return toolError("portal overview", err)
	}
	return toolResultJSON(map[string]any{
		"djs":       len(d.DJs),
		"events":    len(d.Events),
		"contracts": len(d.Contracts),
		"producers": len(d.Producers),
		"stats":     d.Stats,
		"warnings":  d.Warnings,
	})
}
