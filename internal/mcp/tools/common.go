// Package tools holds the MCP tools an admin agent uses to query the
// portal. Every tool runs as the HTTP caller, so the usual access rules
// apply.
package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// actor returns the caller, or a tool error result when there is none.
func actor(ctx context.Context) (access.User, *mcp.CallToolResult) {
	user, ok := access.UserFrom(ctx)
	if !ok {
		return access.User{}, mcp.NewToolResultError("not authenticated")
	}
	return user, nil
}

// toolError turns a service error into a result the agent can read.
// Infrastructure errors are returned as protocol errors.
func toolError(action string, err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return mcp.NewToolResultError(action + ": not found"), nil
	case errors.Is(err, booking.ErrForbidden):
		return mcp.NewToolResultError(action + ": forbidden"), nil
	}
	if verr, ok := booking.IsValidation(err); ok {
		return mcp.NewToolResultErrorFromErr(action+": invalid input", verr), nil
	}
	return nil, err
}

// toolResultJSON converts a payload to an MCP tool result with JSON content.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build response", err), nil
	}
	return result, nil
}

func limitArg(request mcp.CallToolRequest) int {
	limit := request.GetInt("limit", defaultLimit)
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
