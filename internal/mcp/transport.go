package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Togather-Foundation/booking/internal/access"
)

// NewHTTPHandler serves the MCP server over stateless streamable HTTP. The
// handler expects the auth middleware to have stored the caller on the
// request context; tools read it back from there.
func NewHTTPHandler(srv *Server) http.Handler {
	return server.NewStreamableHTTPServer(srv.MCPServer(),
		server.WithStateLess(true),
		server.WithHTTPContextFunc(carryUser),
	)
}

func carryUser(ctx context.Context, r *http.Request) context.Context {
	if user, ok := access.UserFrom(r.Context()); ok {
		return access.WithUser(ctx, user)
	}
	return ctx
}
