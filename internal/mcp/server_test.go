package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
	"github.com/Togather-Foundation/booking/internal/domain/djs"
	"github.com/Togather-Foundation/booking/internal/domain/events"
	"github.com/Togather-Foundation/booking/internal/storage"
	"github.com/Togather-Foundation/booking/internal/storage/storagetest"
)

func TestNewServerRegistersToolsForConfiguredServices(t *testing.T) {
	t.Run("no services", func(t *testing.T) {
		srv := NewServer(Config{Version: "test"}, Services{})
		assert.Empty(t, srv.ToolNames())
	})

	t.Run("djs and events", func(t *testing.T) {
		repo := storagetest.NewRepository()
		srv := NewServer(Config{Version: "test", BaseURL: "https://booking.test"}, Services{
			DJs:    djs.NewService(repo, zerolog.Nop()),
			Events: events.NewService(repo, booking.NopEnqueuer{}, time.UTC, zerolog.Nop()),
		})
		assert.Equal(t, []string{"list_djs", "get_dj", "dj_calendar", "list_events", "get_event"}, srv.ToolNames())
	})
}

func TestToolCallOverJSONRPC(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.ContractRepo.On("List", mock.Anything, storage.ContractFilter{Status: booking.ContractSigned}).
		Return([]booking.Contract{{ID: "c1", Status: booking.ContractSigned}}, nil).Once()

	srv := NewServer(Config{Version: "test"}, Services{
		Contracts: contracts.NewService(repo, booking.NopEnqueuer{}, zerolog.Nop()),
	})
	ctx := access.WithUser(context.Background(), access.User{ID: "u1", Role: auth.RoleAdmin})

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	srv.MCPServer().HandleMessage(ctx, json.RawMessage(initialize))

	call := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_contracts","arguments":{"status":"signed"}}}`
	reply := srv.MCPServer().HandleMessage(ctx, json.RawMessage(call))

	raw, err := json.Marshal(reply)
	require.NoError(t, err)
	var decoded struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.False(t, decoded.Result.IsError)
	require.NotEmpty(t, decoded.Result.Content)
	assert.Contains(t, decoded.Result.Content[0].Text, `"c1"`)
	repo.AssertExpectations(t)
}

func TestCarryUser(t *testing.T) {
	user := access.User{ID: "u1", Role: auth.RoleAdmin}
	req := httptest.NewRequest("POST", "/mcp", nil)
	req = req.WithContext(access.WithUser(req.Context(), user))

	ctx := carryUser(context.Background(), req)
	got, ok := access.UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = access.UserFrom(carryUser(context.Background(), httptest.NewRequest("POST", "/mcp", nil)))
	assert.False(t, ok)
}
