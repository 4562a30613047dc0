// Package mcp exposes read-only portal queries to admin agents over the
// Model Context Protocol.
package mcp

import (
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Togather-Foundation/booking/internal/jsonld"
	"github.com/Togather-Foundation/booking/internal/mcp/prompts"
	"github.com/Togather-Foundation/booking/internal/mcp/resources"
	"github.com/Togather-Foundation/booking/internal/mcp/tools"
)

// Config holds configuration for the MCP server.
type Config struct {
	Name    string
	Version string
	BaseURL string
	// Location is the agency's time zone, used for date filters and calendars.
	Location *time.Location
}

// Services are the domain services the tools call. Each runs as the caller.
type Services struct {
	DJs        tools.DJService
	Financials tools.FinancialService
	Events     tools.EventService
	Contracts  tools.ContractService
	Dashboard  tools.DashboardService
}

// Server wraps the MCP server with the portal's tools, resources and prompts.
type Server struct {
	mcp       *mcpserver.MCPServer
	toolNames []string
}

func NewServer(cfg Config, svc Services) *Server {
	if cfg.Name == "" {
		cfg.Name = "booking"
	}
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("Read-only access to the booking agency portal: DJs, events, contracts, financials and the dashboard."),
	)

	srv := &Server{mcp: mcpServer}
	srv.registerTools(cfg, svc)
	srv.registerResources(cfg)
	srv.registerPrompts()
	return srv
}

// MCPServer returns the underlying MCP server for use with transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// ToolNames lists registered tools in registration order.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.toolNames...)
}

func (s *Server) addTool(tool mcpgo.Tool, handler mcpserver.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.toolNames = append(s.toolNames, tool.Name)
}

func (s *Server) registerTools(cfg Config, svc Services) {
	if svc.DJs != nil {
		dj := tools.NewDJTools(svc.DJs, svc.Financials, cfg.Location)
		s.addTool(dj.ListDJsTool(), dj.ListDJsHandler)
		s.addTool(dj.GetDJTool(), dj.GetDJHandler)
		s.addTool(dj.CalendarTool(), dj.CalendarHandler)
		if svc.Financials != nil {
			s.addTool(dj.FinancialsTool(), dj.FinancialsHandler)
		}
	}
	if svc.Events != nil {
		ev := tools.NewEventTools(svc.Events, svc.DJs, jsonld.NewSerializer(nil), cfg.BaseURL, cfg.Location)
		s.addTool(ev.ListEventsTool(), ev.ListEventsHandler)
		s.addTool(ev.GetEventTool(), ev.GetEventHandler)
	}
	portal := tools.NewPortalTools(svc.Contracts, svc.Dashboard)
	if svc.Contracts != nil {
		s.addTool(portal.ListContractsTool(), portal.ListContractsHandler)
	}
	if svc.Dashboard != nil {
		s.addTool(portal.OverviewTool(), portal.OverviewHandler)
	}
}

func (s *Server) registerResources(cfg Config) {
	contexts := resources.NewContextResources(nil)
	s.mcp.AddResource(contexts.Resource(jsonld.DefaultContextVersion), contexts.ReadHandler(jsonld.DefaultContextVersion))
	s.mcp.AddResource(resources.InfoResource(), resources.InfoReadHandler(resources.ServerInfo{
		Name:    cfg.Name,
		Version: cfg.Version,
		BaseURL: cfg.BaseURL,
		Tools:   s.ToolNames(),
	}))
}

func (s *Server) registerPrompts() {
	p := prompts.NewPromptTemplates()
	s.mcp.AddPrompt(p.MonthlyReportPrompt(), p.MonthlyReportHandler)
	s.mcp.AddPrompt(p.FindDJPrompt(), p.FindDJHandler)
}
