// Package prompts holds MCP prompt templates for common booking questions.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	monthlyReportPrompt = "monthly_report"
	findDJPrompt        = "find_dj"
)

type PromptTemplates struct{}

func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{}
}

func (p *PromptTemplates) MonthlyReportPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		monthlyReportPrompt,
		mcp.WithPromptDescription("Summarise a month of bookings: events, contracts awaiting signature and DJ earnings"),
		mcp.WithArgument("month", mcp.ArgumentDescription("Month as YYYY-MM"), mcp.RequiredArgument()),
		mcp.WithArgument("dj_id", mcp.ArgumentDescription("Limit the report to one DJ")),
	)
}

func (p *PromptTemplates) FindDJPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		findDJPrompt,
		mcp.WithPromptDescription("Shortlist available DJs for an event"),
		mcp.WithArgument("date", mcp.ArgumentDescription("Event date (YYYY-MM-DD)"), mcp.RequiredArgument()),
		mcp.WithArgument("genre", mcp.ArgumentDescription("Preferred genre")),
		mcp.WithArgument("budget", mcp.ArgumentDescription("Maximum booking price in BRL")),
	)
}

func (p *PromptTemplates) MonthlyReportHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	month := getArgString(args, "month")
	if month == "" {
		return nil, fmt.Errorf("month is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Prepare a booking report for %s.\n\n", month)
	b.WriteString("Use list_events with from/to covering the month, then list_contracts to find contracts still awaiting a signature. ")
	if djID := getArgString(args, "dj_id"); djID != "" {
		fmt.Fprintf(&b, "Only include DJ %s, and finish with dj_financials for that DJ.", djID)
	} else {
		b.WriteString("Group events by DJ and finish with portal_overview for platform totals.")
	}

	return &mcp.GetPromptResult{
		Description: "Monthly booking report",
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(b.String())},
		},
	}, nil
}

func (p *PromptTemplates) FindDJHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	date := getArgString(args, "date")
	if date == "" {
		return nil, fmt.Errorf("date is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Find DJs who can play on %s.\n\n", date)
	b.WriteString("Call list_djs with status=available")
	if genre := getArgString(args, "genre"); genre != "" {
		fmt.Fprintf(&b, " and genre=%s", genre)
	}
	b.WriteString(", then check each candidate with dj_calendar for that month and drop anyone already booked that day.")
	if budget := getArgString(args, "budget"); budget != "" {
		fmt.Fprintf(&b, " Exclude DJs whose booking_price exceeds %s BRL.", budget)
	}
	b.WriteString(" Return a shortlist with name, genres and price.")

	return &mcp.GetPromptResult{
		Description: "Shortlist DJs for a date",
		Messages: []mcp.PromptMessage{
			{Role: mcp.RoleUser, Content: mcp.NewTextContent(b.String())},
		},
	}, nil
}

func getArgString(args map[string]string, key string) string {
	if args == nil {
		return ""
	}
	return strings.TrimSpace(args[key])
}
