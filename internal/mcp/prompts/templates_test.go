package prompts

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptRequest(args map[string]string) mcp.GetPromptRequest {
	var req mcp.GetPromptRequest
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, result.Messages, 1)
	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestGetArgString(t *testing.T) {
	assert.Equal(t, "", getArgString(nil, "x"))
	assert.Equal(t, "", getArgString(map[string]string{}, "x"))
	assert.Equal(t, "house", getArgString(map[string]string{"genre": " house "}, "genre"))
}

func TestMonthlyReportHandler(t *testing.T) {
	p := NewPromptTemplates()

	result, err := p.MonthlyReportHandler(context.Background(), promptRequest(map[string]string{"month": "2025-03"}))
	require.NoError(t, err)
	text := promptText(t, result)
	assert.Contains(t, text, "2025-03")
	assert.Contains(t, text, "portal_overview")

	result, err = p.MonthlyReportHandler(context.Background(), promptRequest(map[string]string{"month": "2025-03", "dj_id": "d1"}))
	require.NoError(t, err)
	assert.Contains(t, promptText(t, result), "dj_financials")

	_, err = p.MonthlyReportHandler(context.Background(), promptRequest(nil))
	assert.Error(t, err)
}

func TestFindDJHandler(t *testing.T) {
	p := NewPromptTemplates()

	result, err := p.FindDJHandler(context.Background(), promptRequest(map[string]string{
		"date":   "2025-06-14",
		"genre":  "techno",
		"budget": "3000",
	}))
	require.NoError(t, err)
	text := promptText(t, result)
	assert.Contains(t, text, "2025-06-14")
	assert.Contains(t, text, "genre=techno")
	assert.Contains(t, text, "3000 BRL")

	_, err = p.FindDJHandler(context.Background(), promptRequest(map[string]string{}))
	assert.Error(t, err)
}

func TestPromptDefinitions(t *testing.T) {
	p := NewPromptTemplates()
	assert.Equal(t, "monthly_report", p.MonthlyReportPrompt().Name)
	assert.Equal(t, "find_dj", p.FindDJPrompt().Name)
}
