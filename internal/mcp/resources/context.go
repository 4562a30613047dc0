// Package resources serves read-only MCP resources: the JSON-LD context
// used by event exports and a description of this server.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Togather-Foundation/booking/internal/jsonld"
)

const (
	contextMIMEType    = "application/ld+json"
	infoMIMEType       = "application/json"
	contextResourceFmt = "context://booking/%s"
	ServerInfoURI      = "info://server"
)

type ContextLoader interface {
	Load(version string) (map[string]any, error)
}

// ContextResources renders JSON-LD context documents once per version.
type ContextResources struct {
	loader ContextLoader
	mu     sync.RWMutex
	cache  map[string]string
}

// NewContextResources uses the embedded contexts when loader is nil.
func NewContextResources(loader ContextLoader) *ContextResources {
	if loader == nil {
		loader = jsonld.NewContextLoader(nil)
	}
	return &ContextResources{loader: loader, cache: make(map[string]string)}
}

func ContextURI(version string) string {
	return fmt.Sprintf(contextResourceFmt, version)
}

func (r *ContextResources) Resource(version string) mcp.Resource {
	return mcp.NewResource(
		ContextURI(version),
		"JSON-LD context "+version,
		mcp.WithResourceDescription("Context used to compact MusicEvent documents returned by get_event"),
		mcp.WithMIMEType(contextMIMEType),
	)
}

func (r *ContextResources) ReadHandler(version string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := r.render(version)
		if err != nil {
			return nil, err
		}
		uri := ContextURI(version)
		if request.Params.URI != "" {
			uri = request.Params.URI
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: contextMIMEType, Text: text},
		}, nil
	}
}

func (r *ContextResources) render(version string) (string, error) {
	r.mu.RLock()
	cached, ok := r.cache[version]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	doc, err := r.loader.Load(version)
	if err != nil {
		return "", fmt.Errorf("load context %s: %w", version, err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[version] = string(data)
	r.mu.Unlock()
	return string(data), nil
}

// ServerInfo describes this MCP server to agents.
type ServerInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	BaseURL string   `json:"base_url,omitempty"`
	Tools   []string `json:"tools"`
}

func InfoResource() mcp.Resource {
	return mcp.NewResource(
		ServerInfoURI,
		"Server info",
		mcp.WithResourceDescription("Name, version and tool list of this MCP server"),
		mcp.WithMIMEType(infoMIMEType),
	)
}

func InfoReadHandler(info ServerInfo) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(info)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: ServerInfoURI, MIMEType: infoMIMEType, Text: string(data)},
		}, nil
	}
}
