package jsonld

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

const DefaultContextVersion = "v1"

//go:embed contexts/*.jsonld
var embeddedContexts embed.FS

var (
	ErrContextNotFound = errors.New("context not found")
	ErrInvalidVersion  = errors.New("invalid context version")
	ErrMissingContext  = errors.New("context document missing @context")
)

// ContextLoader reads <version>.jsonld documents and keeps each one after
// the first successful read. Failed reads are retried on the next call.
type ContextLoader struct {
	fsys fs.FS
	docs sync.Map // version -> map[string]any
}

// NewContextLoader reads from fsys. A nil fsys uses the contexts compiled
// into the binary.
func NewContextLoader(fsys fs.FS) *ContextLoader {
	if fsys == nil {
		sub, err := fs.Sub(embeddedContexts, "contexts")
		if err != nil {
			panic(fmt.Sprintf("jsonld: embedded contexts: %v", err))
		}
		fsys = sub
	}
	return &ContextLoader{fsys: fsys}
}

// Load returns the whole context document for version.
func (l *ContextLoader) Load(version string) (map[string]any, error) {
	if version == "" {
		return nil, ErrInvalidVersion
	}
	if doc, ok := l.docs.Load(version); ok {
		return doc.(map[string]any), nil
	}

	raw, err := fs.ReadFile(l.fsys, version+".jsonld")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, version)
	case err != nil:
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode context %s: %w", version, err)
	}

	actual, _ := l.docs.LoadOrStore(version, doc)
	return actual.(map[string]any), nil
}

// Context returns just the @context value of version's document.
func (l *ContextLoader) Context(version string) (any, error) {
	doc, err := l.Load(version)
	if err != nil {
		return nil, err
	}
	ctx, ok := doc["@context"]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingContext, version)
	}
	return ctx, nil
}

var defaultLoader = NewContextLoader(nil)
