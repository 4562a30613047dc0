package jsonld

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

var ErrInvalidDocument = errors.New("invalid JSON-LD document")

// Serializer compacts portal documents against a versioned @context.
type Serializer struct {
	loader    *ContextLoader
	version   string
	processor *ld.JsonLdProcessor
}

// NewSerializer uses the default context version. A nil loader reads the
// embedded contexts.
func NewSerializer(loader *ContextLoader) *Serializer {
	if loader == nil {
		loader = defaultLoader
	}
	return &Serializer{loader: loader, version: DefaultContextVersion, processor: ld.NewJsonLdProcessor()}
}

// Compact compacts document against the context of version, collapsing
// single-element arrays.
func (s *Serializer) Compact(document any, version string) (map[string]any, error) {
	ctx, err := s.context(version)
	if err != nil {
		return nil, err
	}
	return s.compact(document, ctx)
}

// FrameAndCompact keeps the nodes of nodeType and compacts the result.
func (s *Serializer) FrameAndCompact(document any, nodeType, version string) (map[string]any, error) {
	ctx, err := s.context(version)
	if err != nil {
		return nil, err
	}
	framed, err := frameByType(document, ctx, nodeType)
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", nodeType, err)
	}
	return s.compact(framed, ctx)
}

func (s *Serializer) compact(document, ctx any) (map[string]any, error) {
	opts := ld.NewJsonLdOptions("")
	opts.CompactArrays = true
	out, err := s.processor.Compact(document, ctx, opts)
	switch {
	case err != nil:
		return nil, fmt.Errorf("compact: %w", err)
	case out == nil:
		return nil, ErrInvalidDocument
	}
	return out, nil
}

func (s *Serializer) context(version string) (any, error) {
	return s.loader.Context(version)
}

// toDocument turns a typed value into the generic tree json-gold walks.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
