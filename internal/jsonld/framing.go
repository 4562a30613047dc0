package jsonld

import (
	"errors"

	"github.com/piprate/json-gold/ld"
)

var ErrInvalidFrame = errors.New("invalid JSON-LD frame")

// frameOptions embeds a referenced node everywhere it is used, so a DJ
// playing two events appears in full under both.
func frameOptions() *ld.JsonLdOptions {
	opts := ld.NewJsonLdOptions("")
	opts.Embed = "@always"
	opts.OmitGraph = true
	return opts
}

// frameByType keeps the top-level nodes of one schema.org type.
func frameByType(document, context any, nodeType string) (map[string]any, error) {
	if context == nil || nodeType == "" {
		return nil, ErrInvalidFrame
	}
	frame := map[string]any{"@context": context, "@type": nodeType}
	return ld.NewJsonLdProcessor().Frame(document, frame, frameOptions())
}
