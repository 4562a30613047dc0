package api

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed openapi.yaml
var openAPISource []byte

// apiDocument is one rendering of the OpenAPI description.
type apiDocument struct {
	body        []byte
	contentType string
	etag        string
}

func newAPIDocument(body []byte, contentType string) apiDocument {
	sum := sha256.Sum256(body)
	return apiDocument{body: body, contentType: contentType, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}
}

// openAPIDocuments converts the embedded YAML to JSON on first use.
var openAPIDocuments = sync.OnceValues(func() (map[string]apiDocument, error) {
	asJSON, err := yaml.YAMLToJSON(openAPISource)
	if err != nil {
		return nil, err
	}
	return map[string]apiDocument{
		"json": newAPIDocument(asJSON, "application/json"),
		"yaml": newAPIDocument(openAPISource, "application/yaml"),
	}, nil
})

// OpenAPIHandler serves the API description as "json" or "yaml". Clients
// revalidate with If-None-Match. Mount it behind methodMux for GET/HEAD.
func OpenAPIHandler(format string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		docs, err := openAPIDocuments()
		doc, ok := docs[format]
		if err != nil || !ok {
			http.Error(w, "openapi unavailable", http.StatusInternalServerError)
			return
		}

		h := w.Header()
		h.Set("ETag", doc.etag)
		h.Set("Cache-Control", "public, max-age=300")
		if r.Header.Get("If-None-Match") == doc.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		h.Set("Content-Type", doc.contentType)
		_, _ = w.Write(doc.body)
	})
}
