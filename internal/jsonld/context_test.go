package jsonld

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestContextLoaderLoadSuccessAndCache(t *testing.T) {
	fsys := fstest.MapFS{"v1.jsonld": {Data: []byte(`{"@context":{"name":"schema:name"}}`)}}
	loader := NewContextLoader(fsys)

	first, err := loader.Load("v1")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"@context": map[string]any{"name": "schema:name"}}, first)

	fsys["v1.jsonld"] = &fstest.MapFile{Data: []byte(`{"@context":{"name":"schema:other"}}`)}
	second, err := loader.Load("v1")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestContextLoaderErrors(t *testing.T) {
	loader := NewContextLoader(fstest.MapFS{"bad.jsonld": {Data: []byte(`{`)}})

	_, err := loader.Load("")
	require.ErrorIs(t, err, ErrInvalidVersion)

	_, err = loader.Load("missing")
	require.ErrorIs(t, err, ErrContextNotFound)

	_, err = loader.Load("bad")
	require.Error(t, err)
}

func TestContextLoaderContextRequiresKey(t *testing.T) {
	loader := NewContextLoader(fstest.MapFS{"v2.jsonld": {Data: []byte(`{"@graph":[]}`)}})

	_, err := loader.Context("v2")
	require.ErrorIs(t, err, ErrMissingContext)
}

func TestEmbeddedDefaultContext(t *testing.T) {
	raw, err := defaultLoader.Context(DefaultContextVersion)
	require.NoError(t, err)
	ctx, ok := raw.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "https://schema.org/", ctx["@vocab"])
}
