package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFlattenFlags(t *testing.T) {
	fs, flags := SetupFlattenFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, FormatYAML, flags.Format)
		assert.Empty(t, flags.Output)
		assert.False(t, flags.Watch, "expected Watch to be false by default")
		assert.False(t, flags.Quiet, "expected Quiet to be false by default")
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"-format", "json", "-o", "out.json", "-watch", "-q", "-concurrency", "2", "-resolve-http", "-root", "specs", "-resource-traits", "api.raml"}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, FormatJSON, flags.Format)
		assert.Equal(t, "out.json", flags.Output)
		assert.True(t, flags.Watch)
		assert.True(t, flags.Quiet)
		assert.Equal(t, 2, flags.Load.Concurrency)
		assert.True(t, flags.Load.ResolveHTTP)
		assert.Equal(t, "specs", flags.Load.RootDir)
		assert.True(t, flags.Load.ResourceTraits)
		assert.Equal(t, "api.raml", fs.Arg(0))
	})
}

func TestHandleFlatten_NoArgs(t *testing.T) {
	captureOutput(t)
	assert.Error(t, HandleFlatten(t.Context(), []string{}))
}

func TestHandleFlatten_Help(t *testing.T) {
	_, errOut := captureOutput(t)
	assert.NoError(t, HandleFlatten(t.Context(), []string{"--help"}))
	assert.Contains(t, errOut.String(), "Usage: specflat flatten")
}

func TestHandleFlatten_InvalidFormat(t *testing.T) {
	captureOutput(t)
	err := HandleFlatten(t.Context(), []string{"-format", "text", usersAPI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestHandleFlatten_WatchRequiresOutput(t *testing.T) {
	captureOutput(t)
	err := HandleFlatten(t.Context(), []string{"-watch", usersAPI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-watch requires -o")

	err = HandleFlatten(t.Context(), []string{"-watch", "-o", filepath.Join(t.TempDir(), "out.yaml"), StdinFilePath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
}

func TestHandleFlatten_MissingFile(t *testing.T) {
	captureOutput(t)
	err := HandleFlatten(t.Context(), []string{filepath.Join(t.TempDir(), "missing.raml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flattening")
}

func TestHandleFlatten_YAMLToStdout(t *testing.T) {
	out, errOut := captureOutput(t)
	require.NoError(t, HandleFlatten(t.Context(), []string{usersAPI}))

	assert.Contains(t, out.String(), "paths:\n")
	assert.Contains(t, out.String(), "/users/{userId}/orders:")
	assert.Contains(t, errOut.String(), "Endpoints: 6")
	assert.Contains(t, errOut.String(), "Schemas: 2")
	assert.Contains(t, errOut.String(), "Documents loaded: 9")
	assert.Contains(t, errOut.String(), "Resource types: 2")
	assert.Contains(t, errOut.String(), "Traits: 2")
	assert.NotContains(t, errOut.String(), "Diagnostics:")
}

func TestHandleFlatten_JSONToFile(t *testing.T) {
	out, errOut := captureOutput(t)
	output := filepath.Join(t.TempDir(), "flat.json")
	require.NoError(t, HandleFlatten(t.Context(), []string{"-format", "json", "-o", output, usersAPI}))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Output written to: "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc struct {
		Paths   map[string]map[string]any `json:"paths"`
		Schemas map[string]any            `json:"schemas"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Paths, 4)
	assert.Contains(t, doc.Paths["/users/{userId}"], "delete")
	assert.Contains(t, doc.Schemas, "User")
}

func TestHandleFlatten_QuietStdin(t *testing.T) {
	out, errOut := captureOutput(t)
	withStdin(t, "/a:\n  get:\n    is: [missing]\n")

	require.NoError(t, HandleFlatten(t.Context(), []string{"-q", "-format", "json", StdinFilePath}))
	assert.JSONEq(t, `{"paths": {"/a": {"get": {"parameters": {}, "responses": {}}}}, "schemas": {}}`, out.String())
	assert.Empty(t, errOut.String())
}

func TestHandleFlatten_ResourceTraits(t *testing.T) {
	const doc = "traits:\n  secured:\n    responses:\n      401: denied\n/a:\n  is: [secured]\n  get:\n"

	out, _ := captureOutput(t)
	withStdin(t, doc)
	require.NoError(t, HandleFlatten(t.Context(), []string{"-q", "-format", "json", StdinFilePath}))
	assert.JSONEq(t, `{"paths": {"/a": {"get": {"parameters": {}, "responses": {}}}}, "schemas": {}}`, out.String())

	out, _ = captureOutput(t)
	withStdin(t, doc)
	require.NoError(t, HandleFlatten(t.Context(), []string{"-q", "-format", "json", "-resource-traits", StdinFilePath}))
	assert.JSONEq(t, `{"paths": {"/a": {"get": {"parameters": {}, "responses": {"401": "denied"}}}}, "schemas": {}}`, out.String())
}

func TestHandleFlatten_ReportsDiagnostics(t *testing.T) {
	_, errOut := captureOutput(t)
	withStdin(t, "/a:\n  get:\n    is: [missing]\n")

	require.NoError(t, HandleFlatten(t.Context(), []string{StdinFilePath}))
	assert.Contains(t, errOut.String(), "Document: <stdin>")
	assert.Contains(t, errOut.String(), "Diagnostics:")
	assert.Contains(t, errOut.String(), "missing")
}

func TestHandleFlatten_Methods(t *testing.T) {
	out, _ := captureOutput(t)
	require.NoError(t, HandleFlatten(t.Context(), []string{"-q", "-format", "json", "-methods", "DELETE, post", usersAPI}))

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Len(t, doc.Paths, 2)
	assert.Contains(t, doc.Paths["/users"], "post")
	assert.Contains(t, doc.Paths["/users/{userId}"], "delete")

	err := HandleFlatten(t.Context(), []string{"-methods", "get,fetch", usersAPI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown methods: fetch")
}
