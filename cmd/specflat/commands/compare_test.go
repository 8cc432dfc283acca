package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersOpenAPI = "../../../testdata/users/openapi.yaml"

func TestHandleCompare_Args(t *testing.T) {
	captureOutput(t)

	err := HandleCompare(t.Context(), []string{usersAPI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a document and an OpenAPI document")

	err = HandleCompare(t.Context(), []string{usersAPI, filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDiscrepancies)
}

func TestHandleCompare_Text(t *testing.T) {
	out, errOut := captureOutput(t)
	err := HandleCompare(t.Context(), []string{usersAPI, usersOpenAPI})
	require.ErrorIs(t, err, ErrDiscrepancies)

	assert.Equal(t, "Missing path /users/{userId}/orders\n"+
		"Missing method DELETE for path /users/{userId}\n"+
		"Missing parameter in GET /users: limit\n"+
		"Missing 200 response example in GET /users/{userId}\n"+
		"Missing 200 response example in GET /health\n", out.String())
	assert.Contains(t, errOut.String(), "Discrepancies found: 5")
}

func TestHandleCompare_JSON(t *testing.T) {
	out, _ := captureOutput(t)
	err := HandleCompare(t.Context(), []string{"-q", "-format", "json", usersAPI, usersOpenAPI})
	require.ErrorIs(t, err, ErrDiscrepancies)

	var report struct {
		MissingPaths []struct {
			Path string `json:"path"`
		} `json:"missing_paths"`
		MissingParameters []struct {
			Path      string `json:"path"`
			Method    string `json:"method"`
			Parameter string `json:"parameter"`
		} `json:"missing_parameters"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.MissingPaths, 1)
	assert.Equal(t, "/users/{userId}/orders", report.MissingPaths[0].Path)
	require.Len(t, report.MissingParameters, 1)
	assert.Equal(t, "get", report.MissingParameters[0].Method)
	assert.Equal(t, "limit", report.MissingParameters[0].Parameter)
}

func TestHandleCompare_NoDiscrepancies(t *testing.T) {
	out, errOut := captureOutput(t)
	dir := t.TempDir()
	api := filepath.Join(dir, "api.raml")
	target := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(api, []byte("/a:\n  post:\n"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("openapi: 3.0.3\npaths:\n  /a:\n    post: {}\n"), 0o600))

	require.NoError(t, HandleCompare(t.Context(), []string{api, target}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "No discrepancies found.")
}
