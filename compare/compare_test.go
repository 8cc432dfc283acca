package compare

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
	"github.com/erraggy/specflat/tree"
)

func parse(t *testing.T, text string) *tree.Map {
	t.Helper()
	l, err := loader.New(&source.FSSource{FS: fstest.MapFS{}})
	require.NoError(t, err)
	doc, err := l.LoadBytes(context.Background(), "", []byte(text))
	require.NoError(t, err)
	return doc.Root
}

func flattenText(t *testing.T, text string) *flatten.Result {
	t.Helper()
	result, err := flatten.New().Flatten(parse(t, text))
	require.NoError(t, err)
	return result
}

const flattened = `
/users:
  get:
    queryParameters:
      page:
        description: Page number
    responses:
      200:
        description: A list of users.
  post:
/posts:
  get:
`

const target = `
openapi: 3.0.0
info:
  title: Test API
  version: 1.0.0
paths:
  /users:
    get:
      summary: Get users
      parameters: []
      responses:
        "200":
          description: A list of users.
          content:
            application/json: {}
`

func TestCompareReportsEveryCategory(t *testing.T) {
	report := Compare(flattenText(t, flattened), parse(t, target))

	assert.Equal(t, []Discrepancy{{Category: CategoryPath, Path: "/posts"}}, report.MissingPaths)
	assert.Equal(t, []Discrepancy{{Category: CategoryMethod, Path: "/users", Method: "post"}}, report.MissingMethods)
	assert.Equal(t, []Discrepancy{{Category: CategoryParameter, Path: "/users", Method: "get", Parameter: "page"}}, report.MissingParameters)
	assert.Equal(t, []Discrepancy{{Category: CategoryExample, Path: "/users", Method: "get"}}, report.MissingExamples)
	assert.True(t, report.HasDiscrepancies())
	assert.Equal(t, 4, report.Count())
}

func TestCompareJSON(t *testing.T) {
	report := Compare(flattenText(t, flattened), parse(t, target))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"missing_paths": [{"path": "/posts"}],
		"missing_methods": [{"path": "/users", "method": "post"}],
		"missing_parameters": [{"path": "/users", "method": "get", "parameter": "page"}],
		"missing_examples": [{"path": "/users", "method": "get"}]
	}`, string(data))
}

func TestCompareNoDiscrepancies(t *testing.T) {
	result := flattenText(t, `
/users:
  /{id}:
    get:
      queryParameters:
        fields: {}
      responses:
        200:
          body:
            application/json:
              example: {id: 1}
`)
	report := Compare(result, parse(t, `
paths:
  /users/{id}:
    parameters:
      - name: fields
        in: query
    get:
      responses:
        "200":
          content:
            application/json:
              examples:
                one:
                  value: {id: 1}
`))

	assert.False(t, report.HasDiscrepancies())
	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{"missing_paths": [], "missing_methods": [], "missing_parameters": [], "missing_examples": []}`, string(data))
}

func TestCompareMissingPathReportedOnce(t *testing.T) {
	result := flattenText(t, "/a:\n  get:\n  post:\n  delete:\n")
	report := Compare(result, parse(t, "paths: {}\n"))
	assert.Equal(t, []Discrepancy{{Category: CategoryPath, Path: "/a"}}, report.MissingPaths)
	assert.Empty(t, report.MissingMethods)
}

func TestCompareIgnoresNonQueryParameters(t *testing.T) {
	result := flattenText(t, "/a:\n  get:\n    queryParameters:\n      id: {}\n      q: {}\n")
	report := Compare(result, parse(t, `
paths:
  /a:
    get:
      parameters:
        - name: id
          in: path
        - $ref: '#/components/parameters/Q'
        - name: q
          in: query
`))
	assert.Equal(t, []Discrepancy{{Category: CategoryParameter, Path: "/a", Method: "get", Parameter: "id"}}, report.MissingParameters)
}

func TestCompareMissingTargetPaths(t *testing.T) {
	report := Compare(flattenText(t, "/a:\n  get:\n"), parse(t, "openapi: 3.0.0\n"))
	assert.Len(t, report.MissingPaths, 1)
}

func TestDiscrepancyString(t *testing.T) {
	tests := []struct {
		d    Discrepancy
		want string
	}{
		{Discrepancy{Category: CategoryPath, Path: "/posts"}, "Missing path /posts"},
		{Discrepancy{Category: CategoryMethod, Path: "/users", Method: "post"}, "Missing method POST for path /users"},
		{Discrepancy{Category: CategoryParameter, Path: "/users", Method: "get", Parameter: "page"}, "Missing parameter in GET /users: page"},
		{Discrepancy{Category: CategoryExample, Path: "/users", Method: "get"}, "Missing 200 response example in GET /users"},
	}
	for _, tt := range tests {
		t.Run(string(tt.d.Category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestCompareTestdata(t *testing.T) {
	ctx := context.Background()
	result, err := flatten.FlattenWithOptions(ctx, flatten.WithFilePath("../testdata/users/api.raml"))
	require.NoError(t, err)
	openapi, err := LoadTarget(ctx, "../testdata/users/openapi.yaml")
	require.NoError(t, err)

	report := Compare(result, openapi)
	var lines []string
	for _, d := range report.All() {
		lines = append(lines, d.String())
	}
	assert.Equal(t, []string{
		"Missing path /users/{userId}/orders",
		"Missing method DELETE for path /users/{userId}",
		"Missing parameter in GET /users: limit",
		"Missing 200 response example in GET /users/{userId}",
		"Missing 200 response example in GET /health",
	}, lines)
}

func TestLoadTargetMissingFile(t *testing.T) {
	_, err := LoadTarget(context.Background(), "../testdata/users/absent.yaml")
	assert.Error(t, err)
}

func TestParseTarget(t *testing.T) {
	openapi, err := ParseTarget(context.Background(), []byte(target))
	require.NoError(t, err)
	assert.True(t, openapi.GetMap("paths").Has("/users"))

	_, err = ParseTarget(context.Background(), []byte("- not\n- a mapping\n"))
	assert.Error(t, err)
}
