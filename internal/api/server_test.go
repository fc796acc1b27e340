package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflat/internal/flatten"
)

func setupServer(t *testing.T) *fiber.App {
	t.Helper()

	return NewServer(DefaultServerConfig(), flatten.New(flatten.Config{}), zerolog.Nop()).App()
}

func household(t *testing.T) []byte {
	t.Helper()

	data, err := os.ReadFile("testdata/household.json")
	require.NoError(t, err)

	return data
}

func do(t *testing.T, app *fiber.App, method, path, contentType string, body []byte) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, out
}

func TestServer_Health(t *testing.T) {
	status, body := do(t, setupServer(t), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestServer_Flatten(t *testing.T) {
	status, body := do(t, setupServer(t), http.MethodPost, "/api/v1/flatten", "application/json", household(t))
	require.Equal(t, http.StatusOK, status, string(body))

	var resp flattenResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	assert.Equal(t, "aHhSurvey01", resp.UID)
	assert.Equal(t, []string{
		"start", "end", "name__hh", "name__hh__member", "age", "consent", "regions", "photo", "name", "Comments",
	}, resp.Headers)
	assert.Len(t, resp.Fields, 9)

	require.Len(t, resp.Columns, len(resp.Headers))
	assert.Equal(t, "reserved", resp.Columns[0].Kind)
	assert.Nil(t, resp.Columns[0].FieldIndex)
	assert.Equal(t, "extra", resp.Columns[9].Kind)
	assert.Nil(t, resp.Columns[9].FieldIndex)

	for _, c := range resp.Columns[2:9] {
		assert.Equal(t, "question", c.Kind)
		require.NotNil(t, c.FieldIndex, c.Header)
	}

	photo := resp.Columns[7]
	assert.Equal(t, "photo", photo.Header)
	assert.Equal(t, "photo", resp.Fields[*photo.FieldIndex].Path[0])

	member := resp.Columns[3]
	assert.Equal(t, "name__hh__member", member.Header)
	assert.Equal(t, []string{"hh", "member", "name"}, resp.Fields[*member.FieldIndex].Path)
	require.Len(t, resp.ChoiceColumns, 1)
	assert.Equal(t, "consent", resp.ChoiceColumns[0].Header)
	assert.Len(t, resp.Catalog, 8)
	assert.Len(t, resp.XMLRows, 16)

	var codes []string
	for _, d := range resp.Diagnostics {
		codes = append(codes, d.Code)
	}

	assert.Contains(t, codes, "choices_not_found")
	assert.Contains(t, codes, "metadata_skipped")
}

func TestServer_FlattenYAML(t *testing.T) {
	yamlForm := []byte(`
survey:
  - type: begin_group
    name: g1
  - type: text
    name: q1
  - type: end_group
  - type: text
    name: q1
`)

	status, body := do(t, setupServer(t), http.MethodPost, "/api/v1/flatten", "application/yaml", yamlForm)
	require.Equal(t, http.StatusOK, status, string(body))

	var resp flattenResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, []string{"start", "end", "q1__g1", "q1", "Comments"}, resp.Headers)
	assert.NotNil(t, resp.Diagnostics)
}

func TestServer_FlattenErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "{survey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, setupServer(t), http.MethodPost, "/api/v1/flatten", "application/json", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestServer_Fragments(t *testing.T) {
	req, err := json.Marshal(map[string]any{
		"form": json.RawMessage(household(t)),
		"rows": []map[string]string{
			{"name__hh__member": "Jane", "age": "7"},
		},
	})
	require.NoError(t, err)

	status, body := do(t, setupServer(t), http.MethodPost, "/api/v1/fragments", "application/json", req)
	require.Equal(t, http.StatusOK, status, string(body))

	var resp fragmentsResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	require.Len(t, resp.Rows, 1)
	require.Len(t, resp.Rows[0], 2)
	assert.Equal(t, "name__hh__member", resp.Rows[0][0].Header)
	assert.Equal(t, "hh/member/name", resp.Rows[0][0].Path)
	assert.Equal(t, "<hh><member><name>Jane</name></member></hh>", resp.Rows[0][0].XML)
	assert.Equal(t, "age", resp.Rows[0][1].Header)
}

func TestServer_FragmentsMissingForm(t *testing.T) {
	status, _ := do(t, setupServer(t), http.MethodPost, "/api/v1/fragments", "application/json", []byte(`{"rows":[]}`))
	assert.Equal(t, http.StatusBadRequest, status)
}
