package kobo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assetJSON = `{
  "uid": "aForm1",
  "name": "Visit",
  "content": {
    "survey": [{"type": "text", "name": "q1", "label": ["Question"]}],
    "choices": []
  }
}`

func newClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	c, err := NewClient(ClientConfig{
		ServerURL:     srv.URL + "/",
		SubmissionURL: srv.URL,
		Token:         "tok",
		Logger:        zerolog.Nop(),
	})
	require.NoError(t, err)

	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(ClientConfig{ServerURL: "http://x"})
	assert.Error(t, err)
}

func TestClient_FetchAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/assets/aForm1/", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, assetJSON)
	}))
	defer srv.Close()

	raw, asset, err := newClient(t, srv).FetchAsset(context.Background(), "aForm1")
	require.NoError(t, err)

	assert.JSONEq(t, assetJSON, string(raw))
	assert.Equal(t, "aForm1", asset.UID)
	require.Len(t, asset.Content.Survey, 1)
	assert.Equal(t, "q1", asset.Content.Survey[0].Name)
}

func TestClient_FetchAsset_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrUnexpectedStatus},
		{"server error", http.StatusInternalServerError, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"detail":"nope"}`, tt.status)
			}))
			defer srv.Close()

			_, _, err := newClient(t, srv).FetchAsset(context.Background(), "aForm1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
			assert.Contains(t, se.Body, "nope")
		})
	}
}

func TestClient_Submit(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "id.png")
	require.NoError(t, os.WriteFile(photo, []byte("png-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submission", r.URL.Path)
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		xmlFiles := r.MultipartForm.File["xml_submission_file"]
		require.Len(t, xmlFiles, 1)
		assert.Equal(t, "submission.xml", xmlFiles[0].Filename)
		assert.Equal(t, "text/xml", xmlFiles[0].Header.Get("Content-Type"))

		f, err := xmlFiles[0].Open()
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "<x/>", string(body))

		att := r.MultipartForm.File["id.png"]
		require.Len(t, att, 1)
		assert.Equal(t, "image/png", att[0].Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newClient(t, srv).Submit(context.Background(), Submission{
		XML:        []byte("<x/>"),
		Attachment: &Attachment{Name: "id.png", Path: photo},
	})
	assert.NoError(t, err)
}

func TestClient_Submit_RequiresCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "duplicate")
	}))
	defer srv.Close()

	err := newClient(t, srv).Submit(context.Background(), Submission{XML: []byte("<x/>")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestClient_Submit_MissingAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request should not be sent")
	}))
	defer srv.Close()

	err := newClient(t, srv).Submit(context.Background(), Submission{
		XML:        []byte("<x/>"),
		Attachment: &Attachment{Name: "a.jpg", Path: filepath.Join(t.TempDir(), "a.jpg")},
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
