// Package kobo talks to the KoboToolbox asset API and the KoBoCAT
// submission endpoint.
package kobo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"formflat/internal/form"
)

const (
	// DefaultTimeout applies when ClientConfig.Timeout is zero.
	DefaultTimeout = 60 * time.Second

	submissionField    = "xml_submission_file"
	submissionFilename = "submission.xml"
	maxErrorBody       = 512
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("kobo: token rejected")
	// ErrUnexpectedStatus is returned for any other non-success response.
	ErrUnexpectedStatus = errors.New("kobo: unexpected status")
)

// StatusError carries the response of a failed request. It unwraps to
// ErrUnauthorized or ErrUnexpectedStatus.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("kobo: %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Unwrap maps 401 and 403 to ErrUnauthorized and any other status to
// ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}

	return ErrUnexpectedStatus
}

// ClientConfig holds configuration for the client.
type ClientConfig struct {
	ServerURL     string // KPI base, e.g. https://kf.kobotoolbox.org
	SubmissionURL string // KoBoCAT base, e.g. https://kc.kobotoolbox.org
	Token         string
	Timeout       time.Duration
	Logger        zerolog.Logger
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	serverURL     string
	submissionURL string
	token         string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("kobo: api token is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		serverURL:     strings.TrimRight(cfg.ServerURL, "/"),
		submissionURL: strings.TrimRight(cfg.SubmissionURL, "/"),
		token:         cfg.Token,
		httpClient:    hc,
		logger:        cfg.Logger.With().Str("component", "kobo-client").Logger(),
	}, nil
}

// FetchAsset downloads the asset uid. It returns the raw JSON, for
// snapshots, alongside the parsed asset.
func (c *Client) FetchAsset(ctx context.Context, uid string) ([]byte, *form.Asset, error) {
	endpoint := fmt.Sprintf("%s/api/v2/assets/%s/?format=json", c.serverURL, url.PathEscape(uid))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch asset %s: %w", uid, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read asset %s: %w", uid, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &StatusError{Op: "fetch asset " + uid, Status: resp.StatusCode, Body: snippet(raw)}
	}

	asset, err := form.Parse(raw, form.FormatJSON)
	if err != nil {
		return nil, nil, err
	}

	if asset.UID == "" {
		asset.UID = uid
	}

	c.logger.Debug().
		Str("uid", uid).
		Int("nodes", len(asset.Content.Survey)).
		Int("choices", len(asset.Content.Choices)).
		Dur("took", time.Since(start)).
		Msg("Fetched asset")

	return raw, asset, nil
}

// Attachment is a file sent next to a submission.
type Attachment struct {
	Name string // filename referenced from the XML
	Path string
}

// Submission is one XML instance and its optional attachment.
type Submission struct {
	XML        []byte
	Attachment *Attachment
}

// Submit posts s to the /submission endpoint. Only 201 Created counts as
// success.
func (c *Client) Submit(ctx context.Context, s Submission) error {
	body, contentType, err := encodeSubmission(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submissionURL+"/submission", body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: "submit", Status: resp.StatusCode, Body: snippet(raw)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.token)
}

func encodeSubmission(s Submission) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writePart(w, submissionField, submissionFilename, "text/xml", bytes.NewReader(s.XML)); err != nil {
		return nil, "", err
	}

	if a := s.Attachment; a != nil {
		f, err := os.Open(a.Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open attachment: %w", err)
		}

		err = writePart(w, a.Name, a.Name, contentTypeOf(a.Path), f)
		f.Close()

		if err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, field, filename, contentType string, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", field, err)
	}

	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to write part %s: %w", field, err)
	}

	return nil
}

func contentTypeOf(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}

	return "application/octet-stream"
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}

	return s
}
