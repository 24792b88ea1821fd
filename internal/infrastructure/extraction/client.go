package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/kurochkinivan/pdf2csv/internal/config"
	"github.com/kurochkinivan/pdf2csv/internal/domain"
)

const (
	uploadPath   = "/upload"
	generatePath = "/generate_csv"
	fileField    = "file"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client talks to the extraction service that turns PDFs into CSV files.
type Client struct {
	log        *slog.Logger
	baseURL    *url.URL
	httpClient *http.Client
}

func New(log *slog.Logger, cfg config.Extraction) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimRight(cfg.ServerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}

	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", baseURL.Scheme)
	}

	return &Client{
		log:     log,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}, nil
}

type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Upload sends doc as a multipart form and returns the extraction result.
func (c *Client) Upload(ctx context.Context, doc *domain.Document) (*domain.Extraction, error) {
	body, contentType := c.multipartBody(doc)
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ResolveURL(uploadPath), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var extraction domain.Extraction
	if err := json.NewDecoder(resp.Body).Decode(&extraction); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	if extraction.FileID == "" {
		return nil, errors.New("upload response has no file_id")
	}

	return &extraction, nil
}

// multipartBody streams the document through a pipe so large files are not
// buffered in memory.
func (c *Client) multipartBody(doc *domain.Document) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeDocument(mw, doc))
	}()

	return pr, mw.FormDataContentType()
}

func writeDocument(mw *multipart.Writer, doc *domain.Document) (err error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fileField), quoteEscaper.Replace(doc.Name)))
	header.Set("Content-Type", doc.MediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}

	src, err := doc.Open()
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { err = errors.Join(err, src.Close()) }()

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return mw.Close()
}

type generateRequest struct {
	FileID  string   `json:"file_id"`
	Columns []string `json:"columns"`
}

// GenerateCSV asks the service to build the filtered CSV for fileID. The
// response body is not interpreted.
func (c *Client) GenerateCSV(ctx context.Context, fileID string, columns []string) error {
	payload, err := json.Marshal(generateRequest{FileID: fileID, Columns: columns})
	if err != nil {
		return fmt.Errorf("failed to encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ResolveURL(generatePath), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Download fetches the artifact at target, a service-relative download path,
// and copies it to w.
func (c *Client) Download(ctx context.Context, target string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolveURL(target), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read download body: %w", err)
	}

	return n, nil
}

// ResolveURL turns an escaped service-relative path into an absolute URL.
func (c *Client) ResolveURL(path string) string {
	return strings.TrimRight(c.baseURL.String(), "/") + path
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.log.DebugContext(req.Context(), "sending request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		return nil, &StatusError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
		}
	}

	return resp, nil
}
