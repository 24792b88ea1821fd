package v1_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/kurochkinivan/pdf2csv/internal/config"
	v1 "github.com/kurochkinivan/pdf2csv/internal/controller/http/v1"
	"github.com/kurochkinivan/pdf2csv/internal/domain"
	"github.com/kurochkinivan/pdf2csv/internal/infrastructure/extraction"
	"github.com/kurochkinivan/pdf2csv/internal/session"
	"github.com/kurochkinivan/pdf2csv/internal/testutil"
	"github.com/kurochkinivan/pdf2csv/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	api     *httptest.Server
	router  http.Handler
	service *testutil.ExtractionServer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.DiscardHandler)

	service := testutil.NewExtractionServer()
	t.Cleanup(service.Close)

	client, err := extraction.New(log, config.Extraction{ServerURL: service.URL})
	require.NoError(t, err)

	registry := session.NewRegistry(log, time.Hour, time.Minute, func() *workflow.Controller {
		return workflow.NewController(log, client)
	})

	router := v1.NewRouter(registry, client)

	api := httptest.NewServer(router)
	t.Cleanup(api.Close)

	return &testEnv{api: api, router: router, service: service}
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()

	resp, err := http.Post(e.api.URL+"/api/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created v1.CreateSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, domain.StateIdle, created.Session.State)

	return created.SessionID
}

func (e *testEnv) sessionURL(id, path string) string {
	return e.api.URL + "/api/v1/sessions/" + id + path
}

func (e *testEnv) uploadFile(t *testing.T, id, name, mediaType string, data []byte) domain.Snapshot {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(e.sessionURL(id, "/file"), mw.FormDataContentType(), &body)
	require.NoError(t, err)

	return decodeSnapshot(t, resp)
}

func (e *testEnv) do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) domain.Snapshot {
	t.Helper()
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))

	return snapshot
}

func TestSessionsHandler_FullWorkflow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	snapshot := env.uploadFile(t, id, "report.pdf", domain.MediaTypePDF, testutil.PDF(t, "Title: Report"))
	require.Equal(t, domain.StateProcessed, snapshot.State)
	require.NotEmpty(t, snapshot.FileID)
	assert.Equal(t, "report.pdf", snapshot.FileName)
	assert.Equal(t, testutil.DefaultColumns, snapshot.Catalog)
	assert.Equal(t, "/download/"+snapshot.FileID, snapshot.DownloadTarget)

	fileID := snapshot.FileID

	snapshot = decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/selection/toggle"), v1.ColumnRequest{Column: "Title"}))
	assert.Equal(t, []string{"Title"}, snapshot.Selection)

	snapshot = decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/selection/columns"), v1.ColumnRequest{Column: "  Total "}))
	assert.Equal(t, []string{"Title", "Total"}, snapshot.Selection)

	snapshot = decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/generate"), nil))
	assert.Equal(t, domain.StateProcessed, snapshot.State)
	assert.Equal(t, "/download_filtered/"+fileID, snapshot.DownloadTarget)
	assert.Equal(t, []testutil.GenerateRequest{{FileID: fileID, Columns: []string{"Title", "Total"}}},
		env.service.GenerateRequests())

	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := noRedirect.Get(env.sessionURL(id, "/download"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, env.service.URL+"/download_filtered/"+fileID, resp.Header.Get("Location"))

	// following the redirect fetches the csv from the service
	resp, err = http.Get(env.sessionURL(id, "/download"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	artifact, err := extraction.Inspect(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Total"}, artifact.Columns)

	snapshot = decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/reset"), nil))
	assert.Equal(t, domain.StateIdle, snapshot.State)
	assert.Empty(t, snapshot.FileID)
	assert.Empty(t, snapshot.Selection)
}

func TestSessionsHandler_SubmitFile_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	snapshot := env.uploadFile(t, id, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, domain.StateError, snapshot.State)
	assert.Equal(t, "Please upload a PDF file.", snapshot.ErrorMessage)
	assert.Zero(t, env.service.Uploads())
}

func TestSessionsHandler_SubmitFile_UploadFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.service.UploadStatus.Store(http.StatusInternalServerError)
	id := env.createSession(t)

	snapshot := env.uploadFile(t, id, "report.pdf", domain.MediaTypePDF, []byte("%PDF-1.4"))
	assert.Equal(t, domain.StateError, snapshot.State)
	assert.Empty(t, snapshot.FileID)
	assert.Equal(t, "Failed to upload/process file. Please try again.", snapshot.ErrorMessage)

	resp, err := http.Get(env.sessionURL(id, "/download"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionsHandler_SubmitFile_OversizedContentLength(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/file", strings.NewReader("never read"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.ContentLength = 2 * domain.MaxDocumentSize

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	snapshot := decodeSnapshot(t, rec.Result())
	assert.Equal(t, domain.StateError, snapshot.State)
	assert.Equal(t, "File size exceeds 50MB limit.", snapshot.ErrorMessage)
	assert.Zero(t, env.service.Uploads())
}

func TestSessionsHandler_SubmitFile_OversizedStream(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="huge.pdf"`)
		header.Set("Content-Type", domain.MediaTypePDF)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.CopyN(part, zeros{}, domain.MaxDocumentSize+2<<20); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()
	t.Cleanup(func() { pr.Close() })

	// unknown length, so only the body limit can stop the read
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/file", pr)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	snapshot := decodeSnapshot(t, rec.Result())
	assert.Equal(t, domain.StateError, snapshot.State)
	assert.Equal(t, "File size exceeds 50MB limit.", snapshot.ErrorMessage)
	assert.Zero(t, env.service.Uploads())
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestSessionsHandler_SubmitFile_MissingField(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.sessionURL(id, "/file"), mw.FormDataContentType(), &body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(env.sessionURL(id, "/file"), "text/plain", strings.NewReader("raw"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionsHandler_Generate_WithoutUpload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/selection/columns"), v1.ColumnRequest{Column: "Total"}))

	snapshot := decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/generate"), nil))
	assert.Equal(t, domain.StateError, snapshot.State)
	assert.NotEmpty(t, snapshot.ErrorMessage)
	assert.Zero(t, env.service.Generations())
}

func TestSessionsHandler_ClearSelection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	decodeSnapshot(t, env.do(t, http.MethodPost, env.sessionURL(id, "/selection/toggle"), v1.ColumnRequest{Column: "A"}))

	snapshot := decodeSnapshot(t, env.do(t, http.MethodDelete, env.sessionURL(id, "/selection"), nil))
	assert.Empty(t, snapshot.Selection)
}

func TestSessionsHandler_InvalidColumnBody(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	resp, err := http.Post(env.sessionURL(id, "/selection/toggle"), "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionsHandler_UnknownSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, ""},
		{http.MethodDelete, ""},
		{http.MethodPost, "/generate"},
		{http.MethodPost, "/reset"},
		{http.MethodGet, "/download"},
	} {
		resp := env.do(t, tc.method, env.sessionURL("missing", tc.path), nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestSessionsHandler_DeleteSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	id := env.createSession(t)

	resp := env.do(t, http.MethodDelete, env.sessionURL(id, ""), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, env.sessionURL(id, ""), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
