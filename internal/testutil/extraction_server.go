// Package testutil provides a fake extraction service and PDF fixtures.
package testutil

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
)

// DefaultColumns are the columns the fake service reports for every upload.
var DefaultColumns = []string{"Title", "Author", "Summary", "Key Points", "Date"}

type extractedRecord struct {
	Title     string `csv:"Title"`
	Author    string `csv:"Author"`
	Summary   string `csv:"Summary"`
	KeyPoints string `csv:"Key Points"`
	Date      string `csv:"Date"`
}

type storedFile struct {
	name      string
	mediaType string
	data      []byte
	raw       []byte
	filtered  []byte
}

// GenerateRequest is a request received by the fake /generate_csv endpoint.
type GenerateRequest struct {
	FileID  string   `json:"file_id"`
	Columns []string `json:"columns"`
}

// ExtractionServer mimics the extraction service endpoints.
type ExtractionServer struct {
	*httptest.Server

	UploadStatus   atomic.Int32
	GenerateStatus atomic.Int32

	uploads     atomic.Int32
	generations atomic.Int32

	mu        sync.Mutex
	files     map[string]*storedFile
	generated []GenerateRequest
	omitCols  bool
}

func NewExtractionServer() *ExtractionServer {
	s := &ExtractionServer{files: make(map[string]*storedFile)}

	r := chi.NewRouter()
	r.Post("/upload", s.upload)
	r.Post("/generate_csv", s.generate)
	r.Get("/download/{file_id}", s.download(func(f *storedFile) []byte { return f.raw }))
	r.Get("/download_filtered/{file_id}", s.download(func(f *storedFile) []byte { return f.filtered }))

	s.Server = httptest.NewServer(r)

	return s
}

// OmitColumns makes uploads answer without available_columns.
func (s *ExtractionServer) OmitColumns() {
	s.mu.Lock()
	s.omitCols = true
	s.mu.Unlock()
}

func (s *ExtractionServer) Uploads() int {
	return int(s.uploads.Load())
}

func (s *ExtractionServer) Generations() int {
	return int(s.generations.Load())
}

func (s *ExtractionServer) GenerateRequests() []GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]GenerateRequest(nil), s.generated...)
}

// UploadedMediaType returns the part Content-Type received for fileID.
func (s *ExtractionServer) UploadedMediaType(fileID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[fileID]; ok {
		return f.mediaType
	}

	return ""
}

func (s *ExtractionServer) UploadedData(fileID string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[fileID]; ok {
		return f.data
	}

	return nil
}

func (s *ExtractionServer) upload(w http.ResponseWriter, r *http.Request) {
	s.uploads.Add(1)

	if status := s.UploadStatus.Load(); status != 0 {
		http.Error(w, "upload failed", int(status))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if mediaType != "application/pdf" {
		http.Error(w, "Invalid file type. Only PDF allowed.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	raw, err := csvutil.Marshal([]extractedRecord{{
		Title:     header.Filename,
		Author:    "AI Generated",
		Summary:   "PDF processed successfully",
		KeyPoints: "Extracted data",
		Date:      "2026-01-04",
	}})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.files[id] = &storedFile{name: header.Filename, mediaType: mediaType, data: data, raw: raw}
	omit := s.omitCols
	s.mu.Unlock()

	resp := map[string]any{"file_id": id}
	if !omit {
		resp["available_columns"] = DefaultColumns
	}

	writeJSON(w, resp)
}

func (s *ExtractionServer) generate(w http.ResponseWriter, r *http.Request) {
	s.generations.Add(1)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generated = append(s.generated, req)

	if status := s.GenerateStatus.Load(); status != 0 {
		http.Error(w, "generation failed", int(status))
		return
	}

	f, ok := s.files[req.FileID]
	if !ok || len(req.Columns) == 0 {
		http.Error(w, "file_id and columns are required", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := writeFilteredCSV(&buf, f.name, req.Columns); err != nil {
		http.Error(w, "failed to write csv: "+err.Error(), http.StatusInternalServerError)
		return
	}
	f.filtered = buf.Bytes()

	writeJSON(w, map[string]string{"csv_download_url": "/download_filtered/" + req.FileID})
}

func (s *ExtractionServer) download(pick func(*storedFile) []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.files[chi.URLParam(r, "file_id")]
		var data []byte
		if ok {
			data = pick(f)
		}
		s.mu.Unlock()

		if data == nil {
			http.Error(w, "CSV file not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Write(data)
	}
}

// writeFilteredCSV writes one row where only Title has a known value.
func writeFilteredCSV(w io.Writer, name string, columns []string) error {
	cw := csv.NewWriter(w)

	row := make([]string, len(columns))
	for i, c := range columns {
		if strings.EqualFold(c, "Title") {
			row[i] = name
		}
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	cw.Flush()

	return cw.Error()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
