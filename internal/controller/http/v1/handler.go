package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kurochkinivan/pdf2csv/internal/domain"
	"github.com/kurochkinivan/pdf2csv/internal/workflow"
)

const (
	fileField     = "file"
	maxFormMemory = 32 << 20

	// room for multipart boundaries and part headers on top of the document
	maxFormOverhead = 1 << 20
	maxUploadBody   = domain.MaxDocumentSize + maxFormOverhead
)

type SessionRegistry interface {
	Create() (string, *workflow.Controller)
	Get(id string) (*workflow.Controller, bool)
	Delete(id string) bool
}

type URLResolver interface {
	ResolveURL(path string) string
}

type SessionsHandler struct {
	sessions SessionRegistry
	resolver URLResolver
}

func NewSessionsHandler(sessions SessionRegistry, resolver URLResolver) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		resolver: resolver,
	}
}

type CreateSessionResponse struct {
	SessionID string          `json:"session_id"`
	Session   domain.Snapshot `json:"session"`
}

type ColumnRequest struct {
	Column string `json:"column"`
}

func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, controller := h.sessions.Create()

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: id,
		Session:   controller.Snapshot(),
	})
}

func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "session_id")) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitFile passes the uploaded part to the workflow. Media type and size
// checks belong to the workflow; bodies that cannot fit a valid document are
// cut off early and reported as too large.
func (h *SessionsHandler) SubmitFile(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	if r.ContentLength > maxUploadBody {
		h.rejectOversized(w, r, controller)
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rejectOversized(w, r, controller)
			return
		}

		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[fileField]
	if len(headers) == 0 {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}

	// workflow errors are recovered into the snapshot
	_ = controller.SubmitCandidate(r.Context(), domain.DocumentFromMultipart(headers[0]))

	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) rejectOversized(w http.ResponseWriter, r *http.Request, controller *workflow.Controller) {
	_ = controller.RejectOversized(r.Context(), "")

	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) ToggleColumn(w http.ResponseWriter, r *http.Request) {
	h.withColumn(w, r, (*workflow.Controller).Toggle)
}

func (h *SessionsHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	h.withColumn(w, r, (*workflow.Controller).AddFreeText)
}

func (h *SessionsHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	controller.Clear()
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	_ = controller.Generate(r.Context())

	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	controller.Reset()
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// Download sends the browser to the extraction service for the current
// download target.
func (h *SessionsHandler) Download(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	target := controller.Snapshot().DownloadTarget
	if target == "" {
		http.Error(w, "nothing to download", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, h.resolver.ResolveURL(target), http.StatusTemporaryRedirect)
}

func (h *SessionsHandler) withColumn(w http.ResponseWriter, r *http.Request, apply func(*workflow.Controller, string)) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	var req ColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	apply(controller, req.Column)
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

func (h *SessionsHandler) controller(w http.ResponseWriter, r *http.Request) (*workflow.Controller, bool) {
	controller, ok := h.sessions.Get(chi.URLParam(r, "session_id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}

	return controller, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
