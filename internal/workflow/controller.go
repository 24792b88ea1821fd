package workflow

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/kurochkinivan/pdf2csv/internal/domain"
)

const (
	msgNotPDF         = "Please upload a PDF file."
	msgFileTooLarge   = "File size exceeds 50MB limit."
	msgUploadFailed   = "Failed to upload/process file. Please try again."
	msgNoSession      = "Upload a PDF before generating a CSV."
	msgEmptySelection = "Select at least one column to generate CSV."
	msgGenerateFailed = "Failed to generate filtered CSV."
)

// Controller owns one upload session and its column selection. It is safe for
// concurrent use; network calls never hold the lock.
type Controller struct {
	log       *slog.Logger
	extractor Extractor

	mu        sync.Mutex
	epoch     uint64
	state     domain.State
	document  *domain.Document
	fileID    string
	catalog   []string
	selection *Selection
	filtered  bool
	errMsg    string
}

func NewController(log *slog.Logger, extractor Extractor) *Controller {
	return &Controller{
		log:       log,
		extractor: extractor,
		state:     domain.StateIdle,
		selection: NewSelection(),
	}
}

// SubmitCandidate validates doc and, if accepted, replaces the session and
// uploads it. Rejected documents leave the current session in place.
func (c *Controller) SubmitCandidate(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return c.reject(ctx, doc, err)
	}

	c.mu.Lock()
	c.clearSession()
	c.document = doc
	epoch := c.begin()
	c.mu.Unlock()

	return c.upload(ctx, epoch, doc)
}

func (c *Controller) upload(ctx context.Context, epoch uint64, doc *domain.Document) error {
	log := c.log.With(slog.String("filename", doc.Name), slog.Int64("size", doc.Size))

	log.InfoContext(ctx, "uploading document")

	extraction, err := c.extractor.Upload(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		log.DebugContext(ctx, "discarding stale upload response")
		return domain.ErrSuperseded
	}

	if err != nil {
		log.ErrorContext(ctx, "failed to upload document", slog.String("err", err.Error()))

		werr := domain.TransportError(msgUploadFailed, err)
		c.fail(werr)

		return werr
	}

	c.fileID = extraction.FileID
	c.catalog = slices.Clone(extraction.AvailableColumns)
	c.filtered = false
	c.succeed()

	log.InfoContext(ctx, "document processed",
		slog.String("file_id", c.fileID),
		slog.Int("available_columns", len(c.catalog)),
	)

	return nil
}

// Reset drops the session and returns to Idle. In-flight responses are
// discarded when they arrive.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.clearSession()
	c.state = domain.StateIdle
}

func (c *Controller) Toggle(column string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.Toggle(column)
}

func (c *Controller) AddFreeText(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.AddFreeText(raw)
}

func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.Clear()
}

func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Catalog returns the column names suggested for the current upload.
func (c *Controller) Catalog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.catalog)
}

func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := domain.Snapshot{
		State:          c.state,
		FileID:         c.fileID,
		Catalog:        slices.Clone(c.catalog),
		Selection:      c.selection.Columns(),
		ErrorMessage:   c.errMsg,
		DownloadTarget: domain.DownloadTarget(c.fileID, c.filtered),
		Busy:           c.state == domain.StateUploading,
	}

	if snapshot.Catalog == nil {
		snapshot.Catalog = []string{}
	}

	if snapshot.Selection == nil {
		snapshot.Selection = []string{}
	}

	if c.document != nil {
		snapshot.FileName = c.document.Name
	}

	return snapshot
}

// begin starts a network operation. Must be called with mu held.
func (c *Controller) begin() uint64 {
	c.epoch++
	c.errMsg = ""
	c.state = domain.StateUploading

	return c.epoch
}

func (c *Controller) succeed() {
	c.errMsg = ""
	c.state = domain.StateProcessed
}

func (c *Controller) fail(err *domain.WorkflowError) {
	c.errMsg = err.Message
	c.state = domain.StateError
}

func (c *Controller) clearSession() {
	c.document = nil
	c.fileID = ""
	c.catalog = nil
	c.filtered = false
	c.errMsg = ""
	c.selection.Clear()
}

// RejectOversized records a too large rejection for an upload whose payload
// was cut off before it could be read in full. Like any rejection it leaves
// the current session in place and makes no network call.
func (c *Controller) RejectOversized(ctx context.Context, name string) error {
	return c.reject(ctx, &domain.Document{Name: name, Size: domain.MaxDocumentSize + 1}, domain.ErrFileTooLarge)
}

func (c *Controller) reject(ctx context.Context, doc *domain.Document, err error) error {
	werr := domain.ValidationError(rejectionMessage(err), err)

	c.mu.Lock()
	c.fail(werr)
	c.mu.Unlock()

	c.log.DebugContext(ctx, "document rejected",
		slog.String("filename", doc.Name),
		slog.String("media_type", doc.MediaType),
		slog.Int64("size", doc.Size),
	)

	return werr
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		return msgFileTooLarge
	default:
		return msgNotPDF
	}
}
