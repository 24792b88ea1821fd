package workflow

import (
	"context"
	"log/slog"

	"github.com/kurochkinivan/pdf2csv/internal/domain"
)

// Generate asks the extraction service to build a CSV restricted to the
// selected columns of the uploaded document. On failure the uploaded file and
// the selection are kept so the user can retry.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()

	if werr := c.checkGenerate(); werr != nil {
		c.fail(werr)
		c.mu.Unlock()

		return werr
	}

	fileID := c.fileID
	columns := c.selection.Columns()
	epoch := c.begin()

	c.mu.Unlock()

	log := c.log.With(slog.String("file_id", fileID), slog.Any("columns", columns))

	log.InfoContext(ctx, "generating filtered csv")

	err := c.extractor.GenerateCSV(ctx, fileID, columns)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		log.DebugContext(ctx, "discarding stale generate response")
		return domain.ErrSuperseded
	}

	if err != nil {
		log.ErrorContext(ctx, "failed to generate filtered csv", slog.String("err", err.Error()))

		werr := domain.TransportError(msgGenerateFailed, err)
		c.fail(werr)

		return werr
	}

	c.filtered = true
	c.succeed()

	log.InfoContext(ctx, "filtered csv generated")

	return nil
}

func (c *Controller) checkGenerate() *domain.WorkflowError {
	if c.fileID == "" {
		return domain.ValidationError(msgNoSession, domain.ErrNoSession)
	}

	if c.selection.Len() == 0 {
		return domain.ValidationError(msgEmptySelection, domain.ErrEmptySelection)
	}

	return nil
}
