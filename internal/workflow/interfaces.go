package workflow

import (
	"context"

	"github.com/kurochkinivan/pdf2csv/internal/domain"
)

type Extractor interface {
	Upload(ctx context.Context, doc *domain.Document) (*domain.Extraction, error)
	GenerateCSV(ctx context.Context, fileID string, columns []string) error
}
