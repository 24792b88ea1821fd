package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurochkinivan/pdf2csv/internal/domain"
	"github.com/kurochkinivan/pdf2csv/internal/infrastructure/extraction"
	"github.com/kurochkinivan/pdf2csv/internal/workflow"
)

type ConvertParams struct {
	InputPath  string
	Columns    []string
	OutputPath string
}

// Convert runs the whole workflow for one document: upload, optional column
// selection and generation, then saves the resulting CSV.
func (a *App) Convert(ctx context.Context, params ConvertParams) (*extraction.Artifact, error) {
	client, err := extraction.New(a.log, a.cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}

	doc, err := domain.DocumentFromPath(params.InputPath)
	if err != nil {
		return nil, err
	}

	controller := workflow.NewController(a.log, client)

	if err := controller.SubmitCandidate(ctx, doc); err != nil {
		return nil, err
	}

	a.log.InfoContext(ctx, "document processed",
		slog.String("available_columns", strings.Join(controller.Catalog(), ", ")),
	)

	if len(params.Columns) > 0 {
		for _, column := range params.Columns {
			controller.AddFreeText(column)
		}

		if err := controller.Generate(ctx); err != nil {
			return nil, err
		}
	}

	snapshot := controller.Snapshot()

	output := params.OutputPath
	if output == "" {
		output = defaultOutputPath(params.InputPath, len(params.Columns) > 0)
	}

	if err := a.save(ctx, client, snapshot.DownloadTarget, output); err != nil {
		return nil, err
	}

	artifact, err := extraction.InspectFile(output)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %q: %w", output, err)
	}

	a.log.InfoContext(ctx, "csv saved",
		slog.String("path", artifact.Path),
		slog.String("columns", strings.Join(artifact.Columns, ", ")),
		slog.Int("rows", artifact.Rows),
	)

	return artifact, nil
}

func (a *App) save(ctx context.Context, client *extraction.Client, target, output string) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", output, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			os.Remove(output)
		}
	}()

	n, err := client.Download(ctx, target, f)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", target, err)
	}

	a.log.DebugContext(ctx, "csv downloaded", slog.String("target", target), slog.Int64("bytes", n))

	return nil
}

func defaultOutputPath(input string, filtered bool) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if filtered {
		return base + "_filtered.csv"
	}

	return base + ".csv"
}
