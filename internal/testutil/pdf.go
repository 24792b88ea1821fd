package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/stretchr/testify/require"
)

// PDF renders lines of text into a small PDF document.
func PDF(t testing.TB, lines ...string) []byte {
	t.Helper()

	m := maroto.New()
	for _, line := range lines {
		m.AddRow(10, text.NewCol(12, line))
	}

	doc, err := m.Generate()
	require.NoError(t, err)

	return doc.GetBytes()
}

// WritePDF writes a generated PDF named name into a temporary directory and
// returns its path.
func WritePDF(t testing.TB, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, PDF(t, lines...), 0o600))

	return path
}
