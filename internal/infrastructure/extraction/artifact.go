package extraction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"
)

// Artifact summarises a downloaded CSV file.
type Artifact struct {
	Path    string
	Columns []string
	Rows    int
}

func InspectFile(path string) (_ *Artifact, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	artifact, err := Inspect(f)
	if err != nil {
		return nil, err
	}
	artifact.Path = path

	return artifact, nil
}

// Inspect reads the header and counts the data rows of a CSV document.
func Inspect(r io.Reader) (*Artifact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Artifact{}, nil
		}
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	artifact := &Artifact{Columns: dec.Header()}

	// The columns are only known at runtime, so there is no struct to decode
	// into. Rows are counted on the raw reader, which also tolerates ragged
	// records that csvutil.Decoder.Decode would reject.
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read record #%d: %w", artifact.Rows+1, err)
		}

		artifact.Rows++
	}

	return artifact, nil
}
