package domain

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const (
	MediaTypePDF = "application/pdf"

	// MaxDocumentSize is the largest document accepted for upload (50 MiB).
	MaxDocumentSize int64 = 50 * 1024 * 1024
)

// Document is a candidate file selected by the user. MediaType is the
// declared type, it is never sniffed from the content.
type Document struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

func (d *Document) Validate() error {
	if d.MediaType != MediaTypePDF {
		return ErrNotPDF
	}

	if d.Size > MaxDocumentSize {
		return ErrFileTooLarge
	}

	return nil
}

// DocumentFromPath declares the media type from the file extension, the way
// a browser file picker does.
func DocumentFromPath(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory, not a file", path)
	}

	mediaType, _, _ := mime.ParseMediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(path))))

	return &Document{
		Name:      info.Name(),
		MediaType: mediaType,
		Size:      info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func DocumentFromMultipart(fh *multipart.FileHeader) *Document {
	mediaType, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))

	return &Document{
		Name:      fh.Filename,
		MediaType: mediaType,
		Size:      fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
