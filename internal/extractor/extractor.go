package extractor

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for any extension other than pdf/docx/txt.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrCorruptFile is returned when a file of a supported format cannot be parsed.
	ErrCorruptFile = errors.New("corrupt file")
	// ErrEncoding is returned for text files with invalid byte sequences.
	ErrEncoding = errors.New("invalid text encoding")
	// ErrEmptyDocument is returned when extraction produces no text.
	ErrEmptyDocument = errors.New("no text could be extracted")
)

// FormatFromFilename maps a filename extension (case-insensitive) to a
// document format.
func FormatFromFilename(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.FormatPDF, nil
	case ".docx":
		return models.FormatDOCX, nil
	case ".txt":
		return models.FormatTXT, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Extract converts raw uploaded bytes into plain text based on the declared
// format.
func Extract(data []byte, format string) (string, error) {
	switch format {
	case models.FormatPDF:
		return ExtractPDF(data)
	case models.FormatDOCX:
		return ExtractDOCX(data)
	case models.FormatTXT:
		return ExtractTXT(data)
	default:
		return "", ErrUnsupportedFormat
	}
}
