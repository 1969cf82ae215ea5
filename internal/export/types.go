// Package export renders the visible plant list to HTML, PDF or DOCX.
package export

import (
	"errors"
	"time"

	"herbar/client/internal/catalog"
)

// Format represents the export output format
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat accepts html, pdf or docx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(lower(s)); f {
	case FormatHTML, FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Request contains parameters for an export operation
type Request struct {
	Title   string
	Format  Format
	Records []catalog.Record
	// Filters describe the query that produced Records, one line each.
	Filters     []string
	Favorites   map[int]bool
	IncludeCare bool
	GeneratedAt time.Time
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
