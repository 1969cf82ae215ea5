package export

import (
	"context"
	"fmt"
	"log/slog"

	"herbar/client/internal/metrics"
)

// Converter turns rendered HTML into another document format.
type Converter func(ctx context.Context, html string) ([]byte, error)

// Service provides catalog export functionality
type Service struct {
	pdf    Converter
	docx   Converter
	logger *slog.Logger
}

// NewService creates an export service backed by chromedp and pandoc.
func NewService(logger *slog.Logger) *Service {
	return NewServiceWith(convertPDF, convertDOCX, logger)
}

// NewServiceWith creates an export service with explicit converters.
func NewServiceWith(pdf, docx Converter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pdf: pdf, docx: docx, logger: logger.With("component", "export")}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	html, err := RenderCatalogHTML(req)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	name := sanitizeFilename(req.Title)
	var res *Result
	switch req.Format {
	case FormatHTML, "":
		res = &Result{Data: []byte(html), Filename: name + ".html", MimeType: "text/html; charset=utf-8"}
	case FormatPDF:
		data, err := s.pdf(ctx, html)
		if err != nil {
			return nil, err
		}
		res = &Result{Data: data, Filename: name + ".pdf", MimeType: "application/pdf"}
	case FormatDOCX:
		data, err := s.docx(ctx, html)
		if err != nil {
			return nil, err
		}
		res = &Result{
			Data:     data,
			Filename: name + ".docx",
			MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}

	metrics.Exports.WithLabelValues(string(formatOrHTML(req.Format))).Inc()
	s.logger.Info("export rendered", "format", formatOrHTML(req.Format), "plants", len(req.Records), "bytes", len(res.Data))
	return res, nil
}

func formatOrHTML(f Format) Format {
	if f == "" {
		return FormatHTML
	}
	return f
}
