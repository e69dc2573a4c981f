// Package extractor picks a text extractor for a stored document.
package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

// Router sends PDFs to the pdf extractor and everything else to the text one.
type Router struct {
	pdf  ports.TextExtractor
	text ports.TextExtractor
}

func NewRouter(pdf, text ports.TextExtractor) *Router {
	return &Router{pdf: pdf, text: text}
}

func (r *Router) Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	if IsPDF(doc) {
		return r.pdf.Extract(ctx, doc)
	}
	return r.text.Extract(ctx, doc)
}

func IsPDF(doc *domain.Document) bool {
	if strings.EqualFold(strings.TrimSpace(doc.MimeType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.Filename), ".pdf")
}
