package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

// Extractor reads UTF-8 text documents. Form feeds separate pages, so text
// exported from a paginated source keeps its page numbers.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return ParsePages(raw, doc.Filename)
}

// ParsePages splits raw UTF-8 bytes into pages on form feed characters.
func ParsePages(raw []byte, name string) ([]domain.PageText, error) {
	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s is not valid UTF-8 text", name))
	}
	parts := strings.Split(strings.TrimPrefix(string(raw), "\ufeff"), "\f")
	pages := make([]domain.PageText, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, domain.PageText{Page: i + 1, Text: strings.TrimSpace(part)})
	}
	return pages, nil
}
