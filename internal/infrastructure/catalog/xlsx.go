package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// XLSXFile reads a catalogue from a workbook whose first row holds the
// column names. Sheet defaults to the first sheet.
type XLSXFile struct {
	path  string
	sheet string
}

func NewXLSXFile(path, sheet string) *XLSXFile {
	return &XLSXFile{path: path, sheet: sheet}
}

func (x *XLSXFile) LoadSchemes(_ context.Context) ([]domain.Scheme, error) {
	f, err := os.Open(x.path)
	if err != nil {
		return nil, fmt.Errorf("open scheme workbook: %w", err)
	}
	defer f.Close()
	return ParseXLSX(f, x.sheet)
}

func ParseXLSX(r io.Reader, sheet string) ([]domain.Scheme, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse scheme workbook", err)
	}
	defer book.Close()

	if strings.TrimSpace(sheet) == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse scheme workbook", errors.New("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read scheme sheet", err)
	}
	if len(rows) == 0 {
		return []domain.Scheme{}, nil
	}

	header := rows[0]
	out := make([]domain.Scheme, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(header))
		blank := true
		for i, col := range header {
			if i >= len(row) {
				break
			}
			if strings.TrimSpace(row[i]) != "" {
				blank = false
			}
			record[col] = row[i]
		}
		if blank {
			continue
		}
		out = append(out, schemeFromRecord(record))
	}
	return out, nil
}
