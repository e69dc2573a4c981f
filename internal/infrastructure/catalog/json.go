package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// JSONFile reads a catalogue stored as a JSON array of scheme objects.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (j *JSONFile) LoadSchemes(_ context.Context) ([]domain.Scheme, error) {
	f, err := os.Open(j.path)
	if err != nil {
		return nil, fmt.Errorf("open scheme catalogue: %w", err)
	}
	defer f.Close()
	return ParseJSON(f)
}

func ParseJSON(r io.Reader) ([]domain.Scheme, error) {
	var records []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse scheme catalogue", err)
	}
	out := make([]domain.Scheme, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		out = append(out, schemeFromRecord(rec))
	}
	return out, nil
}
