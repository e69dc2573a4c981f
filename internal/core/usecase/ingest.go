package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
	"github.com/kirillkom/panchayat-sahayika/internal/core/ports"
)

// Policy documents the worker can extract text from, keyed by extension.
var ingestMimeTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
	".md":  "text/markdown",
}

// IngestDocumentUseCase stores an uploaded policy document and hands it to
// the worker through the queue.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{repo: repo, storage: storage, queue: queue}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	mimeType, err := resolveMimeType(filename, mimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", err)
	}

	doc := &domain.Document{
		ID:       uuid.NewString(),
		Filename: filename,
		MimeType: mimeType,
		Status:   domain.StatusUploaded,
	}
	doc.StoragePath = doc.ID + "_" + storageSafeName(filename)

	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		// Nothing will process it; surface that on the status endpoint.
		if statusErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "queue: "+err.Error()); statusErr == nil {
			doc.Status = domain.StatusFailed
		}
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

// resolveMimeType trusts the extension over a generic client-supplied type.
func resolveMimeType(filename, mimeType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	known, ok := ingestMimeTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported document type %q (want .pdf, .txt or .md)", ext)
	}
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		return known, nil
	}
	return mimeType, nil
}

// storageSafeName keeps letters and digits of any script (Hindi file names
// are common) and replaces everything else with '_'.
func storageSafeName(name string) string {
	base := filepath.Base(name)
	out := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			return r
		case r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, base)
	if strings.Trim(out, "._") == "" {
		return "document.bin"
	}
	return out
}
