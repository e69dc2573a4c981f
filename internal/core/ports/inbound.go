package ports

import (
	"context"
	"io"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// SchemeSearcher is the hybrid (vector + keyword boost) scheme search.
type SchemeSearcher interface {
	Search(ctx context.Context, req domain.SchemeSearchRequest) (domain.SchemeSearchPage, error)
}

// DiverseSearcher is the cross-encoder + MMR search variant.
type DiverseSearcher interface {
	SearchDiverse(ctx context.Context, question string, topK int) ([]domain.ScoredScheme, error)
}

// SchemeIndexer rebuilds the scheme index.
type SchemeIndexer interface {
	Rebuild(ctx context.Context, schemes []domain.Scheme) (domain.RebuildReport, error)
	RebuildFromSource(ctx context.Context) (domain.RebuildReport, error)
}

// AskService answers a citizen question from schemes or documents.
type AskService interface {
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentRetriever fetches document context for the docs answer path.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, question string, topK int) (domain.DocumentRetrieval, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
