package ports

import (
	"context"
	"io"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// Embedder builds vectors for index text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SchemeIndex is the vector index holding scheme points. Searches always go
// through the alias; rebuilds write a fresh physical collection and swap it in.
type SchemeIndex interface {
	CreateCollection(ctx context.Context, name string, dimension int) error
	UpsertSchemes(ctx context.Context, collection string, points []domain.SchemePoint) error
	SwapAlias(ctx context.Context, alias, collection string) (previous string, err error)
	DropCollection(ctx context.Context, name string) error
	SearchSchemes(ctx context.Context, alias string, queryVector []float32, limit int, filter domain.SchemeFilter) ([]domain.SchemeHit, error)
}

// Reranker scores (query, text) pairs with a cross-encoder.
type Reranker interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// SchemeSource loads the authoritative scheme catalogue.
type SchemeSource interface {
	LoadSchemes(ctx context.Context) ([]domain.Scheme, error)
}

// AnswerGenerator phrases the final answer.
type AnswerGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIndexStats(ctx context.Context, id string, pages, chunks int) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion and reindex events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishSchemesReindex(ctx context.Context) error
	SubscribeSchemesReindex(ctx context.Context, handler func(context.Context) error) error
}

// TextExtractor extracts page-wise text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.PageText, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// DocumentIndex indexes document chunks and performs semantic search.
type DocumentIndex interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
}
