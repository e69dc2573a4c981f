package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// DocumentIndex stores policy document chunks in a single collection that is
// created lazily on first write.
type DocumentIndex struct {
	client     *Client
	collection string

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func NewDocumentIndex(client *Client, collection string) *DocumentIndex {
	return &DocumentIndex{client: client, collection: collection}
}

func (d *DocumentIndex) Collection() string {
	return d.collection
}

func (d *DocumentIndex) IndexChunks(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant index chunks", fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors)))
	}

	if err := d.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":      doc.ID,
				"source_file": doc.Filename,
				"url":         doc.SourceURL,
				"page":        chunk.Page,
				"chunk_index": chunk.ChunkIndex,
				"text":        chunk.Text,
			},
		})
	}
	return d.client.upsertPoints(ctx, d.collection, points)
}

func (d *DocumentIndex) Search(
	ctx context.Context,
	queryVector []float32,
	limit int,
	filter domain.SearchFilter,
) ([]domain.RetrievedChunk, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := matchFilter(map[string]string{"source_file": filter.SourceFile}); f != nil {
		reqBody["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", d.collection)
	if err := d.client.do(ctx, "search_documents", http.MethodPost, path, reqBody, &resp); err != nil {
		if isNotFound(err) {
			slog.Warn("document_index_missing", "collection", d.collection)
			return []domain.RetrievedChunk{}, nil
		}
		return nil, err
	}

	out := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.RetrievedChunk{
			DocumentID: getStringPayload(r.Payload, "doc_id"),
			SourceFile: getStringPayload(r.Payload, "source_file"),
			Page:       getIntPayload(r.Payload, "page"),
			ChunkIndex: getIntPayload(r.Payload, "chunk_index"),
			URL:        getStringPayload(r.Payload, "url"),
			Text:       getStringPayload(r.Payload, "text"),
			Score:      r.Score,
		})
	}
	return out, nil
}

func (d *DocumentIndex) ensureCollection(ctx context.Context, vectorSize int) error {
	d.ensureMu.Lock()
	if d.ensuredCollection && d.ensuredVectorSize == vectorSize {
		d.ensureMu.Unlock()
		return nil
	}
	d.ensureMu.Unlock()

	err := d.client.createCollection(ctx, d.collection, vectorSize)
	// 409 when the collection already exists (depends on version/config).
	if err != nil && !isConflict(err) {
		return err
	}

	d.ensureMu.Lock()
	d.ensuredCollection = true
	d.ensuredVectorSize = vectorSize
	d.ensureMu.Unlock()
	return nil
}
