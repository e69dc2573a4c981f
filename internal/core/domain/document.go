package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a policy document (act, rule, guideline, training material)
// indexed into the free-text documents collection.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SourceURL   string         `json:"source_url,omitempty"`
	Pages       int            `json:"pages,omitempty"`
	Chunks      int            `json:"chunks,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PageText is the extracted text of one page; plain text files have a single page.
type PageText struct {
	Page int
	Text string
}

// DocumentChunk is a piece of a page ready for embedding.
type DocumentChunk struct {
	Page       int
	ChunkIndex int
	Text       string
}
