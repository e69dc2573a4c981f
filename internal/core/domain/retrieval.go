package domain

const (
	MinSearchLimit     = 1
	MaxSearchLimit     = 20
	SearchOversampling = 50
	DefaultMinScore    = 0.20
)

// SchemeFilter holds equality filters applied before vector scoring.
type SchemeFilter struct {
	Category   string `json:"category,omitempty"`
	Department string `json:"department,omitempty"`
	Type       string `json:"type,omitempty"`
}

func (f SchemeFilter) IsEmpty() bool {
	return f.Category == "" && f.Department == "" && f.Type == ""
}

type SchemeSearchRequest struct {
	Question string       `json:"question"`
	Limit    int          `json:"limit"`
	Page     int          `json:"page"`
	MinScore float64      `json:"min_score"`
	Filter   SchemeFilter `json:"filter"`
}

// Clamped returns the request with limit and page forced into range.
func (r SchemeSearchRequest) Clamped() SchemeSearchRequest {
	out := r
	if out.Limit < MinSearchLimit {
		out.Limit = MinSearchLimit
	}
	if out.Limit > MaxSearchLimit {
		out.Limit = MaxSearchLimit
	}
	if out.Page < 1 {
		out.Page = 1
	}
	return out
}

type SchemeSearchPage struct {
	Items []ScoredScheme `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// SchemeHit is a raw vector index result before boosting.
type SchemeHit struct {
	PointID string
	Score   float64
	Scheme  Scheme
}

type SearchFilter struct {
	SourceFile string
}

type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	SourceFile string  `json:"source_file"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	URL        string  `json:"url,omitempty"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// DocumentSource is a deduplicated (file, page) reference returned to clients.
type DocumentSource struct {
	SourceFile string `json:"source_file"`
	Page       int    `json:"page"`
	URL        string `json:"url,omitempty"`
}

type DocumentRetrieval struct {
	Chunks  []RetrievedChunk `json:"chunks"`
	Sources []DocumentSource `json:"sources"`
}
