package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents a retrievable passage of legal text.
// Chunks are inserted once during ingestion and never mutated or deleted;
// corpus corrections happen by re-ingesting under fresh ids.
type Chunk struct {
	ID        int       `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Results
	Distance   float64 `json:"distance,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// Well-known metadata keys, mirroring the ingestion format of the
// legal corpus (all optional except source and title).
const (
	MetaTitle         = "title"
	MetaPublisher     = "publisher"
	MetaJurisdiction  = "jurisdiction"
	MetaLawType       = "law_type"
	MetaEffectiveDate = "effective_date"
	MetaURL           = "url"
	MetaLanguage      = "language"
	MetaTags          = "tags"
)
