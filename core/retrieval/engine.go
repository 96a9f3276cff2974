package retrieval

import (
	"context"

	"github.com/isaacchin12/c8-techJam/database"
	"github.com/isaacchin12/c8-techJam/model"
)

// WeightFunc returns a prior weight for a passage text, typically derived
// from user feedback. Unknown passages should get a neutral 1.0.
type WeightFunc func(passageText string) float64

// NeutralWeight is a WeightFunc that weighs every passage equally
func NeutralWeight(passageText string) float64 {
	return 1.0
}

// Engine provides hybrid retrieval over the passage store and keyword index
type Engine struct {
	chunks   *database.ChunksDBHandler
	keywords *KeywordIndex
	weigher  WeightFunc
}

// NewEngine creates a new retrieval engine. A nil weigher falls back to
// NeutralWeight.
func NewEngine(chunks *database.ChunksDBHandler, keywords *KeywordIndex, weigher WeightFunc) *Engine {
	if weigher == nil {
		weigher = NeutralWeight
	}
	return &Engine{
		chunks:   chunks,
		keywords: keywords,
		weigher:  weigher,
	}
}

// RefreshKeywords rebuilds the keyword index from all stored passage texts
func (e *Engine) RefreshKeywords() error {
	texts, err := e.chunks.SelectAllChunkTexts()
	if err != nil {
		return err
	}
	e.keywords.Rebuild(texts)
	return nil
}

// VectorRetrieve performs pure vector similarity search. It over-fetches
// twice the requested count so downstream fusion can promote passages the
// vector ranking alone would cut, then normalizes distances into similarity
// scores.
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]*model.Chunk, error) {
	chunks, err := e.chunks.SelectChunksBySimilarity(embedding, 2*config.TopK)
	if err != nil {
		return nil, err
	}

	NormalizeDistances(chunks)

	return chunks, nil
}

// NormalizeDistances converts raw vector distances into similarity scores
// in [0, 1] relative to the batch: similarity = 1 - distance/maxDistance.
// When all distances are equal there is no ordering information in the
// batch, so every chunk gets full similarity.
func NormalizeDistances(chunks []*model.Chunk) {
	if len(chunks) == 0 {
		return
	}

	maxDistance := chunks[0].Distance
	allEqual := true
	for _, chunk := range chunks {
		if chunk.Distance != chunks[0].Distance {
			allEqual = false
		}
		if chunk.Distance > maxDistance {
			maxDistance = chunk.Distance
		}
	}

	if allEqual || maxDistance == 0 {
		for _, chunk := range chunks {
			chunk.Similarity = 1.0
		}
		return
	}

	for _, chunk := range chunks {
		chunk.Similarity = 1.0 - chunk.Distance/maxDistance
	}
}
