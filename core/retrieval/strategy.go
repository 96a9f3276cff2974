package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/isaacchin12/c8-techJam/database"
	"github.com/isaacchin12/c8-techJam/model"
)

// ErrNoCorpus is returned when retrieval runs against an empty passage store
var ErrNoCorpus = errors.New("no passages in corpus")

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, query string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalCandidate, error)
}

// VectorOnlyStrategy performs pure vector similarity search
type VectorOnlyStrategy struct {
	engine *Engine
}

// NewVectorOnlyStrategy creates a new vector-only strategy
func NewVectorOnlyStrategy(engine *Engine) *VectorOnlyStrategy {
	return &VectorOnlyStrategy{engine: engine}
}

// Retrieve performs vector-only retrieval
func (s *VectorOnlyStrategy) Retrieve(ctx context.Context, query string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalCandidate, error) {
	chunks, err := s.engine.VectorRetrieve(ctx, embedding, config)
	if err != nil {
		if errors.Is(err, database.ErrEmptyStore) {
			return nil, fmt.Errorf("%w: %v", ErrNoCorpus, err)
		}
		return nil, err
	}

	candidates := make([]*model.RetrievalCandidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, &model.RetrievalCandidate{
			Chunk:       chunk,
			VectorScore: chunk.Similarity,
			FusedScore:  chunk.Similarity,
		})
	}

	if len(candidates) > config.TopK {
		candidates = candidates[:config.TopK]
	}

	return candidates, nil
}

// HybridStrategy fuses vector similarity, keyword relevance and feedback
// weights into a single ranking
type HybridStrategy struct {
	engine *Engine
}

// NewHybridStrategy creates a new hybrid strategy
func NewHybridStrategy(engine *Engine) *HybridStrategy {
	return &HybridStrategy{engine: engine}
}

// Retrieve performs hybrid retrieval with weighted score fusion.
// Candidates come from the vector search over-fetch; each is scored as
//
//	fused = vectorWeight*similarity + keywordWeight*keyword + feedbackWeight*feedback
//
// with keyword scores normalized by the batch maximum so all three signals
// share a comparable scale. Passages with identical text are deduplicated,
// keeping the occurrence with the higher vector similarity.
func (s *HybridStrategy) Retrieve(ctx context.Context, query string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalCandidate, error) {
	chunks, err := s.engine.VectorRetrieve(ctx, embedding, config)
	if err != nil {
		if errors.Is(err, database.ErrEmptyStore) {
			return nil, fmt.Errorf("%w: %v", ErrNoCorpus, err)
		}
		return nil, err
	}

	// Deduplicate by passage text. Vector results arrive ordered by
	// ascending distance, so the first occurrence is the best one.
	seen := make(map[string]bool)
	candidates := make([]*model.RetrievalCandidate, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.Content] {
			continue
		}
		seen[chunk.Content] = true

		candidates = append(candidates, &model.RetrievalCandidate{
			Chunk:       chunk,
			VectorScore: chunk.Similarity,
		})
	}

	// Keyword scores, normalized by the batch maximum
	maxKeyword := 0.0
	for _, candidate := range candidates {
		candidate.KeywordScore = s.engine.keywords.ScoreForText(query, candidate.Chunk.Content)
		if candidate.KeywordScore > maxKeyword {
			maxKeyword = candidate.KeywordScore
		}
	}
	if maxKeyword > 0 {
		for _, candidate := range candidates {
			candidate.KeywordScore /= maxKeyword
		}
	}

	// Feedback weights and final fusion
	for _, candidate := range candidates {
		candidate.FeedbackScore = s.engine.weigher(candidate.Chunk.Content)
		candidate.FusedScore = config.VectorWeight*candidate.VectorScore +
			config.KeywordWeight*candidate.KeywordScore +
			config.FeedbackWeight*candidate.FeedbackScore
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FusedScore > candidates[j].FusedScore
	})

	if len(candidates) > config.TopK {
		candidates = candidates[:config.TopK]
	}

	return candidates, nil
}
