package retrieval

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/isaacchin12/c8-techJam/model"
)

// ScoreFunc scores a query/passage pair, higher is better
type ScoreFunc func(query string, passage string) (float64, error)

// Rerank reorders candidates by scoring each passage against the query with
// a cross-encoder. The sort is stable, so passages the scorer cannot
// separate keep their fused order. If scoring any passage fails the fused
// order is kept unchanged; reranking refines a ranking, it never loses one.
func Rerank(query string, candidates []*model.RetrievalCandidate, scorer ScoreFunc, logger *slog.Logger) []*model.RetrievalCandidate {
	if scorer == nil || len(candidates) < 2 {
		return candidates
	}

	for _, candidate := range candidates {
		score, err := scorer(query, candidate.Chunk.Content)
		if err != nil {
			if logger != nil {
				logger.Warn("Reranking failed, keeping fused order", "error", err)
			}
			return candidates
		}
		candidate.RerankScore = score
	}

	reranked := make([]*model.RetrievalCandidate, len(candidates))
	copy(reranked, candidates)
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})

	return reranked
}

// BuildContext joins the texts of the top candidates with blank lines,
// producing the context block for prompt composition
func BuildContext(candidates []*model.RetrievalCandidate, topN int) string {
	if topN > len(candidates) {
		topN = len(candidates)
	}

	texts := make([]string, 0, topN)
	for _, candidate := range candidates[:topN] {
		texts = append(texts, candidate.Chunk.Content)
	}

	return strings.Join(texts, "\n\n")
}
