package pipeline

import (
	"fmt"

	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/knights-analytics/hugot"
)

// DefaultReranker creates a reranker using a cross-encoder model
// Uses ms-marco-MiniLM-L-6-v2, which scores query/passage pairs directly
// instead of comparing independent embeddings
func DefaultReranker() (RerankFunc, error) {
	// Prepare model (download if needed)
	modelName := "cross-encoder/ms-marco-MiniLM-L-6-v2"
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create text classification pipeline for pairwise scoring
	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "reranker-pipeline",
	}
	rerankPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create reranker pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create reranker pipeline: %w", err)
	}

	return func(query string, passage string) (float64, error) {
		// Cross-encoders expect both texts in a single input
		result, err := rerankPipeline.RunPipeline([]string{query + " [SEP] " + passage})
		if err != nil {
			return 0, fmt.Errorf("failed to run reranker: %w", err)
		}

		if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
			return 0, fmt.Errorf("no reranker score generated")
		}

		return float64(result.ClassificationOutputs[0][0].Score), nil
	}, nil
}
