package model

// QueryConfig represents configuration for one retrieval query
type QueryConfig struct {
	// Number of fused candidates to keep after hybrid scoring. The
	// vector stage over-fetches 2*TopK neighbors to give fusion and
	// reranking material to differentiate.
	TopK int `json:"top_k"`

	// Number of reranked passages concatenated into the final context.
	ContextSize int `json:"context_size"`

	// Fusion coefficients. They are tunable weights and are not
	// required to sum to 1.
	VectorWeight   float64 `json:"vector_weight"`
	KeywordWeight  float64 `json:"keyword_weight"`
	FeedbackWeight float64 `json:"feedback_weight"`

	// Rerank disables the cross-encoder stage when false; candidates
	// keep their fused order.
	Rerank bool `json:"rerank"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		TopK:           5,
		ContextSize:    3,
		VectorWeight:   0.7,
		KeywordWeight:  0.2,
		FeedbackWeight: 0.1,
		Rerank:         true,
	}
}
