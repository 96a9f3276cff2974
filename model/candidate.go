package model

// RetrievalCandidate is a transient ranking unit produced per query.
// All component scores are normalized to a common range before fusion;
// candidates are deduplicated by passage text before fusion.
type RetrievalCandidate struct {
	Chunk         *Chunk  `json:"chunk"`
	VectorScore   float64 `json:"vector_score"`
	KeywordScore  float64 `json:"keyword_score"`
	FeedbackScore float64 `json:"feedback_score"`
	FusedScore    float64 `json:"fused_score"`
	RerankScore   float64 `json:"rerank_score,omitempty"`
}
