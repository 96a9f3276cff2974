package pipeline

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// RerankFunc scores how well a passage answers a query.
// Higher scores mean a better match. Scores are only compared against
// other scores from the same function, so no particular range is required.
type RerankFunc func(query string, passage string) (float64, error)

// Pipeline combines the embedding and reranking functions used by retrieval
type Pipeline struct {
	Embedder EmbedFunc
	Reranker RerankFunc // Optional
}

// NewPipeline creates a new processing pipeline
func NewPipeline(embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Embedder: embedder,
	}
}

// SetReranker sets the reranking function
func (p *Pipeline) SetReranker(reranker RerankFunc) {
	p.Reranker = reranker
}

// Embed generates an embedding for a single text
func (p *Pipeline) Embed(text string) ([]float32, error) {
	return p.Embedder(text)
}

// EmbedBatch generates embeddings for multiple texts
func (p *Pipeline) EmbedBatch(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := p.Embedder(text)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, embedding)
	}
	return embeddings, nil
}
