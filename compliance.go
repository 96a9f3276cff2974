package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/isaacchin12/c8-techJam/core/pipeline"
	"github.com/isaacchin12/c8-techJam/core/prompt"
	"github.com/isaacchin12/c8-techJam/core/retrieval"
	"github.com/isaacchin12/c8-techJam/database"
	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/isaacchin12/c8-techJam/llm"
	"github.com/isaacchin12/c8-techJam/model"
	loadSql "github.com/isaacchin12/c8-techJam/sql"
)

// Checker provides a unified interface to the compliance question pipeline:
// passage storage, hybrid retrieval, prompt composition and structured
// generation
type Checker struct {
	DB       *helper.Database
	Chunks   *database.ChunksDBHandler
	Feedback *database.FeedbackDBHandler
	Keywords *retrieval.KeywordIndex
	Engine   *retrieval.Engine
	Pipeline *pipeline.Pipeline // Optional embedding/reranking pipeline
	Composer *prompt.Composer
	Glossary prompt.Glossary
	Client   *llm.Client
	// Logging
	log *slog.Logger
}

// Answer bundles the structured answer with the retrieval trace that
// produced it
type Answer struct {
	Structured    *model.StructuredAnswer
	Query         string
	ExpandedQuery string
	Context       string
	Candidates    []*model.RetrievalCandidate
}

// NewChecker creates a new Checker instance with all handlers initialized
func NewChecker(config *helper.DatabaseConfiguration, embeddingDim int) (*Checker, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("compliance", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	feedback, err := database.NewFeedbackDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create feedback handler", err)
	}

	// Keyword index and retrieval engine, weighted by recorded feedback
	keywords := retrieval.NewKeywordIndex()
	engine := retrieval.NewEngine(chunks, keywords, feedback.RatingWeight)

	checker := &Checker{
		DB:       db,
		Chunks:   chunks,
		Feedback: feedback,
		Keywords: keywords,
		Engine:   engine,
		Composer: prompt.DefaultComposer(),
		Glossary: prompt.Glossary{},
		Client:   llm.NewClient(nil, logger),
		log:      logger,
	}

	err = checker.ReloadIndex()
	if err != nil {
		return nil, helper.NewError("build keyword index", err)
	}

	return checker, nil
}

// Close closes the database connection
func (c *Checker) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the embedding/reranking pipeline
func (c *Checker) SetPipeline(pipeline *pipeline.Pipeline) {
	c.Pipeline = pipeline
}

// UseDefaultPipeline sets up the default embedding and reranking pipeline.
// This uses DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions)
// and DefaultReranker with the ms-marco-MiniLM-L-6-v2 cross-encoder.
func (c *Checker) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	reranker, err := pipeline.DefaultReranker()
	if err != nil {
		return helper.NewError("create default reranker", err)
	}

	c.Pipeline = pipeline.NewPipeline(embedder)
	c.Pipeline.SetReranker(reranker)
	return nil
}

// SetComposer replaces the default prompt composer
func (c *Checker) SetComposer(composer *prompt.Composer) {
	c.Composer = composer
}

// SetGlossary sets the abbreviation glossary used for query expansion
func (c *Checker) SetGlossary(glossary prompt.Glossary) {
	c.Glossary = glossary
}

// LoadGlossaryFile loads the abbreviation glossary from a JSON file
func (c *Checker) LoadGlossaryFile(path string) error {
	glossary, err := prompt.LoadGlossary(path)
	if err != nil {
		return err
	}
	c.Glossary = glossary
	return nil
}

// SetClient replaces the default generation client
func (c *Checker) SetClient(client *llm.Client) {
	c.Client = client
}

// IngestChunks embeds and stores the given passages, then rebuilds the
// keyword index. Passages that already carry an embedding are stored as-is.
// Returns the number of chunks inserted and any error encountered.
func (c *Checker) IngestChunks(chunks []*model.Chunk) (int, error) {
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			if c.Pipeline == nil || c.Pipeline.Embedder == nil {
				return i, helper.NewError("ingest chunks", fmt.Errorf("chunk without embedding and no pipeline set, use SetPipeline() first"))
			}

			embedding, err := c.Pipeline.Embed(chunk.Content)
			if err != nil {
				return i, helper.NewError(fmt.Sprintf("embed chunk %d", i), err)
			}
			chunk.Embedding = embedding
		}

		err := c.Chunks.InsertChunk(chunk)
		if err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	c.log.Info("Ingested chunks", slog.Int("num_chunks", len(chunks)))

	err := c.ReloadIndex()
	if err != nil {
		return len(chunks), err
	}

	return len(chunks), nil
}

// ReloadIndex rebuilds the keyword index from all stored passage texts
func (c *Checker) ReloadIndex() error {
	err := c.Engine.RefreshKeywords()
	if err != nil {
		return helper.NewError("rebuild keyword index", err)
	}
	return nil
}

// Search performs hybrid retrieval without generation
func (c *Checker) Search(ctx context.Context, query string, config *model.QueryConfig) ([]*model.RetrievalCandidate, error) {
	if c.Pipeline == nil || c.Pipeline.Embedder == nil {
		return nil, helper.NewError("hybrid search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}
	if config == nil {
		config = model.DefaultQueryConfig()
	}

	embedding, err := c.Pipeline.Embed(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	strategy := retrieval.NewHybridStrategy(c.Engine)
	candidates, err := strategy.Retrieve(ctx, query, embedding, config)
	if err != nil {
		return nil, err
	}

	if config.Rerank && c.Pipeline.Reranker != nil {
		candidates = retrieval.Rerank(query, candidates, retrieval.ScoreFunc(c.Pipeline.Reranker), c.log)
	}

	return candidates, nil
}

// Ask answers a compliance question: it expands abbreviations in the query,
// retrieves and reranks the most relevant passages, composes the prompt and
// generates a structured answer
func (c *Checker) Ask(ctx context.Context, query string, config *model.QueryConfig) (*Answer, error) {
	return c.AskStreaming(ctx, query, config, nil)
}

// AskStreaming behaves like Ask and additionally forwards response
// fragments to onFragment as they arrive from the generation backend
func (c *Checker) AskStreaming(ctx context.Context, query string, config *model.QueryConfig, onFragment llm.FragmentFunc) (*Answer, error) {
	if config == nil {
		config = model.DefaultQueryConfig()
	}

	expandedQuery := c.Glossary.ExpandAbbreviations(query)

	candidates, err := c.Search(ctx, query, config)
	if err != nil {
		return nil, err
	}

	contextBlock := retrieval.BuildContext(candidates, config.ContextSize)

	composed, err := c.Composer.Compose(map[string]string{
		"query":          query,
		"expanded_query": expandedQuery,
		"context":        contextBlock,
	})
	if err != nil {
		return nil, err
	}

	structured, err := c.Client.Generate(ctx, composed, onFragment)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Structured:    structured,
		Query:         query,
		ExpandedQuery: expandedQuery,
		Context:       contextBlock,
		Candidates:    candidates,
	}, nil
}

// RecordFeedback appends a user rating for a generated answer. An
// unavailable feedback store is logged and swallowed, so feedback never
// breaks the question flow. Invalid records still return an error.
func (c *Checker) RecordFeedback(record *model.FeedbackRecord) error {
	err := c.Feedback.InsertFeedback(record)
	if err != nil {
		if errors.Is(err, database.ErrStoreUnavailable) {
			c.log.Warn("Feedback store unavailable, discarding feedback", "error", err)
			return nil
		}
		return err
	}
	return nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (c *Checker) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return c.Chunks.ChangeIndexType(ctx, indexType, params)
}
