package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/isaacchin12/c8-techJam/model"
	loadSql "github.com/isaacchin12/c8-techJam/sql"
)

var (
	// ErrDuplicateID is returned when inserting a chunk whose id is already present.
	ErrDuplicateID = errors.New("chunk id already exists")
	// ErrEmptyStore is returned when querying a store that holds zero chunks.
	ErrEmptyStore = errors.New("passage store is empty")
)

// ChunksDBHandlerFunctions defines the interface for the passage store operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	SelectChunk(rid uuid.UUID) (*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error)
	SelectAllChunkTexts() ([]string, error)
	CountChunks() (int64, error)
}

// ChunksDBHandler handles passage-store database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// The embedding dimensionality is fixed here for the lifetime of the store.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk. A chunk without an id gets a fresh one.
// Inserting an id that is already present fails with ErrDuplicateID; the
// unique index serializes concurrent inserts with colliding ids.
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	if chunk.RID == uuid.Nil {
		chunk.RID = uuid.New()
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5)`,
		chunk.RID,
		chunk.Content,
		chunk.Source,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.Content,
		&chunk.Source,
		pq.Array(&chunk.Embedding),
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return helper.NewError("insert chunk", fmt.Errorf("%w: %s", ErrDuplicateID, chunk.RID))
		}
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by its id
func (h *ChunksDBHandler) SelectChunk(rid uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		rid,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.Content,
		&chunk.Source,
		pq.Array(&chunk.Embedding),
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksBySimilarity returns the limit nearest chunks by cosine
// distance, each with its raw distance set. Fewer than limit chunks are
// returned when the store holds fewer; an empty store fails with
// ErrEmptyStore rather than returning nothing.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error) {
	count, err := h.CountChunks()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, helper.NewError("similarity search", ErrEmptyStore)
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.Content,
			&chunk.Source,
			pq.Array(&chunk.Embedding),
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectAllChunkTexts returns every stored chunk's text in insertion order.
// This is a full scan, meant for keyword index rebuilds on corpus reload,
// not for per-query use.
func (h *ChunksDBHandler) SelectAllChunkTexts() ([]string, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_chunk_texts()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, helper.NewError("scan", err)
		}
		texts = append(texts, text)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return texts, nil
}

// CountChunks returns the number of stored chunks
func (h *ChunksDBHandler) CountChunks() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}
