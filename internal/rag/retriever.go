package rag

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"manual-rag/internal/db"
	"manual-rag/internal/index"
)

// Engine embeds the query, ranks corpus entries in the named index, and
// joins the winners with their page metadata.
type Engine struct {
	searcher  *index.Searcher
	db        *bun.DB
	indexName string
}

func NewEngine(searcher *index.Searcher, database *bun.DB, indexName string) *Engine {
	return &Engine{searcher: searcher, db: database, indexName: indexName}
}

// Retrieve returns up to k hits ordered by descending similarity. Rows the
// index still references but the store no longer holds are skipped and do
// not count toward k. Embedding or index-read failures come back as errors
// for the router to degrade into an empty-hit answer.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]Hit, error) {
	results, err := e.searcher.Search(ctx, e.indexName, query, k)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		row, err := db.ResolveChunk(ctx, e.db, res.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve chunk %d: %w", res.ID, err)
		}
		if row == nil {
			continue
		}
		hits = append(hits, Hit{
			ChunkID:   res.ID,
			Score:     res.Score,
			Text:      row.Content,
			ManualID:  row.ManualID,
			Page:      row.Page,
			ImagePath: row.ImagePath,
		})
	}
	return hits, nil
}
