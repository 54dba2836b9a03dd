package index

import (
	"context"
	"fmt"
	"sync"

	"manual-rag/internal/embedding"
)

// Result is a scored row id returned from a named index query.
type Result struct {
	ID    int64
	Score float32
}

// Searcher answers top-k queries against published index builds. Builds are
// cached per vector file, so a rebuild published with a new manifest is
// picked up on the next query without restarting.
type Searcher struct {
	provider embedding.Provider
	dir      string

	mu     sync.Mutex
	loaded map[string]*loadedIndex // keyed by index name
}

type loadedIndex struct {
	vectorFile string
	flat       *Flat
	ids        []int64
}

func NewSearcher(provider embedding.Provider, dir string) *Searcher {
	return &Searcher{
		provider: provider,
		dir:      dir,
		loaded:   make(map[string]*loadedIndex),
	}
}

// Search embeds the query text, L2-normalizes it, and returns the top-k
// (row id, score) pairs from the named index, best first.
func (s *Searcher) Search(ctx context.Context, name, query string, k int) ([]Result, error) {
	li, err := s.load(name)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", name, err)
	}

	vec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches := li.flat.Search(Normalize(vec), k)
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{ID: li.ids[m.Pos], Score: m.Score})
	}
	return results, nil
}

func (s *Searcher) load(name string) (*loadedIndex, error) {
	manifest, err := LoadManifest(s.dir, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if li, ok := s.loaded[name]; ok && li.vectorFile == manifest.VectorFile {
		return li, nil
	}

	flat, ids, err := Load(s.dir, name)
	if err != nil {
		return nil, err
	}
	li := &loadedIndex{vectorFile: manifest.VectorFile, flat: flat, ids: ids}
	s.loaded[name] = li
	return li, nil
}
