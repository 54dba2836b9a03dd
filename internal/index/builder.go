package index

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"manual-rag/internal/embedding"
	"manual-rag/internal/retry"
)

// Row is one text row to index, keyed by its source row id.
type Row struct {
	ID   int64
	Text string
}

// Builder embeds text rows one at a time and assembles the flat index with
// its parallel id list. One row failing to embed does not abort the build:
// after the retry cap that row gets a zero vector and indexing continues.
type Builder struct {
	provider embedding.Provider
	policy   retry.Policy
	dir      string
}

func NewBuilder(provider embedding.Provider, policy retry.Policy, dir string) *Builder {
	return &Builder{provider: provider, policy: policy, dir: dir}
}

// Build embeds rows, L2-normalizes, and persists the named index.
func (b *Builder) Build(ctx context.Context, rows []Row, name string) (*Manifest, error) {
	if len(rows) == 0 {
		log.Warn().Str("name", name).Msg("no rows to index")
		return nil, nil
	}

	dim := b.provider.Dimensions()
	flat := NewFlat(dim)
	ids := make([]int64, 0, len(rows))

	degraded := 0
	for _, row := range rows {
		vec, err := b.embedOne(ctx, row.Text)
		if err != nil {
			return nil, err
		}
		if vec == nil {
			vec = make([]float32, dim)
			degraded++
		}
		if err := flat.Add(Normalize(vec)); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}

	if err := Save(b.dir, name, flat, ids); err != nil {
		return nil, err
	}
	log.Info().
		Str("name", name).
		Int("vectors", flat.Len()).
		Int("degraded", degraded).
		Msg("index built")

	return LoadManifest(b.dir, name)
}

// embedOne returns (nil, nil) when the row degrades to a zero vector:
// empty text, or the retry cap exhausted on rate limits.
func (b *Builder) embedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var vec []float32
	err := b.policy.Do(ctx, "embed", func() error {
		v, err := b.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		if b.policy.IsRetryable(err) {
			log.Warn().Err(err).Msg("embedding degraded to zero vector after retries")
			return nil, nil
		}
		return nil, err
	}
	return vec, nil
}
