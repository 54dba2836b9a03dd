package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

// TextRow is a (row id, text) pair fed to the index builder.
type TextRow struct {
	ID   int64
	Text string
}

// ChunkPage is a chunk joined with its page image, when one exists.
type ChunkPage struct {
	Content   string
	ManualID  int64
	Page      int
	ImagePath string // empty when no page image is registered
}

func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*Manual)(nil),
		(*Chunk)(nil),
		(*PageImage)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := db.NewCreateIndex().
		Model((*PageImage)(nil)).
		Index("idx_page_images_manual_page").
		Unique().
		IfNotExists().
		Column("manual_id", "page").
		Exec(ctx)
	return err
}

// LoadChunkRows returns the non-empty chunk texts to be indexed.
// manualID 0 selects all manuals.
func LoadChunkRows(ctx context.Context, db *bun.DB, manualID int64) ([]TextRow, error) {
	var chunks []Chunk
	q := db.NewSelect().
		Model(&chunks).
		Column("id", "content").
		Where("content IS NOT NULL").
		Where("TRIM(content) != ''").
		Order("id ASC")
	if manualID != 0 {
		q = q.Where("manual_id = ?", manualID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	rows := make([]TextRow, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		rows = append(rows, TextRow{ID: c.ID, Text: c.Content})
	}
	return rows, nil
}

// ResolveChunk recovers a retrieved row's text and page metadata, with the
// page image joined in when one is registered for (manual_id, page).
// Returns (nil, nil) when the chunk no longer exists.
func ResolveChunk(ctx context.Context, db *bun.DB, chunkID int64) (*ChunkPage, error) {
	var row ChunkPage
	err := db.NewSelect().
		Model((*Chunk)(nil)).
		ColumnExpr("c.content, c.manual_id, c.page").
		ColumnExpr("COALESCE(p.path, '') AS image_path").
		Join("LEFT JOIN page_images AS p ON c.manual_id = p.manual_id AND c.page = p.page").
		Where("c.id = ?", chunkID).
		Scan(ctx, &row.Content, &row.ManualID, &row.Page, &row.ImagePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// UpsertManual registers a manual by its unique file name and returns its id.
func UpsertManual(ctx context.Context, db *bun.DB, m *Manual) (int64, error) {
	_, err := db.NewInsert().
		Model(m).
		On("CONFLICT (file_name) DO UPDATE").
		Set("models = EXCLUDED.models").
		Set("language = EXCLUDED.language").
		Set("title = EXCLUDED.title").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// ReplaceChunks swaps a manual's chunks for a fresh extraction, atomically:
// a failed insert must not leave the manual with no chunks at all.
func ReplaceChunks(ctx context.Context, db *bun.DB, manualID int64, chunks []Chunk) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Chunk)(nil)).
			Where("manual_id = ?", manualID).
			Exec(ctx); err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&chunks).Exec(ctx)
		return err
	})
}

// RegisterPageImage upserts the image path for (manual_id, page).
func RegisterPageImage(ctx context.Context, db *bun.DB, img *PageImage) error {
	_, err := db.NewInsert().
		Model(img).
		On("CONFLICT (manual_id, page) DO UPDATE").
		Set("path = EXCLUDED.path").
		Exec(ctx)
	return err
}
