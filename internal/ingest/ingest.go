package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"manual-rag/internal/db"
)

// Options describes one manual to ingest. Exactly one of PagesDir (per-page
// OCR text) or PDFPath must be set; PagesDir is also scanned for rendered
// page images.
type Options struct {
	FileName string
	Title    string
	Language string
	Models   []string
	PagesDir string
	PDFPath  string
}

// Summary reports what one ingestion run wrote.
type Summary struct {
	ManualID int64
	Chunks   int
	Images   int
}

type Ingestor struct {
	db *bun.DB
}

func NewIngestor(database *bun.DB) *Ingestor {
	return &Ingestor{db: database}
}

// Run registers the manual, replaces its chunks with a fresh sentence-level
// extraction, and registers any rendered page images found next to the
// text. Upserts are idempotent per (file name) and (manual, page).
func (ing *Ingestor) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.FileName == "" {
		return nil, errors.New("file name is required")
	}

	var pages []PageText
	var err error
	switch {
	case opts.PagesDir != "":
		pages, err = ParsePageTexts(opts.PagesDir)
	case opts.PDFPath != "":
		pages, err = ParsePDF(opts.PDFPath)
	default:
		return nil, errors.New("either a pages directory or a pdf path is required")
	}
	if err != nil {
		return nil, fmt.Errorf("parse manual: %w", err)
	}

	manualID, err := db.UpsertManual(ctx, ing.db, &db.Manual{
		FileName: opts.FileName,
		Title:    opts.Title,
		Language: opts.Language,
		Models:   opts.Models,
	})
	if err != nil {
		return nil, fmt.Errorf("register manual: %w", err)
	}

	var chunks []db.Chunk
	for _, page := range pages {
		for _, sentence := range SplitSentences(page.Text) {
			chunks = append(chunks, db.Chunk{
				ManualID: manualID,
				Page:     page.Page,
				Content:  sentence,
			})
		}
	}
	if err := db.ReplaceChunks(ctx, ing.db, manualID, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	images := 0
	if opts.PagesDir != "" {
		found, err := FindPageImages(opts.PagesDir)
		if err != nil {
			return nil, fmt.Errorf("scan page images: %w", err)
		}
		for page, path := range found {
			err := db.RegisterPageImage(ctx, ing.db, &db.PageImage{
				ManualID: manualID,
				Page:     page,
				Path:     path,
			})
			if err != nil {
				return nil, fmt.Errorf("register page image p.%d: %w", page, err)
			}
			images++
		}
	}

	log.Info().
		Int64("manual_id", manualID).
		Int("chunks", len(chunks)).
		Int("images", images).
		Str("file_name", opts.FileName).
		Msg("manual ingested")

	return &Summary{ManualID: manualID, Chunks: len(chunks), Images: images}, nil
}
