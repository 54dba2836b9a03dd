package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"manual-rag/internal/config"
	"manual-rag/internal/db"
	"manual-rag/internal/ingest"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "./configs/config.yaml", "path to config file")
	fileName := flag.String("file-name", "", "manual file name, the idempotency key (required)")
	title := flag.String("title", "", "human-readable manual title")
	language := flag.String("language", "ko", "manual language code")
	models := flag.String("models", "", "comma-separated product model numbers")
	pagesDir := flag.String("pages-dir", "", "directory of per-page OCR text and page images")
	pdfPath := flag.String("pdf", "", "manual PDF to extract text from")
	migrate := flag.Bool("migrate", false, "create tables before ingesting")
	flag.Parse()

	if *fileName == "" {
		flag.Usage()
		log.Fatal().Msg("-file-name is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	sqldb := db.ConnectDB(cfg.Database.DSN, cfg.Database.Password)
	defer sqldb.Close()
	database := db.NewDB(sqldb, cfg.Database.Debug)

	ctx := context.Background()
	if *migrate {
		if err := db.CreateSchema(ctx, database); err != nil {
			log.Fatal().Err(err).Msg("create schema")
		}
	}

	var modelList []string
	for _, m := range strings.Split(*models, ",") {
		if m = strings.TrimSpace(m); m != "" {
			modelList = append(modelList, m)
		}
	}

	summary, err := ingest.NewIngestor(database).Run(ctx, ingest.Options{
		FileName: *fileName,
		Title:    *title,
		Language: *language,
		Models:   modelList,
		PagesDir: *pagesDir,
		PDFPath:  *pdfPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("ingest manual")
	}

	log.Info().
		Int64("manual_id", summary.ManualID).
		Int("chunks", summary.Chunks).
		Int("images", summary.Images).
		Msg("done; rebuild the index to make the new chunks searchable")
}
