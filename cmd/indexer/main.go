package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"manual-rag/internal/config"
	"manual-rag/internal/db"
	"manual-rag/internal/embedding"
	"manual-rag/internal/index"
	"manual-rag/internal/retry"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "./configs/config.yaml", "path to config file")
	manualID := flag.Int64("manual-id", 0, "restrict the build to one manual (0 = all)")
	name := flag.String("name", "", "index name (defaults to rag.index_name)")
	testQuery := flag.String("test-query", "", "optional query to run against the fresh build")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *name == "" {
		*name = cfg.RAG.IndexName
	}

	sqldb := db.ConnectDB(cfg.Database.DSN, cfg.Database.Password)
	defer sqldb.Close()
	database := db.NewDB(sqldb, cfg.Database.Debug)

	provider, err := embedding.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init embedding provider")
	}

	ctx := context.Background()

	textRows, err := db.LoadChunkRows(ctx, database, *manualID)
	if err != nil {
		log.Fatal().Err(err).Msg("load chunk rows")
	}
	log.Info().Int("rows", len(textRows)).Int64("manual_id", *manualID).Msg("loaded corpus")

	rows := make([]index.Row, 0, len(textRows))
	for _, row := range textRows {
		rows = append(rows, index.Row{ID: row.ID, Text: row.Text})
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelay * float64(time.Second)),
		Factor:      cfg.Retry.Factor,
		MaxJitter:   time.Duration(cfg.Retry.MaxJitter * float64(time.Second)),
	}

	builder := index.NewBuilder(provider, policy, cfg.RAG.IndexDir)
	manifest, err := builder.Build(ctx, rows, *name)
	if err != nil {
		log.Fatal().Err(err).Msg("build index")
	}
	if manifest == nil {
		log.Warn().Msg("nothing indexed")
		return
	}
	log.Info().
		Str("name", manifest.Name).
		Int("count", manifest.Count).
		Int("dimension", manifest.Dimension).
		Str("vector_file", manifest.VectorFile).
		Msg("index published")

	if *testQuery != "" {
		searcher := index.NewSearcher(provider, cfg.RAG.IndexDir)
		results, err := searcher.Search(ctx, *name, *testQuery, cfg.RAG.MaxDocs)
		if err != nil {
			log.Fatal().Err(err).Msg("test query")
		}
		for i, res := range results {
			log.Info().Int("rank", i+1).Int64("chunk_id", res.ID).Float32("score", res.Score).Msg("test hit")
		}
	}
}
