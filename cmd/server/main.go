package main

import (
	"flag"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"manual-rag/internal/calendar"
	"manual-rag/internal/config"
	"manual-rag/internal/db"
	"manual-rag/internal/embedding"
	"manual-rag/internal/index"
	"manual-rag/internal/llmservice"
	"manual-rag/internal/rag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	sqldb := db.ConnectDB(cfg.Database.DSN, cfg.Database.Password)
	defer sqldb.Close()
	database := db.NewDB(sqldb, cfg.Database.Debug)

	provider, err := embedding.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init embedding provider")
	}

	searcher := index.NewSearcher(provider, cfg.RAG.IndexDir)
	engine := rag.NewEngine(searcher, database, cfg.RAG.IndexName)
	synth := rag.NewSynthesizer(llmservice.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model))
	assembler := rag.Assembler{
		ImageRoot:    cfg.RAG.ImageRoot,
		ImageMount:   cfg.RAG.ImageMount,
		StaticPrefix: cfg.RAG.StaticPrefix,
	}

	var cal calendar.Client
	if googleCal, err := calendar.NewGoogleClient(cfg.Calendar.TokenFile, cfg.Calendar.Timezone); err != nil {
		log.Warn().Err(err).Msg("calendar client unavailable, reminder requests will fail")
	} else {
		cal = googleCal
	}

	router := rag.NewRouter(engine, synth, assembler, cal)

	app := fiber.New(fiber.Config{
		AppName:      "manual-rag",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(fiberlog.New())

	h := &handlers{router: router, calendar: cal, maxDocs: cfg.RAG.MaxDocs}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/rag/query", h.Query)
	app.Post("/rag/image-query", h.ImageQuery)
	app.Get("/calendar/events", h.ListEvents)
	app.Static(cfg.RAG.ImageMount, cfg.RAG.ImageRoot)

	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
