package db

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Manual is a source document registered by the ingestion path.
type Manual struct {
	bun.BaseModel `bun:"table:manuals,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement"`
	FileName  string    `bun:"file_name,notnull,unique"`
	Models    []string  `bun:"models,array"`
	Language  string    `bun:"language"`
	Title     string    `bun:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Chunk is a page-scoped unit of extracted manual text, the unit of retrieval.
type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID        int64             `bun:"id,pk,autoincrement"`
	ManualID  int64             `bun:"manual_id,notnull"`
	SectionID sql.NullInt64     `bun:"section_id"`
	Page      int               `bun:"page,notnull"`
	Content   string            `bun:"content,notnull"`
	Meta      map[string]string `bun:"meta,type:jsonb"`
}

// PageImage maps (manual_id, page) to a rendered page image on disk.
// At most one row per (manual_id, page).
type PageImage struct {
	bun.BaseModel `bun:"table:page_images,alias:p"`

	ID       int64  `bun:"id,pk,autoincrement"`
	ManualID int64  `bun:"manual_id,notnull"`
	Page     int    `bun:"page,notnull"`
	Path     string `bun:"path,notnull"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(dsn, password string) *sql.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if password != "" {
		opts = append(opts, pgdriver.WithPassword(password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...))
}
