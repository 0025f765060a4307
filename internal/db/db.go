// Package db opens the intake store and applies its schema.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver for PostgreSQL
	_ "modernc.org/sqlite"             // register pure-Go SQLite driver

	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/logx"
)

var dbLogger = logx.GetScope("db")

//go:embed migrations/*.sql
var migrations embed.FS

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

var baseDB *sql.DB

// Open opens the configured database and returns an ent SQL driver over it.
// The returned closer releases the pool.
func Open(cfg *config.Config) (*entsql.Driver, func(), error) {
	var (
		driverName  string
		dialectName string
	)
	switch strings.ToLower(cfg.DB.Driver) {
	case "", "sqlite", "sqlite3":
		driverName, dialectName = "sqlite", dialect.SQLite
	case "postgres", "postgresql", "pgx":
		driverName, dialectName = "pgx", dialect.Postgres
	default:
		return nil, func() {}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, func() {}, fmt.Errorf("DB_DSN is required for %s", dialectName)
	}

	sqldb, err := sql.Open(driverName, cfg.DB.DSN)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening database: %w", err)
	}
	sqldb.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.DB.MaxIdleConns)

	if dialectName == dialect.SQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := sqldb.Exec(pragma); err != nil {
				_ = sqldb.Close()
				return nil, func() {}, fmt.Errorf("setting pragma: %w", err)
			}
		}
	} else if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, func() {}, fmt.Errorf("ping database: %w", err)
	}
	baseDB = sqldb

	drv := entsql.OpenDB(dialectName, sqldb)
	closer := func() {
		baseDB = nil
		if err := drv.Close(); err != nil {
			dbLogger.Sugar().Errorf("close db: %v", err)
		}
	}
	return drv, closer, nil
}

// Migrate creates the jrm and metrics tables if they do not exist.
func Migrate(ctx context.Context, drv *entsql.Driver) error {
	name := "migrations/sqlite.sql"
	if drv.Dialect() == dialect.Postgres {
		name = "migrations/postgres.sql"
	}
	raw, err := migrations.ReadFile(name)
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}
	dbLogger.Debug("schema ready")
	return nil
}

// UpdatePool updates DB pool settings at runtime.
func UpdatePool(maxOpen, maxIdle int) {
	if baseDB == nil {
		return
	}
	if maxOpen > 0 {
		baseDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		baseDB.SetMaxIdleConns(maxIdle)
	}
}
