package db

import (
	"context"
	"path/filepath"
	"testing"

	entsql "entgo.io/ent/dialect/sql"

	"jrm-intake-api/internal/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = filepath.Join(t.TempDir(), "intake.db")
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	return cfg
}

func columns(t *testing.T, drv *entsql.Driver, table string) []string {
	t.Helper()
	var rows entsql.Rows
	if err := drv.Query(context.Background(), "SELECT * FROM "+table+" LIMIT 0", []any{}, &rows); err != nil {
		t.Fatalf("query %s: %v", table, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	return cols
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	drv, closeFn, err := Open(sqliteConfig(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()

	ctx := context.Background()
	if err := Migrate(ctx, drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Migrate(ctx, drv); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	jrm := columns(t, drv, "jrm")
	if len(jrm) != 8 || jrm[0] != "Intake ID" || jrm[7] != "Approved Date" {
		t.Fatalf("unexpected jrm columns: %v", jrm)
	}
	metrics := columns(t, drv, "metrics")
	if len(metrics) != 25 {
		t.Fatalf("expected 25 metrics columns, got %d: %v", len(metrics), metrics)
	}
	for _, want := range []string{"ET-BA E%", "AO/TO TC", "LOB Sub-Total"} {
		found := false
		for _, c := range metrics {
			found = found || c == want
		}
		if !found {
			t.Fatalf("column %q missing from %v", want, metrics)
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.Driver = "mysql"
	if _, _, err := Open(cfg); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	cfg.DB.Driver = "postgres"
	cfg.DB.DSN = ""
	if _, _, err := Open(cfg); err == nil {
		t.Fatalf("expected missing DSN error")
	}
}
