//go:build integration

package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/intake"
)

func Test_Open_With_PostgresContainer(t *testing.T) {
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("intake"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithSQLDriver("pgx"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	cfg := &config.Config{}
	cfg.DB.Driver = "postgres"
	cfg.DB.DSN = fmt.Sprintf("postgres://postgres:postgres@%s:%s/intake?sslmode=disable", host, port.Port())
	cfg.DB.MaxOpenConns = 5
	cfg.DB.MaxIdleConns = 2

	drv, closeFn, err := Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer closeFn()

	ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := Migrate(ctx2, drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// migrations are idempotent
	if err := Migrate(ctx2, drv); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	store := intake.NewStore(drv)
	rowID, err := store.CreateIntake(ctx2, intake.Payload{"intakeId": "ENT-1", "status": "New"})
	if err != nil {
		t.Fatalf("create intake: %v", err)
	}
	if rowID <= 0 {
		t.Errorf("expected a serial rowid, got %d", rowID)
	}

	res, err := store.CreateMetric(ctx2, intake.Payload{"intakeId": "1", "contingency": 12.5, "approvedDate": "2025-07-10"})
	if err != nil {
		t.Fatalf("create metric: %v", err)
	}
	if res.PropagationErr != nil {
		t.Fatalf("propagation: %v", res.PropagationErr)
	}

	edit, err := store.EditMetric(ctx2, "ENT-1", intake.Payload{"contingency": 50})
	if err != nil {
		t.Fatalf("edit metric: %v", err)
	}
	if edit.Changes != 1 {
		t.Errorf("expected 1 change, got %d", edit.Changes)
	}

	row, err := store.GetIntake(ctx2, "ENT-1")
	if err != nil {
		t.Fatalf("get intake: %v", err)
	}
	if row["Approved Date"] != "2025-07-10" {
		t.Errorf("approved date not propagated: %v", row["Approved Date"])
	}

	// concurrent creates on a pooled connection still keep one metrics row
	if _, err := store.CreateIntake(ctx2, intake.Payload{"intakeId": "ENT-2"}); err != nil {
		t.Fatalf("create intake: %v", err)
	}
	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateMetric(ctx2, intake.Payload{"intakeId": "2", "contingency": 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, intake.ErrMetricExists):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || dups != workers-1 {
		t.Fatalf("expected 1 create and %d conflicts, got %d and %d", workers-1, ok, dups)
	}
	metrics, err := store.ListMetrics(ctx2)
	if err != nil {
		t.Fatalf("list metrics: %v", err)
	}
	n := 0
	for _, r := range metrics {
		if r["Intake ID"] == "ENT-2" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected 1 metrics row for ENT-2, got %d", n)
	}
}
