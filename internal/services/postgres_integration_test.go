//go:build integration

package services

import (
	"codequest/internal/cache"
	"codequest/internal/dbs"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"context"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("codequest"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("postgres.Run() error = %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	return connStr
}

func connectPostgres(t *testing.T, connStr string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open(dbs.DriverPostgres, connStr)
	if err != nil {
		t.Fatalf("sqlx.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func openPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	db := connectPostgres(t, startPostgres(t))
	if err := dbs.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestPostgres_ConcurrentMigrate(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	const replicas = 3
	var wg sync.WaitGroup
	errs := make([]error, replicas)
	for i := 0; i < replicas; i++ {
		db := connectPostgres(t, connStr)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = dbs.Migrate(ctx, db)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("replica %d Migrate() error = %v", i, err)
		}
	}

	db := connectPostgres(t, connStr)
	var rows int
	if err := db.Get(&rows, `SELECT COUNT(*) FROM schema_migrations`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("schema_migrations rows = %d; want 1", rows)
	}
}

func TestPostgres_ConcurrentFirstPass(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	problems := repositories.NewProblemRepository(db, cache.NewNoopCache(), time.Minute)
	hackathons := repositories.NewHackathonRepository(db, cache.NewNoopCache(), time.Minute)
	submissions := repositories.NewSubmissionRepository(db)
	progress := NewProgressTracker(db, repositories.NewProgressRepository())

	seeder := NewSeeder(db, problems, hackathons)
	if _, err := seeder.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if result, err := seeder.Seed(ctx); err != nil || result.Problems != 0 {
		t.Fatalf("second Seed() = %+v, %v", result, err)
	}

	problem, err := problems.GetProblemBySlug(ctx, "sum-of-two")
	if err != nil {
		t.Fatalf("GetProblemBySlug() error = %v", err)
	}

	svc := NewSubmissionService(db, problems, submissions, progress, passWhen("ok"), &recordingPublisher{})

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Submit(ctx, "pg-user", problem.ID, models.SubmitCodeRequest{Code: "ok", Language: "python"})
			if err != nil {
				t.Errorf("Submit() error = %v", err)
				return
			}
			mu.Lock()
			total += resp.XPEarned
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != problem.XPReward {
		t.Errorf("total XPEarned = %d; want %d", total, problem.XPReward)
	}

	stored, err := progress.GetProgress(ctx, "pg-user")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if stored.XP != 150 || stored.Level != 2 || stored.SolvedCount != 1 {
		t.Errorf("progress = %+v", stored)
	}
}

func TestPostgres_ConcurrentInitialize(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()
	progress := NewProgressTracker(db, repositories.NewProgressRepository())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := progress.InitializeProgress(ctx, "pg-new"); err != nil {
				t.Errorf("InitializeProgress() error = %v", err)
			}
		}()
	}
	wg.Wait()

	var rows int
	if err := db.Get(&rows, `SELECT COUNT(*) FROM user_progress WHERE user_id = $1`, "pg-new"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d; want 1", rows)
	}
}
