package repositories

import (
	"codequest/internal/cache"
	"codequest/internal/common"
	"codequest/internal/dbs"
	"codequest/internal/logger"
	"codequest/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const problemsCacheKey = "problems:all"

const problemColumns = `id, slug, title, description, difficulty, category, starter_code, test_cases, harness, xp_reward, sort_order`

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.Problem, error)
	GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error)
	GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error)
	GetNextProblem(ctx context.Context, afterOrder int) (*models.Problem, error)
	CountProblems(ctx context.Context, q sqlx.QueryerContext) (int, error)
	InsertProblems(ctx context.Context, ext sqlx.ExtContext, problems []models.Problem) (int, error)
	InvalidateCache(ctx context.Context)
}

type problemRepository struct {
	db    *sqlx.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewProblemRepository(db *sqlx.DB, c cache.Cache, ttl time.Duration) ProblemRepository {
	return &problemRepository{db: db, cache: c, ttl: ttl}
}

// GetProblems returns the whole catalog ordered by sort_order.
func (r *problemRepository) GetProblems(ctx context.Context) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.cache.Get(ctx, problemsCacheKey, &problems); err == nil {
		logger.Log.Debug("Cache hit, returning problems")
		return problems, nil
	}

	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY sort_order ASC`
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}
	if problems == nil {
		problems = []models.Problem{}
	}

	// An empty catalog is not cached so the first read after seeding sees rows.
	if len(problems) > 0 {
		if err := r.cache.Set(ctx, problemsCacheKey, problems, r.ttl); err != nil {
			logger.Log.Warn("Failed to cache problems", zap.Error(err))
		}
	}

	return problems, nil
}

func (r *problemRepository) GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE slug = ?`
	return r.getOne(ctx, query, slug)
}

func (r *problemRepository) GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = ?`
	return r.getOne(ctx, query, problemID)
}

// GetNextProblem returns the problem with the smallest order greater than
// afterOrder.
func (r *problemRepository) GetNextProblem(ctx context.Context, afterOrder int) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE sort_order > ? ORDER BY sort_order ASC LIMIT 1`
	return r.getOne(ctx, query, afterOrder)
}

func (r *problemRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Problem, error) {
	var problem models.Problem
	if err := r.db.GetContext(ctx, &problem, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewNotFoundError("Problem")
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	return &problem, nil
}

func (r *problemRepository) CountProblems(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM problems`); err != nil {
		return 0, fmt.Errorf("failed to count problems: %w", err)
	}
	return count, nil
}

// InsertProblems inserts problems, skipping any whose slug already exists,
// and reports how many rows were written.
func (r *problemRepository) InsertProblems(ctx context.Context, ext sqlx.ExtContext, problems []models.Problem) (int, error) {
	query := ext.Rebind(dbs.InsertIgnore(ext.DriverName(), "problems",
		[]string{"slug", "title", "description", "difficulty", "category", "starter_code", "test_cases", "harness", "xp_reward", "sort_order"},
		"slug"))

	inserted := 0
	for _, p := range problems {
		result, err := ext.ExecContext(ctx, query,
			p.Slug, p.Title, p.Description, p.Difficulty, p.Category,
			p.StarterCode, p.TestCases, p.Harness, p.XPReward, p.Order,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert problem %q: %w", p.Slug, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	return inserted, nil
}

func (r *problemRepository) InvalidateCache(ctx context.Context) {
	if err := r.cache.Delete(ctx, problemsCacheKey); err != nil {
		logger.Log.Warn("Failed to invalidate problems cache", zap.Error(err))
	}
}
