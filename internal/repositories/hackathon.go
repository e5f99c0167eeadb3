package repositories

import (
	"codequest/internal/cache"
	"codequest/internal/dbs"
	"codequest/internal/logger"
	"codequest/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const hackathonsCacheKey = "hackathons:all"

type HackathonRepository interface {
	GetHackathons(ctx context.Context) ([]models.Hackathon, error)
	CountHackathons(ctx context.Context, q sqlx.QueryerContext) (int, error)
	InsertHackathons(ctx context.Context, ext sqlx.ExtContext, hackathons []models.Hackathon) (int, error)
	InvalidateCache(ctx context.Context)
}

type hackathonRepository struct {
	db    *sqlx.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewHackathonRepository(db *sqlx.DB, c cache.Cache, ttl time.Duration) HackathonRepository {
	return &hackathonRepository{db: db, cache: c, ttl: ttl}
}

// GetHackathons lists hackathons, latest start date first.
func (r *hackathonRepository) GetHackathons(ctx context.Context) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	if err := r.cache.Get(ctx, hackathonsCacheKey, &hackathons); err == nil {
		logger.Log.Debug("Cache hit, returning hackathons")
		return hackathons, nil
	}

	query := `SELECT id, title, description, url, start_date, end_date, platform, image_url, tags
              FROM hackathons ORDER BY start_date DESC, id ASC`
	if err := r.db.SelectContext(ctx, &hackathons, query); err != nil {
		return nil, fmt.Errorf("failed to get hackathons: %w", err)
	}
	if hackathons == nil {
		hackathons = []models.Hackathon{}
	}

	if len(hackathons) > 0 {
		if err := r.cache.Set(ctx, hackathonsCacheKey, hackathons, r.ttl); err != nil {
			logger.Log.Warn("Failed to cache hackathons", zap.Error(err))
		}
	}

	return hackathons, nil
}

func (r *hackathonRepository) CountHackathons(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM hackathons`); err != nil {
		return 0, fmt.Errorf("failed to count hackathons: %w", err)
	}
	return count, nil
}

func (r *hackathonRepository) InsertHackathons(ctx context.Context, ext sqlx.ExtContext, hackathons []models.Hackathon) (int, error) {
	query := ext.Rebind(dbs.InsertIgnore(ext.DriverName(), "hackathons",
		[]string{"title", "description", "url", "start_date", "end_date", "platform", "image_url", "tags"},
		"title"))

	inserted := 0
	for _, h := range hackathons {
		result, err := ext.ExecContext(ctx, query,
			h.Title, h.Description, h.URL, h.StartDate, h.EndDate, h.Platform, h.ImageURL, h.Tags,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert hackathon %q: %w", h.Title, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	return inserted, nil
}

func (r *hackathonRepository) InvalidateCache(ctx context.Context) {
	if err := r.cache.Delete(ctx, hackathonsCacheKey); err != nil {
		logger.Log.Warn("Failed to invalidate hackathons cache", zap.Error(err))
	}
}
