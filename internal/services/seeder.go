package services

import (
	"codequest/internal/logger"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/seed"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type SeedResult struct {
	Problems   int
	Hackathons int
}

// Seeder loads the reference catalog into empty tables. Running it again, or
// from several processes at once, never duplicates rows.
type Seeder struct {
	db             *sqlx.DB
	problemRepo    repositories.ProblemRepository
	hackathonRepo  repositories.HackathonRepository
	loadProblems   func() ([]models.Problem, error)
	loadHackathons func() ([]models.Hackathon, error)
}

func NewSeeder(db *sqlx.DB, problemRepo repositories.ProblemRepository, hackathonRepo repositories.HackathonRepository) *Seeder {
	return &Seeder{
		db:             db,
		problemRepo:    problemRepo,
		hackathonRepo:  hackathonRepo,
		loadProblems:   seed.Problems,
		loadHackathons: seed.Hackathons,
	}
}

func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	problems, err := s.SeedProblems(ctx)
	if err != nil {
		return nil, err
	}
	hackathons, err := s.SeedHackathons(ctx)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Seeding finished",
		zap.Int("problems_inserted", problems),
		zap.Int("hackathons_inserted", hackathons))

	return &SeedResult{Problems: problems, Hackathons: hackathons}, nil
}

// SeedProblems inserts the embedded problems when the catalog is empty.
func (s *Seeder) SeedProblems(ctx context.Context) (int, error) {
	problems, err := s.loadProblems()
	if err != nil {
		return 0, err
	}

	inserted := 0
	err = repositories.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		count, err := s.problemRepo.CountProblems(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		inserted, err = s.problemRepo.InsertProblems(ctx, tx, problems)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed problems: %w", err)
	}

	if inserted > 0 {
		s.problemRepo.InvalidateCache(ctx)
	}
	return inserted, nil
}

// SeedHackathons inserts the embedded listings when none exist.
func (s *Seeder) SeedHackathons(ctx context.Context) (int, error) {
	hackathons, err := s.loadHackathons()
	if err != nil {
		return 0, err
	}

	inserted := 0
	err = repositories.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		count, err := s.hackathonRepo.CountHackathons(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		inserted, err = s.hackathonRepo.InsertHackathons(ctx, tx, hackathons)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed hackathons: %w", err)
	}

	if inserted > 0 {
		s.hackathonRepo.InvalidateCache(ctx)
	}
	return inserted, nil
}
