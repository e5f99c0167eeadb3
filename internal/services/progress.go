package services

import (
	"codequest/internal/common"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ProgressTracker owns UserProgress. AwardXP and AwardLocked are the only
// paths that change xp or level.
type ProgressTracker struct {
	db           *sqlx.DB
	progressRepo repositories.ProgressRepository
	now          func() time.Time
}

func NewProgressTracker(db *sqlx.DB, progressRepo repositories.ProgressRepository) *ProgressTracker {
	return &ProgressTracker{db: db, progressRepo: progressRepo, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// GetProgress returns the stored row or a NotFound error.
func (t *ProgressTracker) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	return t.progressRepo.GetProgress(ctx, t.db, userID)
}

// InitializeProgress creates the starting row unless one exists and returns
// whichever row is stored. Concurrent callers all see the same row.
func (t *ProgressTracker) InitializeProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	if err := t.progressRepo.InsertProgressIfAbsent(ctx, t.db, models.NewUserProgress(userID, t.now())); err != nil {
		return nil, err
	}
	return t.progressRepo.GetProgress(ctx, t.db, userID)
}

// GetOrInitializeProgress backs the stats read: existing users get their row,
// new users get a fresh one.
func (t *ProgressTracker) GetOrInitializeProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	progress, err := t.GetProgress(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return t.InitializeProgress(ctx, userID)
}

// LockProgress ensures the row exists and reads it under a row lock held
// until ext's transaction ends.
func (t *ProgressTracker) LockProgress(ctx context.Context, ext sqlx.ExtContext, userID string) (*models.UserProgress, error) {
	if err := t.progressRepo.InsertProgressIfAbsent(ctx, ext, models.NewUserProgress(userID, t.now())); err != nil {
		return nil, err
	}
	return t.progressRepo.GetProgressForUpdate(ctx, ext, userID)
}

// AwardXP adds amount, recomputes the level, bumps solvedCount and touches
// lastActive. The row is created first when missing.
func (t *ProgressTracker) AwardXP(ctx context.Context, ext sqlx.ExtContext, userID string, amount int) (*models.UserProgress, error) {
	if amount < 0 {
		return nil, fmt.Errorf("negative xp award %d for user %s", amount, userID)
	}

	progress, err := t.LockProgress(ctx, ext, userID)
	if err != nil {
		return nil, err
	}
	if err := t.AwardLocked(ctx, ext, progress, amount); err != nil {
		return nil, err
	}
	return progress, nil
}

// AwardLocked is AwardXP for a row the caller already read with
// LockProgress in the same transaction. progress is updated in place.
func (t *ProgressTracker) AwardLocked(ctx context.Context, ext sqlx.ExtContext, progress *models.UserProgress, amount int) error {
	if amount < 0 {
		return fmt.Errorf("negative xp award %d for user %s", amount, progress.UserID)
	}

	progress.Award(amount, t.now())
	return t.progressRepo.UpdateProgress(ctx, ext, progress)
}
