package repositories

import (
	"codequest/internal/common"
	"codequest/internal/dbs"
	"codequest/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const progressColumns = `user_id, level, xp, streak, last_active, solved_count`

// ProgressRepository stores one UserProgress row per user. Every method runs
// on the supplied handle so callers can compose them inside a transaction.
type ProgressRepository interface {
	GetProgress(ctx context.Context, ext sqlx.ExtContext, userID string) (*models.UserProgress, error)
	GetProgressForUpdate(ctx context.Context, ext sqlx.ExtContext, userID string) (*models.UserProgress, error)
	InsertProgressIfAbsent(ctx context.Context, ext sqlx.ExtContext, progress *models.UserProgress) error
	UpdateProgress(ctx context.Context, ext sqlx.ExtContext, progress *models.UserProgress) error
}

type progressRepository struct{}

func NewProgressRepository() ProgressRepository {
	return &progressRepository{}
}

func (r *progressRepository) GetProgress(ctx context.Context, ext sqlx.ExtContext, userID string) (*models.UserProgress, error) {
	return r.get(ctx, ext, `SELECT `+progressColumns+` FROM user_progress WHERE user_id = ?`, userID)
}

// GetProgressForUpdate reads the row and, on drivers with row locks, holds
// it until the surrounding transaction ends.
func (r *progressRepository) GetProgressForUpdate(ctx context.Context, ext sqlx.ExtContext, userID string) (*models.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ?` + dbs.LockClause(ext.DriverName())
	return r.get(ctx, ext, query, userID)
}

func (r *progressRepository) get(ctx context.Context, ext sqlx.ExtContext, query, userID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	if err := sqlx.GetContext(ctx, ext, &progress, ext.Rebind(query), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewNotFoundError("User progress")
		}
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return &progress, nil
}

// InsertProgressIfAbsent writes progress unless a row for the user exists.
// A conflicting insert is ignored, never reported.
func (r *progressRepository) InsertProgressIfAbsent(ctx context.Context, ext sqlx.ExtContext, progress *models.UserProgress) error {
	query := ext.Rebind(dbs.InsertIgnore(ext.DriverName(), "user_progress",
		[]string{"user_id", "level", "xp", "streak", "last_active", "solved_count"},
		"user_id"))

	if _, err := ext.ExecContext(ctx, query,
		progress.UserID,
		progress.Level,
		progress.XP,
		progress.Streak,
		progress.LastActive,
		progress.SolvedCount,
	); err != nil {
		return fmt.Errorf("failed to initialize user progress: %w", err)
	}

	return nil
}

func (r *progressRepository) UpdateProgress(ctx context.Context, ext sqlx.ExtContext, progress *models.UserProgress) error {
	query := `UPDATE user_progress SET level = ?, xp = ?, streak = ?, last_active = ?, solved_count = ? WHERE user_id = ?`

	result, err := ext.ExecContext(ctx, ext.Rebind(query),
		progress.Level,
		progress.XP,
		progress.Streak,
		progress.LastActive,
		progress.SolvedCount,
		progress.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.NewNotFoundError("User progress")
	}

	return nil
}
