package repositories

import (
	"codequest/internal/dbs"
	"codequest/internal/models"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const submissionColumns = `id, user_id, problem_id, code, language, status, output, created_at`

// SubmissionRepository is the append-only submission ledger. There is no
// update or delete.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, ext sqlx.ExtContext, submission *models.Submission) error
	GetSubmissionsByUserAndProblem(ctx context.Context, userID string, problemID int) ([]models.Submission, error)
	HasPassed(ctx context.Context, ext sqlx.ExtContext, userID string, problemID int) (bool, error)
	GetSolvedProblemIDs(ctx context.Context, userID string) (map[int]bool, error)
}

type submissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) CreateSubmission(ctx context.Context, ext sqlx.ExtContext, submission *models.Submission) error {
	query := `INSERT INTO submissions (user_id, problem_id, code, language, status, output, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := dbs.InsertReturningID(ctx, ext, query,
		submission.UserID,
		submission.ProblemID,
		submission.Code,
		submission.Language,
		submission.Status,
		submission.Output,
		submission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	submission.ID = int(id)
	return nil
}

// GetSubmissionsByUserAndProblem returns the history newest-first.
func (r *submissionRepository) GetSubmissionsByUserAndProblem(ctx context.Context, userID string, problemID int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + `
              FROM submissions
              WHERE user_id = ? AND problem_id = ?
              ORDER BY created_at DESC, id DESC`

	submissions := []models.Submission{}
	if err := r.db.SelectContext(ctx, &submissions, r.db.Rebind(query), userID, problemID); err != nil {
		return nil, fmt.Errorf("failed to get user submissions: %w", err)
	}

	return submissions, nil
}

func (r *submissionRepository) HasPassed(ctx context.Context, ext sqlx.ExtContext, userID string, problemID int) (bool, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE user_id = ? AND problem_id = ? AND status = ?`

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, ext.Rebind(query), userID, problemID, models.StatusPassed); err != nil {
		return false, fmt.Errorf("failed to check solved status: %w", err)
	}

	return count > 0, nil
}

func (r *submissionRepository) GetSolvedProblemIDs(ctx context.Context, userID string) (map[int]bool, error) {
	query := `SELECT DISTINCT problem_id FROM submissions WHERE user_id = ? AND status = ?`

	var problemIDs []int
	if err := r.db.SelectContext(ctx, &problemIDs, r.db.Rebind(query), userID, models.StatusPassed); err != nil {
		return nil, fmt.Errorf("failed to get solved problem IDs: %w", err)
	}

	solvedMap := make(map[int]bool, len(problemIDs))
	for _, id := range problemIDs {
		solvedMap[id] = true
	}

	return solvedMap, nil
}
