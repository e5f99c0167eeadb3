package services

import (
	"codequest/internal/common"
	"codequest/internal/events"
	"codequest/internal/logger"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type EventPublisher interface {
	PublishSubmission(ctx context.Context, event events.SubmissionRecorded) error
}

type SubmissionService struct {
	db             *sqlx.DB
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	progress       *ProgressTracker
	evaluator      Evaluator
	publisher      EventPublisher
	now            func() time.Time
}

func NewSubmissionService(
	db *sqlx.DB,
	problemRepo repositories.ProblemRepository,
	submissionRepo repositories.SubmissionRepository,
	progress *ProgressTracker,
	evaluator Evaluator,
	publisher EventPublisher,
) *SubmissionService {
	return &SubmissionService{
		db:             db,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		progress:       progress,
		evaluator:      evaluator,
		publisher:      publisher,
		now:            utcNow,
	}
}

// Submit evaluates code for problemID, records the attempt and awards XP on
// the user's first pass. Nothing is written when the problem is unknown or
// the evaluator cannot run.
func (s *SubmissionService) Submit(ctx context.Context, userID string, problemID int, req models.SubmitCodeRequest) (*models.SubmitCodeResponse, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	problem, err := s.problemRepo.GetProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	// Unsupported languages are rejected before any evaluator is involved.
	language, _, err := GetLanguageConfig(req.Language)
	if err != nil {
		return nil, err
	}

	program := combineCode(problem.Harness[language], req.Code)
	result, err := s.evaluator.Evaluate(ctx, program, language, problem.TestCases)
	if err != nil {
		if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to evaluate submission: %w", err)
	}

	submission := &models.Submission{
		UserID:    userID,
		ProblemID: problem.ID,
		Code:      req.Code,
		Language:  language,
		Status:    models.StatusFor(result.Passed),
		Output:    result.Output,
		CreatedAt: s.now(),
	}

	xpEarned := 0
	err = repositories.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		// Serializes concurrent submissions from the same user.
		progress, err := s.progress.LockProgress(ctx, tx, userID)
		if err != nil {
			return err
		}

		solvedBefore, err := s.submissionRepo.HasPassed(ctx, tx, userID, problem.ID)
		if err != nil {
			return err
		}

		if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
			return err
		}

		if result.Passed && !solvedBefore {
			if err := s.progress.AwardLocked(ctx, tx, progress, problem.XPReward); err != nil {
				return err
			}
			xpEarned = problem.XPReward
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Submission recorded",
		zap.Int("submission_id", submission.ID),
		zap.String("user_id", userID),
		zap.Int("problem_id", problem.ID),
		zap.String("status", submission.Status),
		zap.Int("xp_earned", xpEarned))

	s.publish(ctx, submission, xpEarned)

	response := &models.SubmitCodeResponse{
		Success:  true,
		Output:   result.Output,
		Passed:   result.Passed,
		XPEarned: xpEarned,
	}

	next, err := s.problemRepo.GetNextProblem(ctx, problem.Order)
	switch {
	case err == nil:
		response.NextProblemSlug = next.Slug
	case errors.Is(err, common.ErrNotFound):
	default:
		// the attempt is committed; a failed lookup only drops the hint
		logger.Log.Warn("Failed to resolve next problem",
			zap.Int("problem_id", problem.ID),
			zap.Error(err))
	}

	return response, nil
}

func (s *SubmissionService) publish(ctx context.Context, submission *models.Submission, xpEarned int) {
	event := events.SubmissionRecorded{
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		ProblemID:    submission.ProblemID,
		Status:       submission.Status,
		XPEarned:     xpEarned,
		CreatedAt:    submission.CreatedAt,
	}
	if err := s.publisher.PublishSubmission(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish submission event",
			zap.Int("submission_id", submission.ID),
			zap.Error(err))
	}
}

// ListSubmissions returns the user's attempts at problemID, newest first.
func (s *SubmissionService) ListSubmissions(ctx context.Context, userID string, problemID int) ([]models.Submission, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	if _, err := s.problemRepo.GetProblemByID(ctx, problemID); err != nil {
		return nil, err
	}
	return s.submissionRepo.GetSubmissionsByUserAndProblem(ctx, userID, problemID)
}
