package services

import (
	"codequest/internal/models"
	"codequest/internal/repositories"
	"context"
	"strings"
)

// CatalogService answers catalog reads, annotating each problem with the
// reader's solved status.
type CatalogService struct {
	problemRepo    repositories.ProblemRepository
	submissionRepo repositories.SubmissionRepository
	hackathonRepo  repositories.HackathonRepository
}

func NewCatalogService(
	problemRepo repositories.ProblemRepository,
	submissionRepo repositories.SubmissionRepository,
	hackathonRepo repositories.HackathonRepository,
) *CatalogService {
	return &CatalogService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		hackathonRepo:  hackathonRepo,
	}
}

// ListProblemsWithStatus returns the catalog in order, optionally narrowed to
// one category (case-insensitive). An empty userID marks every problem
// unsolved.
func (s *CatalogService) ListProblemsWithStatus(ctx context.Context, userID, category string) ([]models.ProblemWithStatus, error) {
	problems, err := s.problemRepo.GetProblems(ctx)
	if err != nil {
		return nil, err
	}

	solved, err := s.solvedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	result := make([]models.ProblemWithStatus, 0, len(problems))
	for _, p := range problems {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		result = append(result, models.ProblemWithStatus{Problem: p, IsSolved: solved[p.ID]})
	}

	return result, nil
}

func (s *CatalogService) GetProblemWithStatus(ctx context.Context, userID, slug string) (*models.ProblemWithStatus, error) {
	problem, err := s.problemRepo.GetProblemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	solved, err := s.solvedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ProblemWithStatus{Problem: *problem, IsSolved: solved[problem.ID]}, nil
}

func (s *CatalogService) GetHackathons(ctx context.Context) ([]models.Hackathon, error) {
	return s.hackathonRepo.GetHackathons(ctx)
}

func (s *CatalogService) solvedSet(ctx context.Context, userID string) (map[int]bool, error) {
	if userID == "" {
		return map[int]bool{}, nil
	}
	return s.submissionRepo.GetSolvedProblemIDs(ctx, userID)
}
