package services

import (
	"codequest/internal/common"
	"codequest/internal/models"
	"context"
	"fmt"
)

type EvaluationResult struct {
	Passed bool
	Output string
}

// Evaluator runs a submitted program against a problem's test cases.
// A returned error means evaluation could not happen at all; a failing
// program is reported through EvaluationResult.Passed.
type Evaluator interface {
	Evaluate(ctx context.Context, code, language string, testCases []models.TestCase) (*EvaluationResult, error)
}

// UnavailableEvaluator is wired when no sandbox is configured.
type UnavailableEvaluator struct{}

func (UnavailableEvaluator) Evaluate(context.Context, string, string, []models.TestCase) (*EvaluationResult, error) {
	return nil, fmt.Errorf("code evaluation is disabled: %w", common.ErrServiceUnavailable)
}
