package services

import (
	"codequest/internal/common"
	"codequest/internal/logger"
	"codequest/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type LanguageConfig struct {
	ContainerImage string
	FileName       string
	BuildCommand   []string // empty for interpreted languages
	RunCommand     []string
}

var languageConfigs = map[string]LanguageConfig{
	"python": {
		ContainerImage: "python:3.12-alpine",
		FileName:       "main.py",
		RunCommand:     []string{"python3", "main.py"},
	},
	"go": {
		ContainerImage: "golang:1.23-alpine",
		FileName:       "main.go",
		BuildCommand:   []string{"go", "build", "-o", "solution", "main.go"},
		RunCommand:     []string{"./solution"},
	},
}

// GetLanguageConfig normalizes language and returns its runner settings.
func GetLanguageConfig(language string) (string, LanguageConfig, error) {
	name := strings.ToLower(strings.TrimSpace(language))
	config, ok := languageConfigs[name]
	if !ok {
		return "", LanguageConfig{}, common.NewValidationError("language", fmt.Sprintf("Unsupported language: %s", language))
	}
	return name, config, nil
}

type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// containerRuntime is the slice of a container engine the runner needs.
type containerRuntime interface {
	StartContainer(ctx context.Context, image string) (string, error)
	CopyFile(ctx context.Context, containerID, name, content string) error
	Exec(ctx context.Context, containerID string, cmd []string, stdin string, timeout time.Duration) (*ExecResult, error)
	RemoveContainer(ctx context.Context, containerID string) error
}

// CodeRunner evaluates submissions in a throwaway container per attempt.
type CodeRunner struct {
	runtime containerRuntime
	timeout time.Duration
}

func NewCodeRunner(runtime containerRuntime, timeout time.Duration) *CodeRunner {
	return &CodeRunner{runtime: runtime, timeout: timeout}
}

// Evaluate compiles when needed, then feeds each test case input on stdin
// and compares trimmed stdout with the expected value. It stops at the first
// failing case.
func (r *CodeRunner) Evaluate(ctx context.Context, code, language string, testCases []models.TestCase) (*EvaluationResult, error) {
	languageName, langConfig, err := GetLanguageConfig(language)
	if err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		return nil, fmt.Errorf("problem has no test cases")
	}

	startTime := time.Now()

	containerID, err := r.runtime.StartContainer(ctx, langConfig.ContainerImage)
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", errors.Join(common.ErrServiceUnavailable, err))
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.runtime.RemoveContainer(cleanupCtx, containerID); err != nil {
			logger.Log.Warn("Failed to remove container",
				zap.String("container_id", containerID),
				zap.Error(err))
		}
	}()

	if err := r.runtime.CopyFile(ctx, containerID, langConfig.FileName, code); err != nil {
		return nil, fmt.Errorf("failed to copy source: %w", errors.Join(common.ErrServiceUnavailable, err))
	}

	total := len(testCases)

	if len(langConfig.BuildCommand) > 0 {
		build, err := r.runtime.Exec(ctx, containerID, langConfig.BuildCommand, "", r.timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to compile: %w", errors.Join(common.ErrServiceUnavailable, err))
		}
		if build.TimedOut || build.ExitCode != 0 {
			detail := firstNonEmpty(build.Stderr, build.Stdout)
			if build.TimedOut {
				detail = "compilation timed out"
			}
			return &EvaluationResult{
				Passed: false,
				Output: formatTranscript("Compilation Error:\n"+strings.TrimSpace(detail), 0, total, 0),
			}, nil
		}
	}

	for i, tc := range testCases {
		caseNumber := i + 1

		logger.Log.Debug("Executing test case",
			zap.Int("test_case", caseNumber),
			zap.String("language", languageName),
			zap.String("container_id", containerID))

		run, err := r.runtime.Exec(ctx, containerID, langConfig.RunCommand, tc.Input, r.timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to run test case %d: %w", caseNumber, errors.Join(common.ErrServiceUnavailable, err))
		}

		if run.TimedOut {
			failure := fmt.Sprintf("Time Limit Exceeded on test case %d (limit %s)", caseNumber, r.timeout)
			return &EvaluationResult{Output: formatTranscript(failure, i, total, 0)}, nil
		}
		if run.ExitCode != 0 {
			failure := fmt.Sprintf("Runtime Error on test case %d:\n%s", caseNumber, strings.TrimSpace(firstNonEmpty(run.Stderr, run.Stdout)))
			return &EvaluationResult{Output: formatTranscript(failure, i, total, 0)}, nil
		}

		actual := strings.TrimSpace(run.Stdout)
		expected := strings.TrimSpace(tc.Expected)
		if actual != expected {
			failure := fmt.Sprintf("Wrong Answer on test case %d\nInput: %s\nExpected: %s\nActual: %s", caseNumber, tc.Input, expected, actual)
			return &EvaluationResult{Output: formatTranscript(failure, i, total, 0)}, nil
		}
	}

	return &EvaluationResult{
		Passed: true,
		Output: formatTranscript("", total, total, time.Since(startTime)),
	}, nil
}

// combineCode wraps userCode with the problem's harness for one language.
// Without a harness the submission must be a complete program.
func combineCode(harness models.Harness, userCode string) string {
	var parts []string
	for _, part := range []string{harness.Prelude, userCode, harness.Driver} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// formatTranscript renders "Tests Passed: k/n", preceded by the failure when
// there is one and followed by the run time when every case passed.
func formatTranscript(failure string, passed, total int, elapsed time.Duration) string {
	var b strings.Builder
	if failure != "" {
		b.WriteString(failure)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Tests Passed: %d/%d", passed, total)
	if failure == "" && passed == total {
		fmt.Fprintf(&b, "\nExecution Time: %.2fs", elapsed.Seconds())
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
