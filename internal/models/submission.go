package models

import (
	"time"
)

const (
	StatusPassed = "Passed"
	StatusFailed = "Failed"
)

type Submission struct {
	ID        int       `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ProblemID int       `db:"problem_id" json:"problemId"`
	Code      string    `db:"code" json:"code"`
	Language  string    `db:"language" json:"language"`
	Status    string    `db:"status" json:"status"`
	Output    string    `db:"output" json:"output"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (s *Submission) Passed() bool {
	return s.Status == StatusPassed
}

func StatusFor(passed bool) string {
	if passed {
		return StatusPassed
	}
	return StatusFailed
}

type SubmitCodeRequest struct {
	Code     string `json:"code" binding:"required,max=65536"`
	Language string `json:"language" binding:"required,max=32"`
}

type SubmitCodeResponse struct {
	Success         bool   `json:"success"`
	Output          string `json:"output"`
	Passed          bool   `json:"passed"`
	XPEarned        int    `json:"xpEarned"`
	NextProblemSlug string `json:"nextProblemSlug,omitempty"`
}
