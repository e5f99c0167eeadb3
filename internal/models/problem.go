package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type TestCase struct {
	Input    string `json:"input" yaml:"input"`
	Expected string `json:"expected" yaml:"expected"`
}

// TestCaseList is stored as a JSON text column.
type TestCaseList []TestCase

func (l TestCaseList) Value() (driver.Value, error) {
	if l == nil {
		l = TestCaseList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *TestCaseList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Harness turns a function-style submission into a runnable program: Prelude
// goes before the user's code and Driver after it. The driver reads the test
// case input from stdin and prints the answer.
type Harness struct {
	Prelude string `json:"prelude,omitempty" yaml:"prelude"`
	Driver  string `json:"driver,omitempty" yaml:"driver"`
}

// HarnessMap is keyed by language name and stored as a JSON text column.
type HarnessMap map[string]Harness

func (m HarnessMap) Value() (driver.Value, error) {
	if m == nil {
		m = HarnessMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *HarnessMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

type Problem struct {
	ID          int          `db:"id" json:"id"`
	Slug        string       `db:"slug" json:"slug"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Difficulty  string       `db:"difficulty" json:"difficulty"`
	Category    string       `db:"category" json:"category"`
	StarterCode string       `db:"starter_code" json:"starterCode"`
	TestCases   TestCaseList `db:"test_cases" json:"testCases"`
	Harness     HarnessMap   `db:"harness" json:"-"`
	XPReward    int          `db:"xp_reward" json:"xpReward"`
	Order       int          `db:"sort_order" json:"order"`
}

// ProblemWithStatus is a catalog entry annotated for one reader. IsSolved is
// derived from the submission ledger at read time and never stored.
type ProblemWithStatus struct {
	Problem
	IsSolved bool `json:"isSolved"`
}

func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
