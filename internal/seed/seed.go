// Package seed holds the reference catalog loaded into an empty store at
// startup.
package seed

import (
	"codequest/internal/models"
	"embed"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var files embed.FS

var validate = validator.New()

type problemEntry struct {
	Slug        string            `yaml:"slug"`
	Title       string            `yaml:"title" validate:"required"`
	Description string            `yaml:"description" validate:"required"`
	Difficulty  string            `yaml:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Category    string            `yaml:"category" validate:"required"`
	StarterCode string            `yaml:"starterCode"`
	TestCases   []models.TestCase `yaml:"testCases" validate:"required,min=1"`
	Harness     models.HarnessMap `yaml:"harness" validate:"omitempty,dive,keys,oneof=python go,endkeys"`
	XPReward    int               `yaml:"xpReward" validate:"gt=0"`
	Order       int               `yaml:"order" validate:"gt=0"`
}

type hackathonEntry struct {
	Title       string    `yaml:"title" validate:"required"`
	Description string    `yaml:"description" validate:"required"`
	URL         string    `yaml:"url" validate:"required,url"`
	StartDate   time.Time `yaml:"startDate" validate:"required"`
	EndDate     time.Time `yaml:"endDate" validate:"required,gtefield=StartDate"`
	Platform    string    `yaml:"platform" validate:"required"`
	ImageURL    string    `yaml:"imageUrl" validate:"omitempty,url"`
	Tags        []string  `yaml:"tags"`
}

// Problems returns the embedded problem catalog.
func Problems() ([]models.Problem, error) {
	data, err := files.ReadFile("data/problems.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read problem seed: %w", err)
	}
	return ParseProblems(data)
}

// Hackathons returns the embedded hackathon listings.
func Hackathons() ([]models.Hackathon, error) {
	data, err := files.ReadFile("data/hackathons.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read hackathon seed: %w", err)
	}
	return ParseHackathons(data)
}

// ParseProblems decodes and validates a YAML problem list. A missing slug is
// derived from the title.
func ParseProblems(data []byte) ([]models.Problem, error) {
	var entries []problemEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode problems: %w", err)
	}

	slugs := make(map[string]bool, len(entries))
	orders := make(map[int]bool, len(entries))
	problems := make([]models.Problem, 0, len(entries))

	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("invalid problem #%d (%s): %w", i+1, e.Title, err)
		}
		if e.Slug == "" {
			e.Slug = slug.Make(e.Title)
		}
		if !slug.IsSlug(e.Slug) {
			return nil, fmt.Errorf("invalid problem #%d: slug %q is not URL-safe", i+1, e.Slug)
		}
		if slugs[e.Slug] {
			return nil, fmt.Errorf("duplicate problem slug %q", e.Slug)
		}
		if orders[e.Order] {
			return nil, fmt.Errorf("duplicate problem order %d", e.Order)
		}
		slugs[e.Slug] = true
		orders[e.Order] = true

		problems = append(problems, models.Problem{
			Slug:        e.Slug,
			Title:       e.Title,
			Description: e.Description,
			Difficulty:  e.Difficulty,
			Category:    e.Category,
			StarterCode: e.StarterCode,
			TestCases:   models.TestCaseList(e.TestCases),
			Harness:     e.Harness,
			XPReward:    e.XPReward,
			Order:       e.Order,
		})
	}

	return problems, nil
}

func ParseHackathons(data []byte) ([]models.Hackathon, error) {
	var entries []hackathonEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode hackathons: %w", err)
	}

	hackathons := make([]models.Hackathon, 0, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("invalid hackathon #%d (%s): %w", i+1, e.Title, err)
		}

		h := models.Hackathon{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			StartDate:   e.StartDate.UTC(),
			EndDate:     e.EndDate.UTC(),
			Platform:    e.Platform,
			Tags:        models.StringList(e.Tags),
		}
		if e.ImageURL != "" {
			image := e.ImageURL
			h.ImageURL = &image
		}
		hackathons = append(hackathons, h)
	}

	return hackathons, nil
}
