package domain

import (
	"errors"
	"strings"
	"time"
)

// Job is a single posting, either created directly by a recruiter or
// ingested from the external provider (ExternalID != "").
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      int       `json:"salary"`
	SalaryType  string    `json:"salaryType"` // Year/Month/Week/Hour
	Negotiable  bool      `json:"negotiable"`
	JobType     []string  `json:"jobType"`
	Skills      []string  `json:"skills"`
	Tags        []string  `json:"tags"`
	Likes       []string  `json:"likes"`      // user ids, set semantics
	Applicants  []string  `json:"applicants"` // user ids, set semantics
	ExternalID  string    `json:"externalId,omitempty"`
	Source      string    `json:"source"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var (
	ErrMissingFields   = errors.New("required fields are missing")
	ErrJobTypeRequired = errors.New("at least one job type is required")
)

// Validate checks the fields a caller must supply before a posting is
// accepted. Identity and provenance fields are the store's business.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" ||
		strings.TrimSpace(j.Description) == "" ||
		strings.TrimSpace(j.Location) == "" ||
		j.Salary <= 0 {
		return ErrMissingFields
	}
	if len(j.JobType) == 0 {
		return ErrJobTypeRequired
	}
	return nil
}
