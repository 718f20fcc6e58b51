package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/ingest/jsearch"
)

// Fixed fallbacks for fields the provider does not reliably supply.
const (
	fallbackSalary      = 45000
	fallbackLocation    = "Remote"
	fallbackJobType     = "Full Time"
	fallbackDescription = "No description provided."
	fallbackSource      = "JSearch"

	// ingestTag marks records that came through the sync pipeline so the
	// category filters can find them.
	ingestTag = "API"
)

// MapListing turns a provider listing into a job record candidate. Pure:
// the caller decides what to do with the result.
func MapListing(l jsearch.Listing, serviceUserID string) domain.Job {
	location := fallbackLocation
	switch {
	case l.JobCity != "" && l.JobCountry != "":
		location = l.JobCity + ", " + l.JobCountry
	case l.JobLocation != "":
		location = l.JobLocation
	}

	salary := fallbackSalary
	if l.JobMinSalary != nil && *l.JobMinSalary > 0 {
		salary = int(*l.JobMinSalary)
	}

	jobType := fallbackJobType
	if l.JobEmploymentType != "" {
		jobType = l.JobEmploymentType
	}

	description := StripHTML(l.JobDescription)
	if description == "" {
		description = fallbackDescription
	}

	source := fallbackSource
	if l.JobPublisher != "" {
		source = l.JobPublisher
	}

	return domain.Job{
		Title:       l.JobTitle,
		Description: description,
		Location:    location,
		Salary:      salary,
		SalaryType:  "Year",
		Negotiable:  false,
		JobType:     []string{jobType},
		Skills:      []string{"Contact Recruiter"},
		Tags:        []string{l.JobTitle, ingestTag},
		ExternalID:  l.JobID,
		Source:      source,
		CreatedBy:   serviceUserID,
	}
}

// StripHTML reduces a provider description to plain text. Some publishers
// send markup, some don't; plain text goes through unchanged.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
