package feed

import (
	"strings"

	"jobboard-engine/internal/domain"
)

// SearchQuery is the free-text part of the filter bar. Empty terms match
// everything.
type SearchQuery struct {
	Title    string
	Location string
}

// Filters are the checkbox groups. A group with nothing checked passes
// unconditionally; within a group the keywords are a disjunction.
type Filters struct {
	FullTime   bool
	PartTime   bool
	Contract   bool
	Internship bool

	FullStack bool
	Backend   bool
	DevOps    bool
	UIUX      bool
}

// Apply recomputes the filtered view from scratch on every call: a pure
// function of (jobs, query, filters), no hidden state.
func Apply(jobs []domain.Job, q SearchQuery, f Filters) []domain.Job {
	var out []domain.Job
	for _, j := range jobs {
		if matches(j, q, f) {
			out = append(out, j)
		}
	}
	return out
}

func matches(j domain.Job, q SearchQuery, f Filters) bool {
	textMatch := contains(j.Title, q.Title) && contains(j.Location, q.Location)

	noTypeFilters := !f.FullTime && !f.PartTime && !f.Contract && !f.Internship
	typeMatch := noTypeFilters ||
		(f.FullTime && anyContains(j.JobType, "full")) ||
		(f.PartTime && anyContains(j.JobType, "part")) ||
		(f.Contract && anyContains(j.JobType, "contract")) ||
		(f.Internship && anyContains(j.JobType, "intern"))

	noCategoryFilters := !f.FullStack && !f.Backend && !f.DevOps && !f.UIUX
	categoryMatch := noCategoryFilters ||
		(f.FullStack && anyContains(j.Tags, "stack")) ||
		(f.Backend && anyContains(j.Tags, "backend")) ||
		(f.DevOps && anyContains(j.Tags, "devops")) ||
		(f.UIUX && anyContains(j.Tags, "ui"))

	return textMatch && typeMatch && categoryMatch
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContains(xs []string, needle string) bool {
	for _, x := range xs {
		if strings.Contains(strings.ToLower(x), needle) {
			return true
		}
	}
	return false
}
