package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobboard-engine/internal/ingest/jsearch"
)

func f64(v float64) *float64 { return &v }

func TestMapListingFullRecord(t *testing.T) {
	l := jsearch.Listing{
		JobID:             "ext-1",
		JobTitle:          "Site Reliability Engineer",
		JobCity:           "London",
		JobCountry:        "UK",
		JobMinSalary:      f64(82000),
		JobEmploymentType: "Contractor",
		JobDescription:    "<p>Keep the <b>lights</b> on.</p>",
		JobPublisher:      "LinkedIn",
	}

	j := MapListing(l, "svc-1")

	require.Equal(t, "Site Reliability Engineer", j.Title)
	require.Equal(t, "London, UK", j.Location)
	require.Equal(t, 82000, j.Salary)
	require.Equal(t, "Year", j.SalaryType)
	require.Equal(t, []string{"Contractor"}, j.JobType)
	require.Equal(t, "Keep the lights on.", j.Description)
	require.Equal(t, "LinkedIn", j.Source)
	require.Equal(t, "ext-1", j.ExternalID)
	require.Equal(t, "svc-1", j.CreatedBy)
	require.Equal(t, []string{"Contact Recruiter"}, j.Skills)
	require.Equal(t, []string{"Site Reliability Engineer", "API"}, j.Tags)
	require.False(t, j.Negotiable)
}

func TestMapListingFallbacks(t *testing.T) {
	j := MapListing(jsearch.Listing{JobID: "ext-2", JobTitle: "Mystery Role"}, "svc-1")

	require.Equal(t, "Remote", j.Location)
	require.Equal(t, 45000, j.Salary)
	require.Equal(t, []string{"Full Time"}, j.JobType)
	require.Equal(t, "No description provided.", j.Description)
	require.Equal(t, "JSearch", j.Source)
}

func TestMapListingLocationPrecedence(t *testing.T) {
	// City+country beats the freeform location string.
	j := MapListing(jsearch.Listing{
		JobID: "x", JobCity: "Austin", JobCountry: "US", JobLocation: "Texas, USA",
	}, "svc")
	require.Equal(t, "Austin, US", j.Location)

	// City without country falls through to the freeform string.
	j = MapListing(jsearch.Listing{JobID: "x", JobCity: "Austin", JobLocation: "Texas, USA"}, "svc")
	require.Equal(t, "Texas, USA", j.Location)
}

func TestMapListingZeroSalaryFallsBack(t *testing.T) {
	j := MapListing(jsearch.Listing{JobID: "x", JobMinSalary: f64(0)}, "svc")
	require.Equal(t, 45000, j.Salary)
}

func TestStripHTML(t *testing.T) {
	require.Equal(t, "plain text stays", StripHTML("  plain text stays  "))
	require.Equal(t, "bold and linked", StripHTML("<div><b>bold</b> and <a href='#'>linked</a></div>"))
	require.Equal(t, "", StripHTML(""))
}
