package jsearch

// Listing is one search result as the provider returns it.
type Listing struct {
	JobID             string   `json:"job_id"`
	JobTitle          string   `json:"job_title"`
	JobCity           string   `json:"job_city"`
	JobCountry        string   `json:"job_country"`
	JobLocation       string   `json:"job_location"`
	JobMinSalary      *float64 `json:"job_min_salary"`
	JobEmploymentType string   `json:"job_employment_type"`
	JobDescription    string   `json:"job_description"`
	JobPublisher      string   `json:"job_publisher"`
}

type searchResponse struct {
	Status string    `json:"status"`
	Data   []Listing `json:"data"`
}
