package domain

import "time"

// User mirrors what the identity provider tells us, plus a stable local id.
// Users are provisioned lazily on their first authenticated request.
type User struct {
	ID             string    `json:"id"`
	AuthID         string    `json:"authId"` // identity-provider subject
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"` // jobseeker/recruiter/system
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ServiceAccountAuthID is the fixed subject of the pre-provisioned account
// that owns every ingested posting.
const ServiceAccountAuthID = "system:ingest"
