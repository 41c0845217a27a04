package domain

import (
	"context"
	"time"
)

// Experience is a single position on a profile.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
}

// Education is a single school entry on a profile.
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Field  string `json:"field,omitempty"`
	Years  string `json:"years,omitempty"`
}

// Certification is a single certification entry on a profile.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
}

// Volunteer is a single volunteering entry on a profile.
type Volunteer struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Duration     string `json:"duration,omitempty"`
}

// Recommendation is a received recommendation on a profile.
type Recommendation struct {
	Author       string `json:"author"`
	Relationship string `json:"relationship"`
	Text         string `json:"text"`
}

// Profile is a structured LinkedIn profile as returned by the extraction
// capability.
type Profile struct {
	Name            string           `json:"name"`
	Headline        string           `json:"headline"`
	Location        string           `json:"location"`
	About           string           `json:"about"`
	Experience      []Experience     `json:"experience"`
	Education       []Education      `json:"education"`
	Skills          []string         `json:"skills"`
	Certifications  []Certification  `json:"certifications,omitempty"`
	Languages       []string         `json:"languages,omitempty"`
	Volunteer       []Volunteer      `json:"volunteer,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// StoredProfile is a persisted extraction result.
type StoredProfile struct {
	ID         string    `json:"id"`
	ProfileURL string    `json:"profile_url"`
	Profile    Profile   `json:"profile"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileExtractor is the narrow interface to the out-of-process extraction
// helper. Login and scraping behavior belong to the helper, not to this
// service.
type ProfileExtractor interface {
	Extract(ctx context.Context, email, password, profileURL string) (*Profile, error)
}

// ProfileStore persists extraction results and serves the latest one.
type ProfileStore interface {
	Save(ctx context.Context, profileURL string, p *Profile) (*StoredProfile, error)
	Latest(ctx context.Context) (*StoredProfile, error)
	Close() error
}
