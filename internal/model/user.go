// Package model defines the persisted entities of the portfolio aggregate.
//
// STORAGE MAPPING:
// These structs double as GORM models. The natural keys are external:
// User is keyed by GitHubID (the OAuth provider's stable numeric ID, stored
// as a string) and Repository by its numeric GitHubID. Internal uint primary
// keys exist so foreign keys never depend on a third party's numbering
// scheme — join rows always reference internal IDs.
package model

import "time"

// User mirrors the GitHub profile of an authenticated account.
//
// Every save operation rewrites every mirrored field from the caller's
// payload (never a partial update). A thinner payload therefore overwrites a
// previously richer profile — e.g. an empty Location erases a stored one.
// That is the accepted write contract of the save path, not something the
// storage layer guards against.
//
// WHY Email UNIQUE WITH A PLACEHOLDER?
// GitHub hides the email for most accounts. The service layer synthesizes
// "github-<id>@placeholder.com" for blank emails so the unique constraint
// holds without making the column nullable.
type User struct {
	ID              uint   `json:"id"              gorm:"primaryKey"`
	GitHubID        string `json:"githubId"        gorm:"column:github_id;uniqueIndex;not null"` // provider's numeric ID, stringified
	Name            string `json:"name"`
	Email           string `json:"email"           gorm:"uniqueIndex"`
	GitHubUsername  string `json:"githubUsername"  gorm:"column:github_username;index"`
	AvatarURL       string `json:"avatarUrl"       gorm:"column:avatar_url"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	WebsiteURL      string `json:"websiteUrl"      gorm:"column:website_url"`
	TwitterUsername string `json:"twitterUsername"`
	Company         string `json:"company"`
	PublicRepos     int    `json:"publicRepos"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Portfolio    *Portfolio   `json:"portfolio,omitempty"    gorm:"foreignKey:UserID"`
	Repositories []Repository `json:"repositories,omitempty" gorm:"foreignKey:UserID"`
}
