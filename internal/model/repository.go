package model

import "time"

// Repository is a catalog entry for a project a user imported, either from
// GitHub's repository API or synthesized from an arbitrary URL's page
// metadata (IsImported). Rows are upserted keyed by GitHubID and never
// deleted — deselecting a project from a portfolio only removes the join row,
// the catalog entry stays behind, harmless and idempotently re-upsertable.
//
// For URL imports GitHubID is synthesized (unix milliseconds at import time),
// so the uniqueIndex holds across both origins.
type Repository struct {
	ID              uint   `json:"id"              gorm:"primaryKey"`
	GitHubID        int64  `json:"githubId"        gorm:"column:github_id;uniqueIndex;not null"`
	UserID          uint   `json:"userId"          gorm:"index;not null"`
	Name            string `json:"name"`
	FullName        string `json:"fullName"`
	Description     string `json:"description"`
	HTMLURL         string `json:"htmlUrl"         gorm:"column:html_url"`
	CloneURL        string `json:"cloneUrl"        gorm:"column:clone_url"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazersCount"`
	ForksCount      int    `json:"forksCount"`
	Size            int    `json:"size"`
	IsPrivate       bool   `json:"isPrivate"`
	IsFork          bool   `json:"isFork"`
	IsImported      bool   `json:"isImported"`

	// Page metadata, present only for URL imports.
	Favicon  *string `json:"favicon,omitempty"`
	SiteName *string `json:"siteName,omitempty"`
	Keywords *string `json:"keywords,omitempty"`
	Author   *string `json:"author,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	PushedAt  *time.Time `json:"pushedAt,omitempty"`
}

// PortfolioRepository links a Portfolio to one selected catalog Repository.
// The full association set is replaced on every save; rows carry the
// per-selection deployed-URL override and a visibility flag (always true on
// insert, kept for per-entry hiding without deselection).
type PortfolioRepository struct {
	ID           uint    `json:"id"           gorm:"primaryKey"`
	PortfolioID  uint    `json:"portfolioId"  gorm:"index;not null"`
	RepositoryID uint    `json:"repositoryId" gorm:"index;not null"`
	DeployedURL  *string `json:"deployedUrl,omitempty" gorm:"column:deployed_url"`
	IsVisible    bool    `json:"isVisible"`

	Repository *Repository `json:"repository,omitempty" gorm:"foreignKey:RepositoryID"`
}
