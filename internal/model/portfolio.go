package model

import "time"

// Portfolio is the published profile of exactly one User.
//
// The unique index on UserID is the invariant that makes the aggregate
// addressable: at most one Portfolio per User, upserted in place on every
// save. A portfolio is reachable publicly either through its CustomUsername
// or through the owning user's GitHub username, custom taking precedence.
type Portfolio struct {
	ID             uint   `json:"id"             gorm:"primaryKey"`
	UserID         uint   `json:"userId"         gorm:"uniqueIndex;not null"`
	DisplayName    string `json:"displayName"`
	JobTitle       string `json:"jobTitle"`
	Bio            string `json:"bio"`
	ProfilePic     string `json:"profilePic"`
	CustomUsername string `json:"customUsername" gorm:"index"`
	IsPublished    bool   `json:"isPublished"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User         *User                 `json:"user,omitempty"         gorm:"foreignKey:UserID"`
	Skills       []Skill               `json:"skills"                 gorm:"foreignKey:PortfolioID"`
	Socials      []Social              `json:"socials"                gorm:"foreignKey:PortfolioID"`
	Repositories []PortfolioRepository `json:"repositories"           gorm:"foreignKey:PortfolioID"`
}

// Skill is one entry of a portfolio's skill list.
//
// The whole set is replaced on every save (delete-all-then-insert), so there
// is deliberately no uniqueness constraint on (PortfolioID, Name): duplicates
// submitted by the client are stored as submitted, in insertion order.
type Skill struct {
	ID          uint   `json:"id"          gorm:"primaryKey"`
	PortfolioID uint   `json:"portfolioId" gorm:"index;not null"`
	Name        string `json:"name"`
	Category    string `json:"category"` // free-form grouping, e.g. "Languages"
}

// Social is one linked account on a portfolio. IsPinned marks the accounts
// shown on the public hero section. Same replace-all lifecycle as Skill.
type Social struct {
	ID          uint   `json:"id"          gorm:"primaryKey"`
	PortfolioID uint   `json:"portfolioId" gorm:"index;not null"`
	Platform    string `json:"platform"`
	Username    string `json:"username"`
	URL         string `json:"url"`
	IsPinned    bool   `json:"isPinned"`
}
