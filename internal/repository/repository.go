// Package repository declares the storage contract for the portfolio
// aggregate. Services depend on these interfaces; the gormdb subpackage
// provides the implementation. Tests swap in hand-written fakes.
//
// COLLECTION SEMANTICS:
// Skills, socials and repository selections are replaced whole. The interface
// deliberately exposes no incremental add/remove — the dashboard edits
// incrementally on the client, but every save submits the full desired state
// and the store swaps it in atomically (delete-all-then-insert inside one
// transaction). Last writer wins, whole collection.
package repository

import (
	"context"

	"github.com/sakif/devfolio/internal/model"
)

// PortfolioProfile carries the portfolio's own editable fields, separate
// from the mirrored GitHub profile on User.
type PortfolioProfile struct {
	DisplayName    string
	JobTitle       string
	Bio            string
	ProfilePic     string
	CustomUsername string
}

// LinkSelection is the desired set of selected catalog repositories,
// identified by their external GitHub IDs, with optional per-repository
// deployed-URL overrides keyed the same way.
type LinkSelection struct {
	GitHubIDs    []int64
	DeployedURLs map[int64]string
}

// AggregateChange describes one save of the portfolio aggregate. Nil pointer
// fields mean "leave that part untouched"; a pointer to an empty slice means
// "replace with nothing". This is how the partial endpoints (home, skills,
// socials, repos) and the full publish endpoints share a single store
// operation.
type AggregateChange struct {
	// Profile, when set, overwrites the portfolio's editable fields.
	Profile *PortfolioProfile
	// SeedProfile, when set, provides defaults used only if the portfolio
	// row does not exist yet (lazy creation on first save of a partial
	// section). Ignored when Profile is set or the row already exists.
	SeedProfile *PortfolioProfile
	// Publish marks the portfolio published. False leaves the flag as it is —
	// it never unpublishes.
	Publish bool

	Skills  *[]model.Skill
	Socials *[]model.Social
	Links   *LinkSelection
}

// PortfolioStore is the write/read surface of the aggregate store.
type PortfolioStore interface {
	// UpsertUser creates or updates the user keyed by GitHubID, rewriting
	// every mirrored profile field, and fills in the internal ID.
	UpsertUser(ctx context.Context, user *model.User) error

	// UpsertRepositories upserts catalog rows keyed by GitHubID, owned by
	// userID. Per-item tolerant: a row that fails is skipped and reported in
	// the returned slice, the rest of the batch proceeds. Runs outside the
	// aggregate transaction; orphan catalog rows from a crash before the
	// aggregate save are acceptable (idempotently re-upserted next time).
	UpsertRepositories(ctx context.Context, userID uint, repos []model.Repository) (failed []int64, err error)

	// SavePortfolio applies one AggregateChange in a single all-or-nothing
	// transaction: portfolio upsert keyed by userID, then replace of each
	// provided collection. Selected GitHub IDs that resolve to no catalog row
	// are dropped, not fatal; they come back in the second return value so
	// callers can surface them as diagnostics.
	SavePortfolio(ctx context.Context, userID uint, change AggregateChange) (*model.Portfolio, []int64, error)

	// GetByOwner returns the full aggregate for the dashboard, keyed by the
	// owner's GitHub ID. Not gated on the published flag.
	GetByOwner(ctx context.Context, githubID string) (*model.Portfolio, error)

	// GetPublishedByUsername resolves a public username to a published
	// portfolio. A portfolio whose CustomUsername matches wins over one whose
	// owner's GitHub username matches — defined precedence, never ambiguous.
	// Unpublished portfolios are invisible here even on an exact match.
	GetPublishedByUsername(ctx context.Context, username string) (*model.Portfolio, error)

	// GetSocials returns the social set for the owner's GitHub ID. A missing
	// portfolio yields an empty set, not an error.
	GetSocials(ctx context.Context, githubID string) ([]model.Social, error)
}
