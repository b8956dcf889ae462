package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sakif/devfolio/internal/apperror"
	"github.com/sakif/devfolio/internal/model"
	"github.com/sakif/devfolio/internal/repository"
)

// compile-time check that *DB implements repository.PortfolioStore
var _ repository.PortfolioStore = (*DB)(nil)

// UpsertUser inserts or updates a user keyed by their GitHub ID.
//
// LOOKUP-THEN-WRITE, NOT ON CONFLICT:
// We select the existing row first so the caller's struct ends up carrying
// the canonical internal ID and original CreatedAt, then Save rewrites every
// mirrored profile field. Rewriting everything is the contract: the save path
// always carries the full GitHub profile, and a thin payload overwriting a
// richer row is accepted behavior (see model.User).
func (db *DB) UpsertUser(ctx context.Context, user *model.User) error {
	var existing model.User
	err := db.conn.WithContext(ctx).
		Where("github_id = ?", user.GitHubID).
		First(&existing).Error

	switch {
	case err == nil:
		// Keep identity and creation time, refresh everything else.
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		if err := db.conn.WithContext(ctx).Save(user).Error; err != nil {
			return fmt.Errorf("gormdb: updating user (githubID=%s): %w", user.GitHubID, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.conn.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("gormdb: inserting user (githubID=%s): %w", user.GitHubID, err)
		}
	default:
		return fmt.Errorf("gormdb: looking up user by githubID %s: %w", user.GitHubID, err)
	}

	return nil
}

// UpsertRepositories upserts catalog rows keyed by GitHub ID, owned by
// userID.
//
// PER-ITEM TOLERANCE:
// One malformed record must not sink the batch — each row is written in its
// own statement and a failing GitHub ID is collected instead of returned as
// an error. The caller decides whether the skipped IDs matter (they surface
// as diagnostics on the save response).
//
// This runs OUTSIDE the aggregate transaction on purpose: catalog rows are
// idempotently re-upsertable and harmless if a crash leaves them
// unreferenced, and keeping the bulk writes out of the transaction keeps the
// transaction short.
func (db *DB) UpsertRepositories(ctx context.Context, userID uint, repos []model.Repository) ([]int64, error) {
	var failed []int64

	for i := range repos {
		repo := repos[i]
		repo.UserID = userID

		var existing model.Repository
		err := db.conn.WithContext(ctx).
			Where("github_id = ?", repo.GitHubID).
			First(&existing).Error

		switch {
		case err == nil:
			repo.ID = existing.ID
			// Ownership is set on first import and never reassigned.
			repo.UserID = existing.UserID
			err = db.conn.WithContext(ctx).Save(&repo).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = db.conn.WithContext(ctx).Create(&repo).Error
		}

		if err != nil {
			failed = append(failed, repo.GitHubID)
		}
	}

	return failed, nil
}

// SavePortfolio applies one aggregate change in a single transaction:
//
//  1. Upsert the portfolio row keyed by user ID (at most one per user).
//  2. Replace the skill set, if provided.
//  3. Replace the social set, if provided.
//  4. Replace the repository selections, if provided — resolving each
//     external GitHub ID to its internal catalog row. Unresolvable IDs are
//     dropped and reported, not fatal.
//  5. Reload and return the persisted aggregate.
//
// Everything inside either lands together or not at all; the context carries
// an overall deadline so a contended save fails instead of blocking the
// request forever.
func (db *DB) SavePortfolio(ctx context.Context, userID uint, change repository.AggregateChange) (*model.Portfolio, []int64, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	var (
		result  model.Portfolio
		dropped []int64
	)

	err := db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		portfolio, err := upsertPortfolioRow(tx, userID, change)
		if err != nil {
			return err
		}

		if change.Skills != nil {
			if err := replaceSkills(tx, portfolio.ID, *change.Skills); err != nil {
				return err
			}
		}

		if change.Socials != nil {
			if err := replaceSocials(tx, portfolio.ID, *change.Socials); err != nil {
				return err
			}
		}

		if change.Links != nil {
			dropped, err = replaceLinks(tx, portfolio.ID, *change.Links)
			if err != nil {
				return err
			}
		}

		return tx.
			Preload("User").
			Preload("Skills").
			Preload("Socials").
			Preload("Repositories.Repository").
			First(&result, portfolio.ID).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gormdb: saving portfolio (userID=%d): %w", userID, err)
	}

	return &result, dropped, nil
}

// upsertPortfolioRow creates or updates the single portfolio row for a user.
// The unique index on user_id backs the one-portfolio-per-user invariant;
// this helper is the only place that inserts into the table.
func upsertPortfolioRow(tx *gorm.DB, userID uint, change repository.AggregateChange) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	err := tx.Where("user_id = ?", userID).First(&portfolio).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		portfolio = model.Portfolio{UserID: userID, IsPublished: change.Publish}
		seed := change.Profile
		if seed == nil {
			seed = change.SeedProfile
		}
		if seed != nil {
			applyProfile(&portfolio, seed)
		}
		if err := tx.Create(&portfolio).Error; err != nil {
			return nil, err
		}
		return &portfolio, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if change.Profile != nil {
		updates["display_name"] = change.Profile.DisplayName
		updates["job_title"] = change.Profile.JobTitle
		updates["bio"] = change.Profile.Bio
		updates["profile_pic"] = change.Profile.ProfilePic
		updates["custom_username"] = change.Profile.CustomUsername
	}
	if change.Publish {
		updates["is_published"] = true
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := tx.Model(&portfolio).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &portfolio, nil
}

func applyProfile(p *model.Portfolio, profile *repository.PortfolioProfile) {
	p.DisplayName = profile.DisplayName
	p.JobTitle = profile.JobTitle
	p.Bio = profile.Bio
	p.ProfilePic = profile.ProfilePic
	p.CustomUsername = profile.CustomUsername
}

// replaceSkills swaps in the full desired skill set: delete everything scoped
// to the portfolio, then bulk-insert in caller order. Duplicates by name are
// stored as submitted — no uniqueness at this level.
func replaceSkills(tx *gorm.DB, portfolioID uint, skills []model.Skill) error {
	if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&model.Skill{}).Error; err != nil {
		return err
	}
	if len(skills) == 0 {
		return nil
	}
	rows := make([]model.Skill, len(skills))
	for i, s := range skills {
		rows[i] = model.Skill{PortfolioID: portfolioID, Name: s.Name, Category: s.Category}
	}
	return tx.Create(&rows).Error
}

func replaceSocials(tx *gorm.DB, portfolioID uint, socials []model.Social) error {
	if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&model.Social{}).Error; err != nil {
		return err
	}
	if len(socials) == 0 {
		return nil
	}
	rows := make([]model.Social, len(socials))
	for i, s := range socials {
		rows[i] = model.Social{
			PortfolioID: portfolioID,
			Platform:    s.Platform,
			Username:    s.Username,
			URL:         s.URL,
			IsPinned:    s.IsPinned,
		}
	}
	return tx.Create(&rows).Error
}

// replaceLinks swaps in the selected-repository set. Selections are resolved
// external GitHub ID → internal catalog ID; an ID with no catalog row is
// dropped (returned, not fatal) — the catalog upsert ran before this
// transaction, so a missing row means the caller never supplied that record.
func replaceLinks(tx *gorm.DB, portfolioID uint, links repository.LinkSelection) ([]int64, error) {
	if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&model.PortfolioRepository{}).Error; err != nil {
		return nil, err
	}
	if len(links.GitHubIDs) == 0 {
		return nil, nil
	}

	var catalog []model.Repository
	if err := tx.Where("github_id IN ?", links.GitHubIDs).Find(&catalog).Error; err != nil {
		return nil, err
	}
	byGitHubID := make(map[int64]uint, len(catalog))
	for _, repo := range catalog {
		byGitHubID[repo.GitHubID] = repo.ID
	}

	var (
		rows    []model.PortfolioRepository
		dropped []int64
	)
	for _, githubID := range links.GitHubIDs {
		internalID, ok := byGitHubID[githubID]
		if !ok {
			dropped = append(dropped, githubID)
			continue
		}
		row := model.PortfolioRepository{
			PortfolioID:  portfolioID,
			RepositoryID: internalID,
			IsVisible:    true,
		}
		if url, ok := links.DeployedURLs[githubID]; ok && url != "" {
			row.DeployedURL = &url
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return nil, err
		}
	}
	return dropped, nil
}

// GetByOwner returns the full aggregate for the authenticated dashboard,
// keyed by the owner's GitHub ID. Unpublished portfolios are visible to
// their owner.
func (db *DB) GetByOwner(ctx context.Context, githubID string) (*model.Portfolio, error) {
	var user model.User
	err := db.conn.WithContext(ctx).Where("github_id = ?", githubID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("portfolio", githubID)
	}
	if err != nil {
		return nil, fmt.Errorf("gormdb: looking up owner %s: %w", githubID, err)
	}

	var portfolio model.Portfolio
	err = db.conn.WithContext(ctx).
		Preload("User").
		Preload("Skills").
		Preload("Socials").
		Preload("Repositories.Repository").
		Where("user_id = ?", user.ID).
		First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("portfolio", githubID)
	}
	if err != nil {
		return nil, fmt.Errorf("gormdb: loading portfolio for owner %s: %w", githubID, err)
	}

	return &portfolio, nil
}

// GetPublishedByUsername resolves a public username to a published portfolio.
//
// PRECEDENCE:
// Two ordered lookups, not one OR query — a custom-username match always wins
// over a GitHub-username match, so a username string that could resolve both
// ways resolves deterministically. Unpublished portfolios never match either
// lookup, even on an exact username hit.
func (db *DB) GetPublishedByUsername(ctx context.Context, username string) (*model.Portfolio, error) {
	var portfolio model.Portfolio

	err := db.conn.WithContext(ctx).
		Preload("User").
		Preload("Skills").
		Preload("Socials").
		Preload("Repositories.Repository").
		Where("custom_username = ? AND is_published = ?", username, true).
		First(&portfolio).Error
	if err == nil {
		return &portfolio, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("gormdb: resolving custom username %s: %w", username, err)
	}

	// Fall back to the owner's GitHub username.
	err = db.conn.WithContext(ctx).
		Preload("User").
		Preload("Skills").
		Preload("Socials").
		Preload("Repositories.Repository").
		Joins("JOIN users ON users.id = portfolios.user_id").
		Where("users.github_username = ? AND portfolios.is_published = ?", username, true).
		First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("portfolio", username)
	}
	if err != nil {
		return nil, fmt.Errorf("gormdb: resolving github username %s: %w", username, err)
	}

	return &portfolio, nil
}

// GetSocials returns the social set for an owner. No portfolio yet means an
// empty set — the dashboard asks before the first save.
func (db *DB) GetSocials(ctx context.Context, githubID string) ([]model.Social, error) {
	var user model.User
	err := db.conn.WithContext(ctx).Where("github_id = ?", githubID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.Social{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gormdb: looking up owner %s: %w", githubID, err)
	}

	var portfolio model.Portfolio
	err = db.conn.WithContext(ctx).Where("user_id = ?", user.ID).First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.Social{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gormdb: loading portfolio for owner %s: %w", githubID, err)
	}

	var socials []model.Social
	if err := db.conn.WithContext(ctx).Where("portfolio_id = ?", portfolio.ID).Find(&socials).Error; err != nil {
		return nil, fmt.Errorf("gormdb: loading socials for owner %s: %w", githubID, err)
	}
	return socials, nil
}
