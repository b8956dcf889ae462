// Package service contains the business logic of the portfolio save/read
// workflow.
//
// THE SAVE PATH (every write endpoint follows it):
//
//	1. Reject if the user's external ID is missing — before any side effect.
//	2. Upsert the User keyed by GitHub ID, rewriting every mirrored profile
//	   field from the submitted payload.
//	3. For endpoints carrying a repository catalog, upsert the catalog rows
//	   (per-item tolerant, outside the transaction).
//	4. Apply the aggregate change in one transaction: portfolio upsert plus
//	   whole-collection replaces. Selections that resolve to no catalog row
//	   are dropped and reported as diagnostics, never fatal.
//
// Handlers translate the returned domain errors to HTTP; this package knows
// nothing about status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devfolio/internal/apperror"
	"github.com/sakif/devfolio/internal/model"
	"github.com/sakif/devfolio/internal/repository"
)

// UserData is the mirrored GitHub profile as submitted by the dashboard.
// Whatever arrives here is what the User row will hold afterwards — blank
// fields overwrite stored values (see model.User).
type UserData struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	GitHubUsername  string `json:"githubUsername"`
	AvatarURL       string `json:"avatarUrl"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	WebsiteURL      string `json:"websiteUrl"`
	TwitterUsername string `json:"twitterUsername"`
	Company         string `json:"company"`
	PublicRepos     int    `json:"publicRepos"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
}

// SkillInput is one submitted skill.
type SkillInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SocialInput is one submitted social account. URL may be blank; the
// service derives it from the platform's URL pattern then.
type SocialInput struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	URL      string `json:"url"`
	IsPinned bool   `json:"isPinned"`
}

// RepoSelection is the repos-section payload: the catalog records the client
// knows about, which of them are selected (by external GitHub ID), and
// per-selection deployed-URL overrides.
type RepoSelection struct {
	Repositories []model.Repository
	SelectedIDs  []int64
	DeployedURLs map[int64]string
}

// PublishInput is the single-request publish payload (profile + skills +
// selections; the catalog is assumed already upserted by earlier section
// saves).
type PublishInput struct {
	Profile      repository.PortfolioProfile
	Skills       []SkillInput
	SelectedIDs  []int64
	DeployedURLs map[int64]string
}

// PublishAllInput is the full-aggregate payload: everything in one request,
// including the catalog records backing the selections.
type PublishAllInput struct {
	Profile      repository.PortfolioProfile
	Skills       []SkillInput
	Socials      []SocialInput
	Repositories []model.Repository
	SelectedIDs  []int64
	DeployedURLs map[int64]string
}

// PortfolioService orchestrates the aggregate store.
type PortfolioService struct {
	store  repository.PortfolioStore
	logger *slog.Logger
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(store repository.PortfolioStore, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{store: store, logger: logger}
}

// SaveHome saves the portfolio's profile fields and marks it published.
func (s *PortfolioService) SaveHome(ctx context.Context, userID string, data UserData, profile repository.PortfolioProfile) (*model.Portfolio, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, err
	}

	portfolio, _, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		Profile: &profile,
		Publish: true,
	})
	if err != nil {
		s.logger.Error("failed to save home section",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving home section: %w", err)
	}

	s.logger.Info("home section saved", slog.String("userID", userID))
	return portfolio, nil
}

// SaveSkills replaces the portfolio's skill set and marks it published. The
// portfolio row is created lazily on a first-ever save, seeded from the
// submitted GitHub profile.
func (s *PortfolioService) SaveSkills(ctx context.Context, userID string, data UserData, skills []SkillInput) (*model.Portfolio, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Skill, len(skills))
	for i, skill := range skills {
		rows[i] = model.Skill{Name: skill.Name, Category: skill.Category}
	}

	portfolio, _, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		SeedProfile: seedProfile(data),
		Publish:     true,
		Skills:      &rows,
	})
	if err != nil {
		s.logger.Error("failed to save skills",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving skills: %w", err)
	}

	s.logger.Info("skills saved",
		slog.String("userID", userID),
		slog.Int("count", len(rows)),
	)
	return portfolio, nil
}

// SaveSocials replaces the portfolio's social set. Unlike the other section
// saves it does NOT publish — linking accounts is not an act of publishing.
// Blank URLs are derived from the platform's URL pattern.
func (s *PortfolioService) SaveSocials(ctx context.Context, userID string, data UserData, socials []SocialInput) (*model.Portfolio, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Social, len(socials))
	for i, social := range socials {
		url := social.URL
		if url == "" {
			url = PlatformURL(social.Platform, social.Username)
		}
		rows[i] = model.Social{
			Platform: social.Platform,
			Username: social.Username,
			URL:      url,
			IsPinned: social.IsPinned,
		}
	}

	portfolio, _, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		Socials: &rows,
	})
	if err != nil {
		s.logger.Error("failed to save socials",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving socials: %w", err)
	}

	s.logger.Info("socials saved",
		slog.String("userID", userID),
		slog.Int("count", len(rows)),
	)
	return portfolio, nil
}

// SaveRepos upserts the submitted catalog records and replaces the
// portfolio's repository selections. Returns the dropped selections —
// external IDs that resolved to no catalog row — alongside the aggregate.
func (s *PortfolioService) SaveRepos(ctx context.Context, userID string, data UserData, in RepoSelection) (*model.Portfolio, []int64, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, nil, err
	}

	s.upsertCatalog(ctx, user.ID, in.Repositories)

	portfolio, dropped, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		SeedProfile: seedProfile(data),
		Publish:     true,
		Links: &repository.LinkSelection{
			GitHubIDs:    in.SelectedIDs,
			DeployedURLs: in.DeployedURLs,
		},
	})
	if err != nil {
		s.logger.Error("failed to save repository selections",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("saving repository selections: %w", err)
	}

	s.logSelections(userID, in.SelectedIDs, dropped)
	return portfolio, dropped, nil
}

// Publish saves profile, skills, and repository selections in one request.
func (s *PortfolioService) Publish(ctx context.Context, userID string, data UserData, in PublishInput) (*model.Portfolio, []int64, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, nil, err
	}

	skills := make([]model.Skill, len(in.Skills))
	for i, skill := range in.Skills {
		skills[i] = model.Skill{Name: skill.Name, Category: skill.Category}
	}

	portfolio, dropped, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		Profile: &in.Profile,
		Publish: true,
		Skills:  &skills,
		Links: &repository.LinkSelection{
			GitHubIDs:    in.SelectedIDs,
			DeployedURLs: in.DeployedURLs,
		},
	})
	if err != nil {
		s.logger.Error("failed to publish portfolio",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("publishing portfolio: %w", err)
	}

	s.logSelections(userID, in.SelectedIDs, dropped)
	s.logger.Info("portfolio published", slog.String("userID", userID))
	return portfolio, dropped, nil
}

// PublishAll saves the entire aggregate — profile, skills, socials, catalog,
// and selections — in one request. Only the selected catalog records are
// upserted; unselected ones the client happens to carry are skipped.
func (s *PortfolioService) PublishAll(ctx context.Context, userID string, data UserData, in PublishAllInput) (*model.Portfolio, []int64, error) {
	user, err := s.upsertUser(ctx, userID, data)
	if err != nil {
		return nil, nil, err
	}

	selected := make(map[int64]bool, len(in.SelectedIDs))
	for _, id := range in.SelectedIDs {
		selected[id] = true
	}
	var catalog []model.Repository
	for _, repo := range in.Repositories {
		if selected[repo.GitHubID] {
			catalog = append(catalog, repo)
		}
	}
	s.upsertCatalog(ctx, user.ID, catalog)

	skills := make([]model.Skill, len(in.Skills))
	for i, skill := range in.Skills {
		skills[i] = model.Skill{Name: skill.Name, Category: skill.Category}
	}
	socials := make([]model.Social, len(in.Socials))
	for i, social := range in.Socials {
		url := social.URL
		if url == "" {
			url = PlatformURL(social.Platform, social.Username)
		}
		socials[i] = model.Social{
			Platform: social.Platform,
			Username: social.Username,
			URL:      url,
			IsPinned: social.IsPinned,
		}
	}

	portfolio, dropped, err := s.store.SavePortfolio(ctx, user.ID, repository.AggregateChange{
		Profile: &in.Profile,
		Publish: true,
		Skills:  &skills,
		Socials: &socials,
		Links: &repository.LinkSelection{
			GitHubIDs:    in.SelectedIDs,
			DeployedURLs: in.DeployedURLs,
		},
	})
	if err != nil {
		s.logger.Error("failed to publish portfolio",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("publishing portfolio: %w", err)
	}

	s.logSelections(userID, in.SelectedIDs, dropped)
	s.logger.Info("portfolio published", slog.String("userID", userID))
	return portfolio, dropped, nil
}

// GetByOwner returns the full aggregate for the authenticated dashboard.
func (s *PortfolioService) GetByOwner(ctx context.Context, userID string) (*model.Portfolio, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.store.GetByOwner(ctx, userID)
}

// GetPublic resolves a public username to a published portfolio. Not-found
// is the normal outcome for never-published or mistyped usernames.
func (s *PortfolioService) GetPublic(ctx context.Context, username string) (*model.Portfolio, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	return s.store.GetPublishedByUsername(ctx, username)
}

// GetSocials returns the owner's social set (empty before the first save).
func (s *PortfolioService) GetSocials(ctx context.Context, userID string) ([]model.Social, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.store.GetSocials(ctx, userID)
}

// upsertUser validates the external ID and mirrors the submitted profile
// into the User row. Runs before anything else on every write path.
func (s *PortfolioService) upsertUser(ctx context.Context, userID string, data UserData) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	// A blank email would collide on the unique constraint the second time a
	// hidden-email account saves, so synthesize a stable placeholder.
	email := strings.TrimSpace(data.Email)
	if email == "" {
		email = fmt.Sprintf("github-%s@placeholder.com", userID)
	}

	user := &model.User{
		GitHubID:        userID,
		Name:            data.Name,
		Email:           email,
		GitHubUsername:  data.GitHubUsername,
		AvatarURL:       data.AvatarURL,
		Bio:             data.Bio,
		Location:        data.Location,
		WebsiteURL:      data.WebsiteURL,
		TwitterUsername: data.TwitterUsername,
		Company:         data.Company,
		PublicRepos:     data.PublicRepos,
		Followers:       data.Followers,
		Following:       data.Following,
	}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		s.logger.Error("failed to upsert user",
			slog.String("githubID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("upserting user: %w", err)
	}
	return user, nil
}

// upsertCatalog writes repository records outside the aggregate transaction.
// Per-item failures are logged and skipped — one malformed record must not
// block the rest of the save.
func (s *PortfolioService) upsertCatalog(ctx context.Context, userID uint, repos []model.Repository) {
	if len(repos) == 0 {
		return
	}
	failed, err := s.store.UpsertRepositories(ctx, userID, repos)
	if err != nil {
		s.logger.Error("repository catalog upsert failed",
			slog.Uint64("userID", uint64(userID)),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, githubID := range failed {
		s.logger.Warn("skipped malformed repository record",
			slog.Uint64("userID", uint64(userID)),
			slog.Int64("githubID", githubID),
		)
	}
}

// seedProfile builds create-only portfolio defaults from the submitted
// GitHub profile, used when a partial section save arrives before the home
// section was ever saved.
func seedProfile(data UserData) *repository.PortfolioProfile {
	return &repository.PortfolioProfile{
		DisplayName:    data.Name,
		Bio:            data.Bio,
		ProfilePic:     data.AvatarURL,
		CustomUsername: data.GitHubUsername,
	}
}

func (s *PortfolioService) logSelections(userID string, selected, dropped []int64) {
	for _, githubID := range dropped {
		s.logger.Warn("dropped repository selection with no catalog record",
			slog.String("userID", userID),
			slog.Int64("githubID", githubID),
		)
	}
	s.logger.Info("repository selections saved",
		slog.String("userID", userID),
		slog.Int("selected", len(selected)),
		slog.Int("dropped", len(dropped)),
	)
}

// platformURLs maps a social platform to its profile URL pattern. Unknown
// platforms fall back to "https://<platform>.com/<username>".
var platformURLs = map[string]string{
	"github":        "https://github.com/%s",
	"twitter":       "https://twitter.com/%s",
	"linkedin":      "https://linkedin.com/in/%s",
	"instagram":     "https://instagram.com/%s",
	"facebook":      "https://facebook.com/%s",
	"youtube":       "https://youtube.com/@%s",
	"stackoverflow": "https://stackoverflow.com/users/%s",
	"reddit":        "https://reddit.com/u/%s",
}

// PlatformURL derives a profile URL from a platform identifier and handle.
func PlatformURL(platform, username string) string {
	if pattern, ok := platformURLs[platform]; ok {
		return fmt.Sprintf(pattern, username)
	}
	return fmt.Sprintf("https://%s.com/%s", platform, username)
}
