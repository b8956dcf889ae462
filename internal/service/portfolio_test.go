package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/devfolio/internal/apperror"
	"github.com/sakif/devfolio/internal/model"
	"github.com/sakif/devfolio/internal/repository"
)

// fakeStore records calls so tests can assert on what the service asked the
// storage layer to do.
type fakeStore struct {
	upsertedUser  *model.User
	catalogUserID uint
	catalog       []model.Repository
	failedCatalog []int64

	saveUserID uint
	lastChange repository.AggregateChange
	dropped    []int64
	saveErr    error
}

func (f *fakeStore) UpsertUser(ctx context.Context, user *model.User) error {
	user.ID = 1
	f.upsertedUser = user
	return nil
}

func (f *fakeStore) UpsertRepositories(ctx context.Context, userID uint, repos []model.Repository) ([]int64, error) {
	f.catalogUserID = userID
	f.catalog = repos
	return f.failedCatalog, nil
}

func (f *fakeStore) SavePortfolio(ctx context.Context, userID uint, change repository.AggregateChange) (*model.Portfolio, []int64, error) {
	if f.saveErr != nil {
		return nil, nil, f.saveErr
	}
	f.saveUserID = userID
	f.lastChange = change
	return &model.Portfolio{ID: 1, UserID: userID}, f.dropped, nil
}

func (f *fakeStore) GetByOwner(ctx context.Context, githubID string) (*model.Portfolio, error) {
	return &model.Portfolio{ID: 1}, nil
}

func (f *fakeStore) GetPublishedByUsername(ctx context.Context, username string) (*model.Portfolio, error) {
	return &model.Portfolio{ID: 1, IsPublished: true}, nil
}

func (f *fakeStore) GetSocials(ctx context.Context, githubID string) ([]model.Social, error) {
	return []model.Social{}, nil
}

var _ repository.PortfolioStore = (*fakeStore)(nil)

func newTestService(store *fakeStore) *PortfolioService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPortfolioService(store, logger)
}

func TestSaveHome_RequiresUserID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.SaveHome(context.Background(), "  ", UserData{}, repository.PortfolioProfile{})
	if err == nil {
		t.Fatal("expected validation error for missing user ID")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation classification, got %v", err)
	}
	if store.upsertedUser != nil {
		t.Error("no write should happen when validation fails")
	}
}

func TestSaveHome_PublishesProfile(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	profile := repository.PortfolioProfile{DisplayName: "Alice", JobTitle: "Engineer"}
	_, err := svc.SaveHome(context.Background(), "42", UserData{Name: "Alice", Email: "a@example.com"}, profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastChange.Profile == nil || *store.lastChange.Profile != profile {
		t.Errorf("profile not passed through: %+v", store.lastChange.Profile)
	}
	if !store.lastChange.Publish {
		t.Error("home save must publish")
	}
	if store.lastChange.Skills != nil || store.lastChange.Socials != nil || store.lastChange.Links != nil {
		t.Error("home save must leave other collections untouched")
	}
}

func TestUpsertUser_SynthesizesPlaceholderEmail(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.SaveHome(context.Background(), "42", UserData{Name: "Alice"}, repository.PortfolioProfile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "github-42@placeholder.com"
	if store.upsertedUser.Email != want {
		t.Errorf("expected placeholder email %q, got %q", want, store.upsertedUser.Email)
	}
}

func TestSaveSkills_SeedsLazyPortfolio(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	data := UserData{Name: "Alice", AvatarURL: "https://a.png", GitHubUsername: "alice"}
	_, err := svc.SaveSkills(context.Background(), "42", data, []SkillInput{
		{Name: "Go", Category: "Languages"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastChange.Skills == nil || len(*store.lastChange.Skills) != 1 {
		t.Fatalf("skills not passed through: %+v", store.lastChange.Skills)
	}
	seed := store.lastChange.SeedProfile
	if seed == nil || seed.DisplayName != "Alice" || seed.CustomUsername != "alice" {
		t.Errorf("seed profile not derived from user data: %+v", seed)
	}
	if !store.lastChange.Publish {
		t.Error("skills save must publish")
	}
}

func TestSaveSocials_DoesNotPublishAndDefaultsURLs(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.SaveSocials(context.Background(), "42", UserData{}, []SocialInput{
		{Platform: "github", Username: "alice"},
		{Platform: "mastodon", Username: "alice"},
		{Platform: "twitter", Username: "alice", URL: "https://x.com/alice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastChange.Publish {
		t.Error("socials save must not publish")
	}
	socials := *store.lastChange.Socials
	if socials[0].URL != "https://github.com/alice" {
		t.Errorf("known platform URL not derived: %q", socials[0].URL)
	}
	if socials[1].URL != "https://mastodon.com/alice" {
		t.Errorf("fallback URL not derived: %q", socials[1].URL)
	}
	if socials[2].URL != "https://x.com/alice" {
		t.Errorf("explicit URL overwritten: %q", socials[2].URL)
	}
}

func TestSaveRepos_UpsertsCatalogAndReportsDropped(t *testing.T) {
	store := &fakeStore{dropped: []int64{999}}
	svc := newTestService(store)

	_, dropped, err := svc.SaveRepos(context.Background(), "42", UserData{}, RepoSelection{
		Repositories: []model.Repository{{GitHubID: 42, Name: "repo"}},
		SelectedIDs:  []int64{42, 999},
		DeployedURLs: map[int64]string{42: "https://x.dev"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.catalogUserID != 1 || len(store.catalog) != 1 {
		t.Errorf("catalog not upserted for the user: userID=%d rows=%d", store.catalogUserID, len(store.catalog))
	}
	links := store.lastChange.Links
	if links == nil || len(links.GitHubIDs) != 2 {
		t.Fatalf("selections not passed through: %+v", links)
	}
	if links.DeployedURLs[42] != "https://x.dev" {
		t.Errorf("deployed URL not passed through: %v", links.DeployedURLs)
	}
	if len(dropped) != 1 || dropped[0] != 999 {
		t.Errorf("dropped diagnostics not surfaced: %v", dropped)
	}
}

func TestPublishAll_FiltersCatalogToSelected(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, _, err := svc.PublishAll(context.Background(), "42", UserData{}, PublishAllInput{
		Profile: repository.PortfolioProfile{DisplayName: "Alice"},
		Skills:  []SkillInput{{Name: "Go", Category: "Languages"}},
		Socials: []SocialInput{{Platform: "github", Username: "alice"}},
		Repositories: []model.Repository{
			{GitHubID: 42, Name: "selected"},
			{GitHubID: 43, Name: "unselected"},
		},
		SelectedIDs: []int64{42},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.catalog) != 1 || store.catalog[0].GitHubID != 42 {
		t.Errorf("catalog not filtered to selected records: %+v", store.catalog)
	}
	if store.lastChange.Profile == nil || store.lastChange.Skills == nil ||
		store.lastChange.Socials == nil || store.lastChange.Links == nil {
		t.Error("publish-all must carry the full aggregate")
	}
	if !store.lastChange.Publish {
		t.Error("publish-all must publish")
	}
}

func TestGetPublic_RequiresUsername(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.GetPublic(context.Background(), "")
	if err == nil {
		t.Fatal("expected validation error for empty username")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation classification, got %v", err)
	}
}

func TestPlatformURL(t *testing.T) {
	tests := []struct {
		platform string
		username string
		want     string
	}{
		{"github", "alice", "https://github.com/alice"},
		{"linkedin", "alice", "https://linkedin.com/in/alice"},
		{"youtube", "alice", "https://youtube.com/@alice"},
		{"stackoverflow", "12345", "https://stackoverflow.com/users/12345"},
		{"reddit", "alice", "https://reddit.com/u/alice"},
		{"gitlab", "alice", "https://gitlab.com/alice"},
	}
	for _, tt := range tests {
		if got := PlatformURL(tt.platform, tt.username); got != tt.want {
			t.Errorf("PlatformURL(%q, %q) = %q, want %q", tt.platform, tt.username, got, tt.want)
		}
	}
}
