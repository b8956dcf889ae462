package handler

// Portfolio endpoints. Each write route carries the caller's identity twice:
// userId (the external GitHub ID the aggregate is keyed by) and userData
// (the mirrored profile, rewritten on every save). The handlers decode,
// delegate to the service, and translate errors — no business logic here.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/devfolio/internal/model"
	"github.com/sakif/devfolio/internal/repository"
	"github.com/sakif/devfolio/internal/service"
)

// PortfolioHandler serves the portfolio save/read routes.
type PortfolioHandler struct {
	service *service.PortfolioService
	logger  *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(svc *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{service: svc, logger: logger}
}

type portfolioData struct {
	DisplayName    string `json:"displayName"`
	JobTitle       string `json:"jobTitle"`
	Bio            string `json:"bio"`
	ProfilePic     string `json:"profilePic"`
	CustomUsername string `json:"customUsername"`
}

func (p portfolioData) profile() repository.PortfolioProfile {
	return repository.PortfolioProfile{
		DisplayName:    p.DisplayName,
		JobTitle:       p.JobTitle,
		Bio:            p.Bio,
		ProfilePic:     p.ProfilePic,
		CustomUsername: p.CustomUsername,
	}
}

type saveHomeRequest struct {
	PortfolioData portfolioData    `json:"portfolioData"`
	UserID        string           `json:"userId"`
	UserData      service.UserData `json:"userData"`
}

type saveSkillsRequest struct {
	Skills   []service.SkillInput `json:"skills"`
	UserID   string               `json:"userId"`
	UserData service.UserData     `json:"userData"`
}

type saveSocialsRequest struct {
	Socials  []service.SocialInput `json:"socials"`
	UserID   string                `json:"userId"`
	UserData service.UserData      `json:"userData"`
}

type saveReposRequest struct {
	SelectedRepos []int64            `json:"selectedRepos"`
	DeployedURLs  map[int64]string   `json:"deployedUrls"`
	Repositories  []model.Repository `json:"repositories"`
	UserID        string             `json:"userId"`
	UserData      service.UserData   `json:"userData"`
}

type publishRequest struct {
	PortfolioData portfolioData        `json:"portfolioData"`
	Skills        []service.SkillInput `json:"skills"`
	SelectedRepos []int64              `json:"selectedRepos"`
	DeployedURLs  map[int64]string     `json:"deployedUrls"`
	UserID        string               `json:"userId"`
	UserData      service.UserData     `json:"userData"`
}

type publishAllRequest struct {
	PortfolioData portfolioData         `json:"portfolioData"`
	Skills        []service.SkillInput  `json:"skills"`
	Socials       []service.SocialInput `json:"socials"`
	SelectedRepos []int64               `json:"selectedRepos"`
	DeployedURLs  map[int64]string      `json:"deployedUrls"`
	Repositories  []model.Repository    `json:"repositories"`
	UserID        string                `json:"userId"`
	UserData      service.UserData      `json:"userData"`
}

// SaveHome handles POST /api/portfolio/home.
func (h *PortfolioHandler) SaveHome(w http.ResponseWriter, r *http.Request) {
	var req saveHomeRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, err := h.service.SaveHome(r.Context(), req.UserID, req.UserData, req.PortfolioData.profile())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Portfolio data saved successfully",
		"portfolio": portfolio,
	})
}

// SaveSkills handles POST /api/portfolio/skills.
func (h *PortfolioHandler) SaveSkills(w http.ResponseWriter, r *http.Request) {
	var req saveSkillsRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, err := h.service.SaveSkills(r.Context(), req.UserID, req.UserData, req.Skills)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Skills saved successfully",
		"portfolio": portfolio,
	})
}

// SaveSocials handles POST /api/portfolio/socials.
func (h *PortfolioHandler) SaveSocials(w http.ResponseWriter, r *http.Request) {
	var req saveSocialsRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, err := h.service.SaveSocials(r.Context(), req.UserID, req.UserData, req.Socials)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Social links saved successfully",
		"portfolio": portfolio,
	})
}

// GetSocials handles GET /api/portfolio/socials?userId=.
func (h *PortfolioHandler) GetSocials(w http.ResponseWriter, r *http.Request) {
	socials, err := h.service.GetSocials(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"socials": socials,
	})
}

// SaveRepos handles POST /api/portfolio/repos.
func (h *PortfolioHandler) SaveRepos(w http.ResponseWriter, r *http.Request) {
	var req saveReposRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, dropped, err := h.service.SaveRepos(r.Context(), req.UserID, req.UserData, service.RepoSelection{
		Repositories: req.Repositories,
		SelectedIDs:  req.SelectedRepos,
		DeployedURLs: req.DeployedURLs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Repository selections saved successfully",
		"portfolio":         portfolio,
		"droppedSelections": dropped,
	})
}

// Publish handles POST /api/portfolio/publish.
func (h *PortfolioHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, dropped, err := h.service.Publish(r.Context(), req.UserID, req.UserData, service.PublishInput{
		Profile:      req.PortfolioData.profile(),
		Skills:       req.Skills,
		SelectedIDs:  req.SelectedRepos,
		DeployedURLs: req.DeployedURLs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Portfolio published successfully",
		"portfolio":         portfolio,
		"droppedSelections": dropped,
	})
}

// PublishAll handles POST /api/portfolio/publish-all.
func (h *PortfolioHandler) PublishAll(w http.ResponseWriter, r *http.Request) {
	var req publishAllRequest
	if !decode(w, r, &req) {
		return
	}

	portfolio, dropped, err := h.service.PublishAll(r.Context(), req.UserID, req.UserData, service.PublishAllInput{
		Profile:      req.PortfolioData.profile(),
		Skills:       req.Skills,
		Socials:      req.Socials,
		Repositories: req.Repositories,
		SelectedIDs:  req.SelectedRepos,
		DeployedURLs: req.DeployedURLs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Portfolio published successfully",
		"portfolio":         portfolio,
		"droppedSelections": dropped,
	})
}

// GetPortfolio handles GET /api/portfolio/publish. With ?username= it is the
// public read (published portfolios only); with ?userId= it is the owner's
// dashboard read, publication state irrelevant.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	var (
		portfolio any
		err       error
	)
	if username := r.URL.Query().Get("username"); username != "" {
		portfolio, err = h.service.GetPublic(r.Context(), username)
	} else {
		portfolio, err = h.service.GetByOwner(r.Context(), r.URL.Query().Get("userId"))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"portfolio": portfolio,
	})
}

// decode unmarshals the request body into dst, answering 400 itself on
// malformed JSON. Returns false when the handler should stop.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON request body",
		})
		return false
	}
	return true
}
