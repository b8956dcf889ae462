// Package draft models the dashboard's in-flight edit state as an explicit
// serializable value. A client keeps the last-saved snapshot next to the
// draft it mutates and derives the "unsaved changes" flag from a pure diff —
// no hidden globals, no dirty bits to keep in sync.
package draft

import (
	"github.com/sakif/devfolio/internal/service"
)

// Draft is everything the dashboard edits before saving: profile fields,
// skills, socials, and repository selections. The zero value is an empty
// draft. Safe to serialize as JSON for client handoff or session restore.
type Draft struct {
	DisplayName    string `json:"displayName"`
	JobTitle       string `json:"jobTitle"`
	Bio            string `json:"bio"`
	ProfilePic     string `json:"profilePic"`
	CustomUsername string `json:"customUsername"`

	Skills  []service.SkillInput  `json:"skills"`
	Socials []service.SocialInput `json:"socials"`

	SelectedRepoIDs []int64          `json:"selectedRepos"`
	DeployedURLs    map[int64]string `json:"deployedUrls"`
}

// Equal reports whether two drafts describe the same edit state. Collections
// compare element-wise in order; a nil slice and an empty slice are the same
// state. Deployed URLs compare as maps regardless of iteration order.
func Equal(a, b Draft) bool {
	if a.DisplayName != b.DisplayName ||
		a.JobTitle != b.JobTitle ||
		a.Bio != b.Bio ||
		a.ProfilePic != b.ProfilePic ||
		a.CustomUsername != b.CustomUsername {
		return false
	}

	if len(a.Skills) != len(b.Skills) {
		return false
	}
	for i := range a.Skills {
		if a.Skills[i] != b.Skills[i] {
			return false
		}
	}

	if len(a.Socials) != len(b.Socials) {
		return false
	}
	for i := range a.Socials {
		if a.Socials[i] != b.Socials[i] {
			return false
		}
	}

	if len(a.SelectedRepoIDs) != len(b.SelectedRepoIDs) {
		return false
	}
	for i := range a.SelectedRepoIDs {
		if a.SelectedRepoIDs[i] != b.SelectedRepoIDs[i] {
			return false
		}
	}

	if len(a.DeployedURLs) != len(b.DeployedURLs) {
		return false
	}
	for id, url := range a.DeployedURLs {
		if other, ok := b.DeployedURLs[id]; !ok || other != url {
			return false
		}
	}

	return true
}

// Changed reports whether the draft differs from the last-saved snapshot.
// This is the "enable the publish button" predicate.
func (d Draft) Changed(snapshot Draft) bool {
	return !Equal(d, snapshot)
}
