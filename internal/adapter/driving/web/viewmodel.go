package web

import (
	"fmt"
	"time"

	vm "github.com/jakewray/portfolio/internal/adapter/driving/web/viewmodel"
	"github.com/jakewray/portfolio/internal/domain/model"
)

// loginErrors maps the ?error= codes the server emits to display text.
// Unknown codes render nothing, so query input is never reflected.
var loginErrors = map[string]string{
	"invalid":     "Invalid username or password.",
	"missing":     "Enter both a username and a password.",
	"csrf":        vm.MsgCSRFExpired,
	"unavailable": "Sign-in is temporarily unavailable.",
}

var loginNotices = map[string]string{
	"done": "Administrator created. Sign in to continue.",
}

var setupErrors = map[string]string{
	"invalid":     "Choose a username and a password (at most 72 bytes).",
	"taken":       "That username is already taken.",
	"csrf":        vm.MsgCSRFExpired,
	"unavailable": "Setup is temporarily unavailable.",
}

var syncNotices = map[string]string{
	"done": "Showcase synced from GitHub.",
}

var syncErrors = map[string]string{
	"disabled": "GitHub sync is not configured. Set PORTFOLIO_GITHUB_USERNAME.",
	"failed":   "Sync failed. Check the server logs.",
}

// toShowcaseCards converts stored showcase entries for the templates.
func toShowcaseCards(repos []model.ShowcaseRepo, now time.Time) []vm.ShowcaseCard {
	cards := make([]vm.ShowcaseCard, 0, len(repos))
	for _, r := range repos {
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		cards = append(cards, vm.ShowcaseCard{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			URL:         r.HTMLURL,
			Language:    r.Language,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Topics:      topics,
			PushedAgo:   relativeTime(r.PushedAt, now),
		})
	}
	return cards
}

// lastSynced returns the newest SyncedAt across repos, formatted for display.
func lastSynced(repos []model.ShowcaseRepo) string {
	var latest time.Time
	for _, r := range repos {
		if r.SyncedAt.After(latest) {
			latest = r.SyncedAt
		}
	}
	if latest.IsZero() {
		return ""
	}
	return latest.UTC().Format("2006-01-02 15:04 UTC")
}

// relativeTime formats t relative to now in coarse units.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.UTC().Format("Jan 2006")
	}
}
