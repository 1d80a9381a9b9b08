package application

import (
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// GitHubClientProvider holds the GitHub client and the account whose public
// repositories feed the showcase. A nil client means the showcase sync is
// disabled. The values are fixed at startup.
type GitHubClientProvider struct {
	client   driven.GitHubClient
	username string
}

// NewGitHubClientProvider creates a provider. client may be nil when no
// GitHub account is configured.
func NewGitHubClientProvider(client driven.GitHubClient, username string) *GitHubClientProvider {
	return &GitHubClientProvider{
		client:   client,
		username: username,
	}
}

// Get returns the client and showcase account. ok is false when the sync is
// disabled.
func (p *GitHubClientProvider) Get() (client driven.GitHubClient, username string, ok bool) {
	return p.client, p.username, p.client != nil && p.username != ""
}

// Enabled reports whether a sync could run.
func (p *GitHubClientProvider) Enabled() bool {
	_, _, ok := p.Get()
	return ok
}
