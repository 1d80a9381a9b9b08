package driven

import (
	"context"

	"github.com/jakewray/portfolio/internal/domain/model"
)

// GitHubClient defines the driven port for reading public repository data from GitHub.
type GitHubClient interface {
	// FetchPublicRepos returns the public, non-fork, non-archived repositories
	// owned by username. Pagination is handled by the implementation.
	FetchPublicRepos(ctx context.Context, username string) ([]model.ShowcaseRepo, error)
}
