package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// ShowcaseService copies the configured account's public GitHub repositories
// into the showcase store and serves them to the public site.
type ShowcaseService struct {
	provider *GitHubClientProvider
	store    driven.ShowcaseStore
	now      func() time.Time

	// syncMu serializes syncs so two admin clicks cannot interleave
	// ReplaceAll calls.
	syncMu sync.Mutex
}

// NewShowcaseService creates a new ShowcaseService with the required dependencies.
func NewShowcaseService(provider *GitHubClientProvider, store driven.ShowcaseStore) *ShowcaseService {
	return &ShowcaseService{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

// Enabled reports whether Sync can reach GitHub.
func (s *ShowcaseService) Enabled() bool {
	return s.provider.Enabled()
}

// Sync fetches the public repositories and replaces the stored showcase with
// them. It returns the number of repositories stored. A failed fetch leaves
// the previous showcase in place.
func (s *ShowcaseService) Sync(ctx context.Context) (int, error) {
	client, username, ok := s.provider.Get()
	if !ok {
		return 0, ErrShowcaseDisabled
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	start := s.now()

	repos, err := client.FetchPublicRepos(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("fetch public repos for %s: %w", username, err)
	}

	syncedAt := s.now().UTC()
	for i := range repos {
		repos[i].SyncedAt = syncedAt
	}

	if err := s.store.ReplaceAll(ctx, repos); err != nil {
		return 0, fmt.Errorf("store showcase: %w", err)
	}

	slog.Info("showcase sync complete",
		"username", username,
		"repos", len(repos),
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)

	return len(repos), nil
}

// List returns the stored showcase. It works whether or not sync is enabled.
func (s *ShowcaseService) List(ctx context.Context) ([]model.ShowcaseRepo, error) {
	repos, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list showcase: %w", err)
	}
	if repos == nil {
		repos = []model.ShowcaseRepo{}
	}
	return repos, nil
}
