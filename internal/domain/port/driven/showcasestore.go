package driven

import (
	"context"

	"github.com/jakewray/portfolio/internal/domain/model"
)

// ShowcaseStore defines the driven port for persisting the GitHub showcase.
type ShowcaseStore interface {
	// ReplaceAll swaps the stored showcase for repos in a single transaction.
	ReplaceAll(ctx context.Context, repos []model.ShowcaseRepo) error

	// ListAll returns the showcase ordered by stars, then most recently pushed.
	ListAll(ctx context.Context) ([]model.ShowcaseRepo, error)
}
