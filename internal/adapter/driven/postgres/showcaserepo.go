package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ShowcaseStore = (*ShowcaseRepo)(nil)

// ShowcaseRepo is the PostgreSQL implementation of the ShowcaseStore port interface.
type ShowcaseRepo struct {
	db *DB
}

// NewShowcaseRepo creates a new ShowcaseRepo backed by the given DB.
func NewShowcaseRepo(db *DB) *ShowcaseRepo {
	return &ShowcaseRepo{db: db}
}

// ReplaceAll deletes the stored showcase and inserts repos in one transaction.
// Rows are sent as a single pipelined batch.
func (r *ShowcaseRepo) ReplaceAll(ctx context.Context, repos []model.ShowcaseRepo) error {
	return pgx.BeginFunc(ctx, r.db.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM showcase_repos`); err != nil {
			return fmt.Errorf("clear showcase: %w", err)
		}

		batch := &pgx.Batch{}
		for _, repo := range repos {
			topics := repo.Topics
			if topics == nil {
				topics = []string{}
			}
			batch.Queue(`
				INSERT INTO showcase_repos
					(id, full_name, name, description, html_url, language, stars, forks, topics, pushed_at, synced_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				repo.ID, repo.FullName, repo.Name, repo.Description, repo.HTMLURL, repo.Language,
				repo.Stars, repo.Forks, topics, repo.PushedAt, repo.SyncedAt,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert showcase repos: %w", err)
		}
		return nil
	})
}

// ListAll returns the showcase ordered by stars, then most recently pushed.
func (r *ShowcaseRepo) ListAll(ctx context.Context) ([]model.ShowcaseRepo, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, full_name, name, description, html_url, language, stars, forks, topics, pushed_at, synced_at
		FROM showcase_repos
		ORDER BY stars DESC, pushed_at DESC, full_name`)
	if err != nil {
		return nil, fmt.Errorf("list showcase: %w", err)
	}

	repos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ShowcaseRepo, error) {
		var repo model.ShowcaseRepo
		err := row.Scan(&repo.ID, &repo.FullName, &repo.Name, &repo.Description, &repo.HTMLURL,
			&repo.Language, &repo.Stars, &repo.Forks, &repo.Topics, &repo.PushedAt, &repo.SyncedAt)
		return repo, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan showcase: %w", err)
	}

	return repos, nil
}
