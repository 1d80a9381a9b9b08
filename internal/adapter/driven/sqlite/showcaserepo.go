package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ShowcaseStore = (*ShowcaseRepo)(nil)

// ShowcaseRepo is the SQLite implementation of the ShowcaseStore port interface.
// Topics are stored as a JSON array.
type ShowcaseRepo struct {
	db *DB
}

// NewShowcaseRepo creates a new ShowcaseRepo backed by the given DB.
func NewShowcaseRepo(db *DB) *ShowcaseRepo {
	return &ShowcaseRepo{db: db}
}

// ReplaceAll deletes the stored showcase and inserts repos in one transaction.
func (r *ShowcaseRepo) ReplaceAll(ctx context.Context, repos []model.ShowcaseRepo) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin showcase replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM showcase_repos`); err != nil {
		return fmt.Errorf("clear showcase: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO showcase_repos
			(id, full_name, name, description, html_url, language, stars, forks, topics, pushed_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare showcase insert: %w", err)
	}
	defer stmt.Close()

	for _, repo := range repos {
		topics, err := encodeTopics(repo.Topics)
		if err != nil {
			return fmt.Errorf("encode topics for %s: %w", repo.FullName, err)
		}

		_, err = stmt.ExecContext(ctx,
			repo.ID, repo.FullName, repo.Name, repo.Description, repo.HTMLURL, repo.Language,
			repo.Stars, repo.Forks, topics, formatTime(repo.PushedAt), formatTime(repo.SyncedAt),
		)
		if err != nil {
			return fmt.Errorf("insert showcase repo %s: %w", repo.FullName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit showcase replace: %w", err)
	}
	return nil
}

// ListAll returns the showcase ordered by stars, then most recently pushed.
func (r *ShowcaseRepo) ListAll(ctx context.Context) ([]model.ShowcaseRepo, error) {
	const query = `
		SELECT id, full_name, name, description, html_url, language, stars, forks, topics, pushed_at, synced_at
		FROM showcase_repos
		ORDER BY stars DESC, pushed_at DESC, full_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list showcase: %w", err)
	}
	defer rows.Close()

	var repos []model.ShowcaseRepo
	for rows.Next() {
		var (
			repo               model.ShowcaseRepo
			topics             string
			pushedAt, syncedAt string
		)
		if err := rows.Scan(&repo.ID, &repo.FullName, &repo.Name, &repo.Description, &repo.HTMLURL,
			&repo.Language, &repo.Stars, &repo.Forks, &topics, &pushedAt, &syncedAt); err != nil {
			return nil, fmt.Errorf("scan showcase repo: %w", err)
		}

		if err := json.Unmarshal([]byte(topics), &repo.Topics); err != nil {
			return nil, fmt.Errorf("decode topics for %s: %w", repo.FullName, err)
		}
		if repo.PushedAt, err = parseTime(pushedAt); err != nil {
			return nil, fmt.Errorf("parse pushed_at for %s: %w", repo.FullName, err)
		}
		if repo.SyncedAt, err = parseTime(syncedAt); err != nil {
			return nil, fmt.Errorf("parse synced_at for %s: %w", repo.FullName, err)
		}

		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate showcase: %w", err)
	}

	return repos, nil
}

func encodeTopics(topics []string) (string, error) {
	if topics == nil {
		topics = []string{}
	}
	b, err := json.Marshal(topics)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
