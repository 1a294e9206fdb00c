package database

import (
	"database/sql"
	"fmt"
	"strings"
)

var _ PageRepository = (*PageRepo)(nil)

// PageRepo handles database operations for rendered pages
type PageRepo struct {
	db *DB
}

func NewPageRepo(db *DB) *PageRepo {
	return &PageRepo{db: db}
}

func (r *PageRepo) UpsertPage(page Page) error {
	_, err := r.db.Exec(`
		INSERT INTO pages (id, title, date, display_date, html, content_hash, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			display_date = excluded.display_date,
			html = excluded.html,
			content_hash = excluded.content_hash,
			rendered_at = CURRENT_TIMESTAMP
	`, page.ID, page.Title, page.Date, page.DisplayDate, page.HTML, page.ContentHash)

	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	return nil
}

func (r *PageRepo) GetPage(id string) (*Page, error) {
	var page Page
	err := r.db.QueryRow(`
		SELECT id, title, date, display_date, html, content_hash, rendered_at
		FROM pages
		WHERE id = ?
	`, id).Scan(&page.ID, &page.Title, &page.Date, &page.DisplayDate,
		&page.HTML, &page.ContentHash, &page.RenderedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return &page, nil
}

func (r *PageRepo) GetPageCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// DeletePagesNotIn removes pages whose ids are no longer part of the build
// set. With an empty id list every page is removed.
func (r *PageRepo) DeletePagesNotIn(ids []string) error {
	if len(ids) == 0 {
		if _, err := r.db.Exec(`DELETE FROM pages`); err != nil {
			return fmt.Errorf("failed to delete pages: %w", err)
		}
		return nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(`DELETE FROM pages WHERE id NOT IN (%s)`, placeholders)
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete stale pages: %w", err)
	}

	return nil
}

func (r *PageRepo) ReplaceFailures(failures map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM build_failures`); err != nil {
		return fmt.Errorf("failed to clear build failures: %w", err)
	}

	for id, reason := range failures {
		_, err := tx.Exec(`
			INSERT INTO build_failures (id, reason, failed_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
		`, id, reason)
		if err != nil {
			return fmt.Errorf("failed to record build failure for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build failures: %w", err)
	}

	return nil
}

func (r *PageRepo) GetFailures() ([]BuildFailure, error) {
	rows, err := r.db.Query(`
		SELECT id, reason, failed_at
		FROM build_failures
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query build failures: %w", err)
	}
	defer rows.Close()

	var failures []BuildFailure
	for rows.Next() {
		var failure BuildFailure
		if err := rows.Scan(&failure.ID, &failure.Reason, &failure.FailedAt); err != nil {
			return nil, fmt.Errorf("failed to scan build failure: %w", err)
		}
		failures = append(failures, failure)
	}

	return failures, rows.Err()
}

func (r *PageRepo) GetFailureCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM build_failures`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count build failures: %w", err)
	}
	return count, nil
}
