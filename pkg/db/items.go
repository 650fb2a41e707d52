package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/cinii-translator/internal/common"
	"github.com/dtnitsch/cinii-translator/models"
)

// ItemSummary is a listing row for stored items.
type ItemSummary struct {
	ItemID    int64     `yaml:"item_id" json:"item_id"`
	ItemType  string    `yaml:"item_type" json:"item_type"`
	Title     string    `yaml:"title" json:"title"`
	Date      string    `yaml:"date,omitempty" json:"date,omitempty"`
	URL       string    `yaml:"url,omitempty" json:"url,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// ItemKey identifies an item across imports: its URL, else its DOI, else a
// hash of type, title and date.
func ItemKey(item *models.Item) string {
	switch {
	case item.URL != "":
		return "url:" + item.URL
	case item.DOI != "":
		return "doi:" + item.DOI
	default:
		return "hash:" + common.ContentHash([]byte(item.ItemType+"\x00"+item.Title+"\x00"+item.Date))
	}
}

// SaveItem inserts item or replaces the stored copy with the same key,
// returning the item_id.
func (db *DB) SaveItem(ctx context.Context, item *models.Item) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	key := ItemKey(item)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO items (item_key, item_type, title, short_title, date, doi, issn, isbn,
			volume, issue, pages, edition, publication_title, publisher, place, series,
			url, abstract, language, library_catalog, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_key) DO UPDATE SET
			item_type = excluded.item_type,
			title = excluded.title,
			short_title = excluded.short_title,
			date = excluded.date,
			doi = excluded.doi,
			issn = excluded.issn,
			isbn = excluded.isbn,
			volume = excluded.volume,
			issue = excluded.issue,
			pages = excluded.pages,
			edition = excluded.edition,
			publication_title = excluded.publication_title,
			publisher = excluded.publisher,
			place = excluded.place,
			series = excluded.series,
			url = excluded.url,
			abstract = excluded.abstract,
			language = excluded.language,
			library_catalog = excluded.library_catalog,
			extra = excluded.extra,
			updated_at = CURRENT_TIMESTAMP
	`, key, item.ItemType, item.Title, item.ShortTitle, item.Date, item.DOI, item.ISSN, item.ISBN,
		item.Volume, item.Issue, item.Pages, item.Edition, item.PublicationTitle, item.Publisher,
		item.Place, item.Series, item.URL, item.AbstractNote, item.Language, item.LibraryCatalog, item.Extra)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert item: %w", err)
	}

	var itemID int64
	if err := tx.QueryRowContext(ctx, "SELECT item_id FROM items WHERE item_key = ?", key).Scan(&itemID); err != nil {
		return 0, fmt.Errorf("failed to get item ID: %w", err)
	}

	for _, stmt := range []string{
		"DELETE FROM item_creators WHERE item_id = ?",
		"DELETE FROM item_annotations WHERE item_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, itemID); err != nil {
			return 0, fmt.Errorf("failed to clear item children: %w", err)
		}
	}

	for i, c := range item.Creators {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO item_creators (item_id, position, first_name, last_name, creator_type, field_mode)
			VALUES (?, ?, ?, ?, ?, ?)
		`, itemID, i, c.FirstName, c.LastName, c.CreatorType, c.FieldMode)
		if err != nil {
			return 0, fmt.Errorf("failed to insert creator: %w", err)
		}
	}

	if err := insertAnnotations(ctx, tx, itemID, "tag", item.Tags); err != nil {
		return 0, err
	}
	if err := insertAnnotations(ctx, tx, itemID, "note", item.Notes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit item: %w", err)
	}
	return itemID, nil
}

func insertAnnotations(ctx context.Context, tx *sql.Tx, itemID int64, kind string, values []string) error {
	for i, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO item_annotations (item_id, kind, position, value)
			VALUES (?, ?, ?, ?)
		`, itemID, kind, i, v)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", kind, err)
		}
	}
	return nil
}

// GetItem loads a stored item with its creators, tags and notes.
func (db *DB) GetItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item := &models.Item{}
	err := db.QueryRowContext(ctx, `
		SELECT item_type, title, short_title, date, doi, issn, isbn, volume, issue, pages,
			edition, publication_title, publisher, place, series, url, abstract, language,
			library_catalog, extra
		FROM items WHERE item_id = ?
	`, itemID).Scan(&item.ItemType, &item.Title, &item.ShortTitle, &item.Date, &item.DOI,
		&item.ISSN, &item.ISBN, &item.Volume, &item.Issue, &item.Pages, &item.Edition,
		&item.PublicationTitle, &item.Publisher, &item.Place, &item.Series, &item.URL,
		&item.AbstractNote, &item.Language, &item.LibraryCatalog, &item.Extra)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d not found", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT first_name, last_name, creator_type, field_mode
		FROM item_creators WHERE item_id = ? ORDER BY position
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query creators: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Creator
		if err := rows.Scan(&c.FirstName, &c.LastName, &c.CreatorType, &c.FieldMode); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		item.Creators = append(item.Creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	annotations, err := db.QueryContext(ctx, `
		SELECT kind, value FROM item_annotations WHERE item_id = ? ORDER BY kind, position
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer annotations.Close()
	for annotations.Next() {
		var kind, value string
		if err := annotations.Scan(&kind, &value); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		if kind == "tag" {
			item.Tags = append(item.Tags, value)
		} else {
			item.Notes = append(item.Notes, value)
		}
	}
	return item, annotations.Err()
}

// ListItems returns the most recently stored items first.
func (db *DB) ListItems(ctx context.Context, limit int) ([]ItemSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
		SELECT item_id, item_type, COALESCE(title, ''), COALESCE(date, ''), COALESCE(url, ''), created_at
		FROM items ORDER BY item_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []ItemSummary
	for rows.Next() {
		var s ItemSummary
		if err := rows.Scan(&s.ItemID, &s.ItemType, &s.Title, &s.Date, &s.URL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// RecordAccess records a fetch attempt in url_accesses.
func (db *DB) RecordAccess(ctx context.Context, url, errorType string, success bool) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO url_accesses (url, error_type, success)
		VALUES (?, ?, ?)
	`, url, errorType, success)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// CountAccesses returns the number of recorded fetches of url.
func (db *DB) CountAccesses(ctx context.Context, url string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM url_accesses WHERE url = ?", url).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count accesses: %w", err)
	}
	return n, nil
}
