package store

import (
	"database/sql"
	"fmt"

	"github.com/jwhitfield/atelier/internal/model"
)

type MediaItemStore struct {
	db *sql.DB
}

func NewMediaItemStore(db *sql.DB) *MediaItemStore {
	return &MediaItemStore{db: db}
}

func (s *MediaItemStore) Create(kind model.ParentKind, parentID int64, url, caption string, position int) (*model.MediaItem, error) {
	result, err := s.db.Exec(
		"INSERT INTO media_items (parent_kind, parent_id, url, caption, position) VALUES (?, ?, ?, ?, ?)",
		kind, parentID, url, caption, position,
	)
	if err != nil {
		return nil, fmt.Errorf("insert media item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *MediaItemStore) GetByID(id int64) (*model.MediaItem, error) {
	var m model.MediaItem
	err := s.db.QueryRow(
		"SELECT id, parent_kind, parent_id, url, caption, position, created_at FROM media_items WHERE id = ?",
		id,
	).Scan(&m.ID, &m.ParentKind, &m.ParentID, &m.URL, &m.Caption, &m.Position, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query media item: %w", err)
	}
	return &m, nil
}

// ListByParent returns the parent's items ordered by position.
func (s *MediaItemStore) ListByParent(kind model.ParentKind, parentID int64) ([]model.MediaItem, error) {
	rows, err := s.db.Query(
		"SELECT id, parent_kind, parent_id, url, caption, position, created_at FROM media_items WHERE parent_kind = ? AND parent_id = ? ORDER BY position",
		kind, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query media items: %w", err)
	}
	defer rows.Close()

	var items []model.MediaItem
	for rows.Next() {
		var m model.MediaItem
		if err := rows.Scan(&m.ID, &m.ParentKind, &m.ParentID, &m.URL, &m.Caption, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// First returns the parent's item at position 0, or nil when the parent
// has no items.
func (s *MediaItemStore) First(kind model.ParentKind, parentID int64) (*model.MediaItem, error) {
	var m model.MediaItem
	err := s.db.QueryRow(
		"SELECT id, parent_kind, parent_id, url, caption, position, created_at FROM media_items WHERE parent_kind = ? AND parent_id = ? ORDER BY position LIMIT 1",
		kind, parentID,
	).Scan(&m.ID, &m.ParentKind, &m.ParentID, &m.URL, &m.Caption, &m.Position, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query first media item: %w", err)
	}
	return &m, nil
}

// MaxPosition returns the highest position within the parent, or -1 when
// the parent has no items.
func (s *MediaItemStore) MaxPosition(kind model.ParentKind, parentID int64) (int, error) {
	var max int
	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(position), -1) FROM media_items WHERE parent_kind = ? AND parent_id = ?",
		kind, parentID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max position: %w", err)
	}
	return max, nil
}

// UpdatePositions rewrites each listed item's position to its index in
// ids, as a single transaction. Callers are responsible for passing a
// permutation of the parent's current item set.
func (s *MediaItemStore) UpdatePositions(kind model.ParentKind, parentID int64, ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE media_items SET position = ? WHERE id = ? AND parent_kind = ? AND parent_id = ?")
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(i, id, kind, parentID); err != nil {
			return fmt.Errorf("update position for id %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func (s *MediaItemStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM media_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete media item: %w", err)
	}
	return nil
}

func (s *MediaItemStore) CountByParent(kind model.ParentKind, parentID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM media_items WHERE parent_kind = ? AND parent_id = ?",
		kind, parentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count media items: %w", err)
	}
	return count, nil
}
