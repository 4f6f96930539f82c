package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jwhitfield/atelier/internal/model"
)

type AlbumStore struct {
	db *sql.DB
}

func NewAlbumStore(db *sql.DB) *AlbumStore {
	return &AlbumStore{db: db}
}

const albumColumns = "id, title, slug, description, cover_url, created_at, updated_at"

func scanAlbum(row *sql.Row) (*model.Album, error) {
	var a model.Album
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Description, &a.CoverURL, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query album: %w", err)
	}
	return &a, nil
}

func (s *AlbumStore) Create(title, slug, description string) (*model.Album, error) {
	result, err := s.db.Exec(
		"INSERT INTO albums (title, slug, description) VALUES (?, ?, ?)",
		title, slug, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert album: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *AlbumStore) GetByID(id int64) (*model.Album, error) {
	return scanAlbum(s.db.QueryRow(
		"SELECT "+albumColumns+" FROM albums WHERE id = ?", id,
	))
}

func (s *AlbumStore) GetBySlug(slug string) (*model.Album, error) {
	return scanAlbum(s.db.QueryRow(
		"SELECT "+albumColumns+" FROM albums WHERE slug = ?", slug,
	))
}

func (s *AlbumStore) List() ([]model.Album, error) {
	rows, err := s.db.Query("SELECT " + albumColumns + " FROM albums ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var albums []model.Album
	for rows.Next() {
		var a model.Album
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Description, &a.CoverURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

func (s *AlbumStore) Update(id int64, title, slug, description string) (*model.Album, error) {
	_, err := s.db.Exec(
		"UPDATE albums SET title = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?",
		title, slug, description, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update album: %w", err)
	}
	return s.GetByID(id)
}

// SetCover records the album's explicit cover URL. An empty url clears it.
func (s *AlbumStore) SetCover(id int64, url string) error {
	_, err := s.db.Exec(
		"UPDATE albums SET cover_url = ?, updated_at = ? WHERE id = ?",
		url, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set album cover: %w", err)
	}
	return nil
}

func (s *AlbumStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}
