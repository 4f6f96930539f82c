package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jwhitfield/atelier/internal/model"
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = "id, title, slug, body, published, created_at, updated_at"

func scanPost(row *sql.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	return &p, nil
}

func (s *PostStore) Create(title, slug, body string) (*model.Post, error) {
	result, err := s.db.Exec(
		"INSERT INTO posts (title, slug, body) VALUES (?, ?, ?)",
		title, slug, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *PostStore) GetByID(id int64) (*model.Post, error) {
	return scanPost(s.db.QueryRow(
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id,
	))
}

func (s *PostStore) GetBySlug(slug string) (*model.Post, error) {
	return scanPost(s.db.QueryRow(
		"SELECT "+postColumns+" FROM posts WHERE slug = ?", slug,
	))
}

func (s *PostStore) List(publishedOnly bool) ([]model.Post, error) {
	query := "SELECT " + postColumns + " FROM posts"
	if publishedOnly {
		query += " WHERE published = 1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PostStore) Update(id int64, title, slug, body string, published bool) (*model.Post, error) {
	_, err := s.db.Exec(
		"UPDATE posts SET title = ?, slug = ?, body = ?, published = ?, updated_at = ? WHERE id = ?",
		title, slug, body, published, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetByID(id)
}

func (s *PostStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
