package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jwhitfield/atelier/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = "id, title, slug, summary, body, published, created_at, updated_at"

func scanProject(row *sql.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return &p, nil
}

func (s *ProjectStore) Create(title, slug, summary, body string) (*model.Project, error) {
	result, err := s.db.Exec(
		"INSERT INTO projects (title, slug, summary, body) VALUES (?, ?, ?, ?)",
		title, slug, summary, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *ProjectStore) GetByID(id int64) (*model.Project, error) {
	return scanProject(s.db.QueryRow(
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id,
	))
}

func (s *ProjectStore) GetBySlug(slug string) (*model.Project, error) {
	return scanProject(s.db.QueryRow(
		"SELECT "+projectColumns+" FROM projects WHERE slug = ?", slug,
	))
}

// List returns projects, newest first. When publishedOnly is true,
// unpublished drafts are excluded.
func (s *ProjectStore) List(publishedOnly bool) ([]model.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	if publishedOnly {
		query += " WHERE published = 1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Update(id int64, title, slug, summary, body string) (*model.Project, error) {
	_, err := s.db.Exec(
		"UPDATE projects SET title = ?, slug = ?, summary = ?, body = ?, updated_at = ? WHERE id = ?",
		title, slug, summary, body, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) SetPublished(id int64, published bool) error {
	_, err := s.db.Exec(
		"UPDATE projects SET published = ?, updated_at = ? WHERE id = ?",
		published, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set project published: %w", err)
	}
	return nil
}

func (s *ProjectStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
