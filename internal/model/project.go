package model

import "time"

// Project is a school project write-up with an ordered image gallery.
// Its cover is not stored: the gallery item at position 0 is surfaced
// as the main image.
type Project struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
