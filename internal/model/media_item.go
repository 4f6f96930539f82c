package model

import "time"

// ParentKind identifies which collection type a media item belongs to.
type ParentKind string

const (
	KindAlbum   ParentKind = "album"
	KindProject ParentKind = "project"
)

// Valid reports whether k is a known parent kind.
func (k ParentKind) Valid() bool {
	return k == KindAlbum || k == KindProject
}

// MediaItem is one image in an ordered collection. Within a parent,
// positions are a contiguous zero-based sequence.
type MediaItem struct {
	ID         int64      `json:"id"`
	ParentKind ParentKind `json:"parent_kind"`
	ParentID   int64      `json:"parent_id"`
	URL        string     `json:"url"`
	Caption    string     `json:"caption,omitempty"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
}
