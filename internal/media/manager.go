// Package media keeps each collection's ordered, storage-backed image
// list consistent under insert, reorder, and delete.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/jwhitfield/atelier/internal/fault"
	"github.com/jwhitfield/atelier/internal/model"
	"github.com/jwhitfield/atelier/internal/store"
)

// BlobStore is the slice of the blob client the manager needs, an
// interface for testability.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, error)
}

// Manager owns the position invariant: within one parent, positions are
// always {0..n-1} after a successful mutation.
type Manager struct {
	items  *store.MediaItemStore
	blobs  BlobStore
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(items *store.MediaItemStore, blobs BlobStore, logger *slog.Logger) *Manager {
	return &Manager{
		items:  items,
		blobs:  blobs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// parentLock returns the mutex serializing mutations for one parent.
// Read-max-then-write position assignment races without it.
func (m *Manager) parentLock(kind model.ParentKind, parentID int64) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", kind, parentID)
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// sanitizeFilename strips everything but letters, digits, dots, and
// dashes so the filename is safe inside an object key.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// Upload writes the payload to blob storage and returns its public URL.
// No record is created here: write-then-record ordering means a failed
// upload leaves nothing behind, and a crash between the two leaves only
// an unreferenced blob for a later sweep.
func (m *Manager) Upload(ctx context.Context, kind model.ParentKind, parentID int64, body io.Reader, filename, contentType string) (string, error) {
	if !kind.Valid() {
		return "", fault.Validationf("unknown parent kind %q", kind)
	}

	key := fmt.Sprintf("%s/%d/%d-%s", kind, parentID, time.Now().UnixMilli(), sanitizeFilename(filename))
	url, err := m.blobs.Put(ctx, key, body, contentType)
	if err != nil {
		return "", fault.Storage("image upload failed", err)
	}

	m.logger.Info("blob uploaded", "key", key)
	return url, nil
}

// Append adds an item at the end of the parent's sequence. The per-parent
// lock serializes the max-position read against concurrent appends.
func (m *Manager) Append(ctx context.Context, kind model.ParentKind, parentID int64, url, caption string) (*model.MediaItem, error) {
	if !kind.Valid() {
		return nil, fault.Validationf("unknown parent kind %q", kind)
	}
	if url == "" {
		return nil, fault.Validationf("url is required")
	}

	l := m.parentLock(kind, parentID)
	l.Lock()
	defer l.Unlock()

	max, err := m.items.MaxPosition(kind, parentID)
	if err != nil {
		return nil, fault.Database("could not add image", err)
	}

	item, err := m.items.Create(kind, parentID, url, caption, max+1)
	if err != nil {
		return nil, fault.Database("could not add image", err)
	}
	return item, nil
}

// Reorder rewrites every item's position to its index in ids, in one
// transaction. The id set must exactly match the parent's current items;
// accepting a partial list would break position contiguity.
func (m *Manager) Reorder(ctx context.Context, kind model.ParentKind, parentID int64, ids []int64) ([]model.MediaItem, error) {
	if !kind.Valid() {
		return nil, fault.Validationf("unknown parent kind %q", kind)
	}

	l := m.parentLock(kind, parentID)
	l.Lock()
	defer l.Unlock()

	current, err := m.items.ListByParent(kind, parentID)
	if err != nil {
		return nil, fault.Database("could not reorder images", err)
	}

	if err := validatePermutation(current, ids); err != nil {
		return nil, err
	}

	if err := m.items.UpdatePositions(kind, parentID, ids); err != nil {
		return nil, fault.Database("could not reorder images", err)
	}

	items, err := m.items.ListByParent(kind, parentID)
	if err != nil {
		return nil, fault.Database("could not reorder images", err)
	}
	return items, nil
}

// validatePermutation checks that ids is exactly the current item set.
func validatePermutation(current []model.MediaItem, ids []int64) error {
	if len(ids) != len(current) {
		return fault.Validationf("expected %d item ids, got %d", len(current), len(ids))
	}
	existing := make(map[int64]bool, len(current))
	for _, it := range current {
		existing[it.ID] = true
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !existing[id] {
			return fault.Validationf("item %d does not belong to this collection", id)
		}
		if seen[id] {
			return fault.Validationf("item %d listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

// DeleteItem removes one image: blob first, then record, then position
// compaction. A failed blob delete aborts before the record is touched —
// a retryable record+blob pair beats a record pointing at nothing.
func (m *Manager) DeleteItem(ctx context.Context, id int64) error {
	item, err := m.items.GetByID(id)
	if err != nil {
		return fault.Database("could not delete image", err)
	}
	if item == nil {
		return fault.NotFoundf("image not found")
	}

	l := m.parentLock(item.ParentKind, item.ParentID)
	l.Lock()
	defer l.Unlock()

	if err := m.deleteBlobForURL(ctx, item.URL); err != nil {
		return err
	}

	if err := m.items.Delete(id); err != nil {
		return fault.Database("could not delete image", err)
	}

	if err := m.compact(item.ParentKind, item.ParentID); err != nil {
		return err
	}

	m.logger.Info("media item deleted", "id", id, "parent_kind", item.ParentKind, "parent_id", item.ParentID)
	return nil
}

// compact rewrites the parent's remaining positions to {0..n-1}.
func (m *Manager) compact(kind model.ParentKind, parentID int64) error {
	items, err := m.items.ListByParent(kind, parentID)
	if err != nil {
		return fault.Database("could not delete image", err)
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := m.items.UpdatePositions(kind, parentID, ids); err != nil {
		return fault.Database("could not delete image", err)
	}
	return nil
}

// DeleteCollection bulk-deletes all of a parent's items, blob before
// record for each. Failures are accumulated rather than aborting, so one
// stuck blob does not strand the rest; the caller decides whether to
// proceed with removing the parent itself.
func (m *Manager) DeleteCollection(ctx context.Context, kind model.ParentKind, parentID int64) error {
	l := m.parentLock(kind, parentID)
	l.Lock()
	defer l.Unlock()

	items, err := m.items.ListByParent(kind, parentID)
	if err != nil {
		return fault.Database("could not delete collection", err)
	}

	var errs error
	for _, item := range items {
		if err := m.deleteBlobForURL(ctx, item.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: %w", item.ID, err))
			continue
		}
		if err := m.items.Delete(item.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: %w", item.ID, err))
		}
	}
	if errs != nil {
		return fault.Storage("could not delete all collection images", errs)
	}
	return nil
}

// Cover returns the parent's derived cover: the item at position 0, or
// nil when the collection is empty. Parents with an explicit cover field
// never call this.
func (m *Manager) Cover(ctx context.Context, kind model.ParentKind, parentID int64) (*model.MediaItem, error) {
	item, err := m.items.First(kind, parentID)
	if err != nil {
		return nil, fault.Database("could not load cover", err)
	}
	return item, nil
}

// Items returns the parent's ordered items.
func (m *Manager) Items(ctx context.Context, kind model.ParentKind, parentID int64) ([]model.MediaItem, error) {
	items, err := m.items.ListByParent(kind, parentID)
	if err != nil {
		return nil, fault.Database("could not load images", err)
	}
	return items, nil
}

// DeleteBlob removes a stored blob by its public URL. Used for images
// referenced outside the ordered item list, like an explicit cover.
// Foreign URLs are ignored.
func (m *Manager) DeleteBlob(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return m.deleteBlobForURL(ctx, url)
}

func (m *Manager) deleteBlobForURL(ctx context.Context, url string) error {
	key, err := m.blobs.KeyFromURL(url)
	if err != nil {
		// Foreign URL (externally hosted image); nothing to delete.
		m.logger.Warn("skipping blob delete for foreign url", "url", url, "error", err)
		return nil
	}
	if err := m.blobs.Delete(ctx, key); err != nil {
		return fault.Storage("could not delete image from storage", err)
	}
	return nil
}
