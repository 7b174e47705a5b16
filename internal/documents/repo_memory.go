package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo used in dev mode and
// tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userID -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Document)}
}

// Create stores a new document for its owner.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

// GetByID returns a document by id for an owner.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[userID] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// Update replaces the stored document.
func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[doc.UserID]
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the record.
func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == id {
			r.data[userID] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListByUser returns documents newest-first, honoring filters and
// limit/skip.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, f ListFilter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := r.data[userID]
	matched := make([]Document, 0, len(all))
	for _, doc := range all {
		if !f.IncludeArchived && doc.IsArchived {
			continue
		}
		if f.Type != "" && doc.DocumentType != f.Type {
			continue
		}
		if f.Status != "" && doc.Status != f.Status {
			continue
		}
		matched = append(matched, doc)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	skip := f.Skip
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []Document{}, nil
	}
	matched = matched[skip:]

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// FindByHash returns the owner's document with the given content hash.
func (r *MemoryRepo) FindByHash(ctx context.Context, userID, contentHash string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[userID] {
		if doc.ContentHash == contentHash {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// StatsByUser aggregates counts and total bytes for an owner.
func (r *MemoryRepo) StatsByUser(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{ByType: make(map[DocumentType]int)}
	for _, doc := range r.data[userID] {
		stats.TotalDocuments++
		stats.TotalSizeBytes += doc.FileSize
		stats.ByType[doc.DocumentType]++
		if doc.IsArchived {
			stats.Archived++
		}
		switch doc.Status {
		case StatusUploaded:
			stats.Uploaded++
		case StatusProcessing:
			stats.Processing++
		case StatusCompleted:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

var _ Repo = (*MemoryRepo)(nil)
