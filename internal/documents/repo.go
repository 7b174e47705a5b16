package documents

import "context"

// ListFilter narrows ListByUser results. Zero values mean "no filter";
// archived documents are excluded unless IncludeArchived is set.
type ListFilter struct {
	Type            DocumentType
	Status          Status
	IncludeArchived bool
	Limit           int
	Skip            int
}

// Stats aggregates one owner's documents.
type Stats struct {
	TotalDocuments int
	TotalSizeBytes int64
	Uploaded       int
	Processing     int
	Completed      int
	Failed         int
	Archived       int
	ByType         map[DocumentType]int
}

// Repo defines persistence operations for documents. All lookups are scoped
// to one owner; the owner id is an opaque equality key.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, id string) (Document, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, userID, id string) error

	// ListByUser returns documents newest-first, honoring the filter and
	// limit/skip pagination.
	ListByUser(ctx context.Context, userID string, f ListFilter) ([]Document, error)

	// FindByHash is the deduplication lookup used before accepting an upload.
	FindByHash(ctx context.Context, userID, contentHash string) (Document, error)

	StatsByUser(ctx context.Context, userID string) (Stats, error)
}
