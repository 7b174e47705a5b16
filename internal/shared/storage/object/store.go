package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for persisting and retrieving binary
// objects. Save reports the storage key the bytes now live under; the key is
// opaque to callers.
//
// Delete is a best-effort operation: callers treat a failed delete as
// advisory (logged, not fatal) so a stuck storage artifact can never block
// removal of the owning record.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
