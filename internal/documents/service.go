package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/metrics"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/storage/object"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/telemetry"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation"
)

// Service is the document lifecycle manager. It composes the validation gate,
// the object store and the repository into the upload and processing flows.
// All collaborators are constructor-injected; the service holds no global
// state.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Validator *validation.Validator
}

// UploadInput is the ephemeral raw upload. It exists only for the duration of
// one Upload call and is never persisted as-is.
type UploadInput struct {
	UserID       string
	Filename     string
	DocumentType DocumentType
	Description  string
	Password     string
	Data         []byte
}

// Upload runs the full admission flow: validate the bytes, reject duplicates
// by content hash, persist the bytes, then create the record. The returned
// verdict is meaningful even on rejection; callers surface its reason.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, validation.Verdict, error) {
	if in.UserID == "" {
		return Document{}, validation.Verdict{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	start := time.Now()
	verdict := s.Validator.Validate(ctx, in.Data, in.Filename, in.Password)
	metrics.ObserveValidationDurationMs(float64(time.Since(start).Milliseconds()))

	if !verdict.Accepted {
		metrics.IncUploadRejected(string(verdict.Reason))
		telemetry.Info("documents.upload.rejected", map[string]any{
			"user_id":  in.UserID,
			"filename": in.Filename,
			"reason":   verdict.Reason,
			"detail":   verdict.Detail,
		})
		return Document{}, verdict, ErrRejected
	}

	// Dedup pre-check. Two identical uploads racing past this check may both
	// insert; the per-owner unique index (Postgres) turns the loser into
	// ErrDuplicate at create time.
	if existing, err := s.Repo.FindByHash(ctx, in.UserID, verdict.ContentHash); err == nil {
		return existing, verdict, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Document{}, verdict, err
	}

	storageKey, size, storeMime, err := s.Store.Save(ctx, in.UserID, in.Filename, bytes.NewReader(in.Data))
	if err != nil {
		return Document{}, verdict, fmt.Errorf("persist upload: %w", err)
	}

	mimeType := verdict.MimeType
	if mimeType == "" {
		mimeType = storeMime
	}

	now := time.Now().UTC()
	doc := Document{
		ID:                  uuid.NewString(),
		UserID:              in.UserID,
		Filename:            in.Filename,
		OriginalFilename:    in.Filename,
		DocumentType:        in.DocumentType,
		Description:         in.Description,
		FilePath:            storageKey,
		FileSize:            size,
		ContentHash:         verdict.ContentHash,
		MimeType:            mimeType,
		Status:              StatusUploaded,
		IsPasswordProtected: verdict.PasswordProtected,
		PasswordRequired:    verdict.PasswordProtected,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		// Lost the benign dedup race; clean up the just-written bytes.
		if errors.Is(err, ErrDuplicate) {
			s.cleanupStorage(ctx, storageKey)
			if existing, findErr := s.Repo.FindByHash(ctx, in.UserID, verdict.ContentHash); findErr == nil {
				return existing, verdict, ErrDuplicate
			}
			return Document{}, verdict, ErrDuplicate
		}
		return Document{}, verdict, err
	}

	metrics.IncUploadAccepted()
	telemetry.Info("documents.upload.accepted", map[string]any{
		"user_id":            in.UserID,
		"document_id":        doc.ID,
		"size":               size,
		"password_protected": doc.IsPasswordProtected,
		"suspicious":         verdict.Suspicious,
	})
	return doc, verdict, nil
}

// Get fetches an owner's document.
func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns an owner's documents per filter.
func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, f)
}

// FindByHash exposes the dedup lookup at the service boundary.
func (s *Service) FindByHash(ctx context.Context, userID, contentHash string) (Document, error) {
	return s.Repo.FindByHash(ctx, userID, contentHash)
}

// Stats aggregates the owner's documents.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.Repo.StatsByUser(ctx, userID)
}

// StartProcessing transitions a document into processing.
func (s *Service) StartProcessing(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if err := doc.StartProcessing(); err != nil {
		return Document{}, err
	}
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncProcessingStarted()
	return doc, nil
}

// CompleteProcessing records a successful analysis outcome.
func (s *Service) CompleteProcessing(ctx context.Context, userID, id string, results map[string]any, confidence float64, extractedText string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if err := doc.CompleteProcessing(results, confidence, extractedText); err != nil {
		return Document{}, err
	}
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncProcessingCompleted()
	if dur := doc.ProcessingDuration(); dur != nil {
		metrics.ObserveProcessingDurationMs(float64(dur.Milliseconds()))
	}
	return doc, nil
}

// FailProcessing records a failed analysis.
func (s *Service) FailProcessing(ctx context.Context, userID, id, message string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if err := doc.FailProcessing(message); err != nil {
		return Document{}, err
	}
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncProcessingFailed()
	return doc, nil
}

// SetArchived flips the archive flag.
func (s *Service) SetArchived(ctx context.Context, userID, id string, archived bool) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if archived {
		doc.Archive()
	} else {
		doc.Unarchive()
	}
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// UpdateTags applies tag additions and removals.
func (s *Service) UpdateTags(ctx context.Context, userID, id string, add, remove []string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if len(add) > 0 {
		doc.AddTags(add)
	}
	if len(remove) > 0 {
		doc.RemoveTags(remove)
	}
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the record and its bytes. Record deletion is authoritative;
// storage cleanup is advisory and a failed artifact delete never blocks it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	s.cleanupStorage(ctx, doc.FilePath)

	return s.Repo.Delete(ctx, userID, id)
}

// OpenContent streams the stored bytes back, for the processor.
func (s *Service) OpenContent(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return s.Store.Open(ctx, doc.FilePath)
}

func (s *Service) cleanupStorage(ctx context.Context, storageKey string) {
	if storageKey == "" {
		return
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Error("documents.storage.delete_failed", map[string]any{
			"storage_key": storageKey,
			"err":         err.Error(),
		})
	}
}
