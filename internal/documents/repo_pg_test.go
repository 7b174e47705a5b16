package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newPGMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func pgDoc() Document {
	now := time.Now().UTC()
	return Document{
		ID:           "doc-1",
		UserID:       "user-1",
		Filename:     "report.pdf",
		DocumentType: TypeInvoice,
		FilePath:     "user-1/abc_report.pdf",
		FileSize:     1024,
		ContentHash:  "deadbeef",
		MimeType:     "application/pdf",
		Status:       StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func documentRows(doc Document) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "filename", "original_filename", "document_type", "description",
		"file_path", "file_size", "content_hash", "mime_type", "status",
		"processing_started_at", "processing_completed_at", "processing_error",
		"analysis_results", "confidence_score", "extracted_text",
		"is_password_protected", "password_required", "tags", "is_archived",
		"created_at", "updated_at",
	}).AddRow(
		doc.ID, doc.UserID, doc.Filename, doc.Filename, string(doc.DocumentType), nil,
		doc.FilePath, doc.FileSize, doc.ContentHash, doc.MimeType, string(doc.Status),
		nil, nil, nil,
		[]byte(`{}`), nil, nil,
		doc.IsPasswordProtected, doc.PasswordRequired, []byte(`["finance"]`), doc.IsArchived,
		doc.CreatedAt, doc.UpdatedAt,
	)
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newPGMock(t)
	doc := pgDoc()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID, doc.UserID, doc.Filename, doc.Filename, string(doc.DocumentType), sqlmock.AnyArg(),
			doc.FilePath, doc.FileSize, doc.ContentHash, doc.MimeType, string(doc.Status),
			nil, nil, sqlmock.AnyArg(),
			sqlmock.AnyArg(), nil, sqlmock.AnyArg(),
			doc.IsPasswordProtected, doc.PasswordRequired, sqlmock.AnyArg(), doc.IsArchived,
			doc.CreatedAt, doc.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateUniqueViolationIsDuplicate(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectExec("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_documents_user_content_hash"})

	if err := repo.Create(context.Background(), pgDoc()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newPGMock(t)
	doc := pgDoc()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = \\$1 AND id = \\$2").
		WithArgs(doc.UserID, doc.ID).
		WillReturnRows(documentRows(doc))

	got, err := repo.GetByID(context.Background(), doc.UserID, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != doc.ID || got.DocumentType != TypeInvoice {
		t.Fatalf("unexpected document: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "finance" {
		t.Fatalf("expected tags decoded from JSON, got %v", got.Tags)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateMissingRow(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectExec("UPDATE documents SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), pgDoc()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectExec("DELETE FROM documents WHERE user_id = \\$1 AND id = \\$2").
		WithArgs("user-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPGRepoListAppliesFilters(t *testing.T) {
	repo, mock := newPGMock(t)
	doc := pgDoc()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = \\$1 AND is_archived = FALSE AND document_type = \\$2 AND status = \\$3").
		WithArgs("user-1", "invoice", "uploaded", 50, 0).
		WillReturnRows(documentRows(doc))

	docs, err := repo.ListByUser(context.Background(), "user-1", ListFilter{Type: TypeInvoice, Status: StatusUploaded})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Fatalf("unexpected result: %v", ids(docs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoStats(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectQuery("SELECT(.+)COUNT\\(\\*\\)(.+)FROM documents(.+)WHERE user_id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"count", "sum", "uploaded", "processing", "completed", "failed", "archived",
		}).AddRow(3, 60, 2, 0, 1, 0, 1))

	mock.ExpectQuery("SELECT document_type, COUNT\\(\\*\\) FROM documents").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"document_type", "count"}).
			AddRow("invoice", 2).
			AddRow("receipt", 1))

	stats, err := repo.StatsByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StatsByUser: %v", err)
	}
	if stats.TotalDocuments != 3 || stats.TotalSizeBytes != 60 || stats.Archived != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ByType[TypeInvoice] != 2 {
		t.Fatalf("unexpected type counts: %v", stats.ByType)
	}
}
