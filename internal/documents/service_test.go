package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/analyzer"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation/validationtest"
)

// fakeStore keeps objects in a map and can be told to fail deletes.
type fakeStore struct {
	objects    map[string][]byte
	failDelete bool
	deletes    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), "application/pdf", nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(ctx context.Context, storageKey string) error {
	s.deletes = append(s.deletes, storageKey)
	if s.failDelete {
		return errors.New("storage unavailable")
	}
	delete(s.objects, storageKey)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	svc := &Service{
		Repo:      NewMemoryRepo(),
		Store:     store,
		Validator: validation.New(validation.Options{}),
	}
	return svc, store
}

func uploadInput(filename string, data []byte) UploadInput {
	return UploadInput{
		UserID:       "user-1",
		Filename:     filename,
		DocumentType: TypeInvoice,
		Data:         data,
	}
}

func TestServiceUploadAccepted(t *testing.T) {
	svc, store := newTestService()

	doc, verdict, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !verdict.Accepted || doc.Status != StatusUploaded {
		t.Fatalf("expected accepted uploaded document, got %+v", doc)
	}
	if doc.ContentHash != verdict.ContentHash {
		t.Fatalf("record hash must come from the verdict")
	}
	if _, ok := store.objects[doc.FilePath]; !ok {
		t.Fatalf("expected bytes persisted under %s", doc.FilePath)
	}
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestServiceUploadRejectedPersistsNothing(t *testing.T) {
	svc, store := newTestService()

	_, verdict, err := svc.Upload(context.Background(), uploadInput("report.pdf", []byte("not a pdf")))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if verdict.Reason != validation.ReasonSignatureMismatch {
		t.Fatalf("expected signature reason, got %s", verdict.Reason)
	}
	if len(store.objects) != 0 {
		t.Fatalf("rejected upload must not reach storage")
	}
	docs, _ := svc.List(context.Background(), "user-1", ListFilter{})
	if len(docs) != 0 {
		t.Fatalf("rejected upload must not create a record")
	}
}

func TestServiceUploadDuplicateContent(t *testing.T) {
	svc, _ := newTestService()
	data := validationtest.Minimal()

	first, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", data))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}

	// Same bytes under a different name is still a duplicate.
	existing, _, err := svc.Upload(context.Background(), uploadInput("renamed.pdf", data))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if existing.ID != first.ID {
		t.Fatalf("expected the existing document back, got %s", existing.ID)
	}

	// A different owner uploading the same bytes is not a duplicate.
	in := uploadInput("report.pdf", data)
	in.UserID = "user-2"
	if _, _, err := svc.Upload(context.Background(), in); err != nil {
		t.Fatalf("cross-owner upload: %v", err)
	}
}

func TestServiceDeleteBestEffortStorage(t *testing.T) {
	svc, store := newTestService()

	doc, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	store.failDelete = true
	if err := svc.Delete(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("Delete must succeed despite storage failure: %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected a delete attempt against storage")
	}
	if _, err := svc.Get(context.Background(), "user-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestServiceTransitions(t *testing.T) {
	svc, _ := newTestService()

	doc, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	started, err := svc.StartProcessing(context.Background(), "user-1", doc.ID)
	if err != nil || started.Status != StatusProcessing {
		t.Fatalf("StartProcessing: %v status=%s", err, started.Status)
	}

	completed, err := svc.CompleteProcessing(context.Background(), "user-1", doc.ID, map[string]any{"total": 1.0}, 0.7, "text")
	if err != nil || completed.Status != StatusCompleted {
		t.Fatalf("CompleteProcessing: %v status=%s", err, completed.Status)
	}

	// Transition results persist through the repository.
	reloaded, err := svc.Get(context.Background(), "user-1", doc.ID)
	if err != nil || reloaded.Status != StatusCompleted {
		t.Fatalf("expected persisted completed status, got %v %s", err, reloaded.Status)
	}
}

func TestServiceArchiveAndTags(t *testing.T) {
	svc, _ := newTestService()

	doc, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	archived, err := svc.SetArchived(context.Background(), "user-1", doc.ID, true)
	if err != nil || !archived.IsArchived {
		t.Fatalf("SetArchived: %v", err)
	}

	tagged, err := svc.UpdateTags(context.Background(), "user-1", doc.ID, []string{"Q3", "q3", " finance"}, nil)
	if err != nil {
		t.Fatalf("UpdateTags: %v", err)
	}
	if len(tagged.Tags) != 2 {
		t.Fatalf("expected 2 normalized tags, got %v", tagged.Tags)
	}
}

func TestProcessorRunsAnalysis(t *testing.T) {
	svc, _ := newTestService()
	proc := NewProcessor(svc, analyzer.NewLocal(), 1)

	doc, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	done, err := proc.Process(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", done.Status, done.ProcessingError)
	}
	if done.AnalysisResults == nil {
		t.Fatalf("expected analysis results recorded")
	}
	if done.ProcessingDuration() == nil {
		t.Fatalf("expected processing duration")
	}
}

func TestProcessorRecordsFailure(t *testing.T) {
	svc, store := newTestService()
	proc := NewProcessor(svc, analyzer.NewLocal(), 1)

	doc, _, err := svc.Upload(context.Background(), uploadInput("report.pdf", validationtest.Minimal()))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// Losing the stored bytes makes the analysis fail, which must be recorded
	// on the document rather than dropped.
	delete(store.objects, doc.FilePath)

	done, err := proc.Process(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if done.Status != StatusFailed || done.ProcessingError == "" {
		t.Fatalf("expected failed with message, got %s %q", done.Status, done.ProcessingError)
	}
}
