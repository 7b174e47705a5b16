package documents

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies an uploaded financial document.
type DocumentType string

const (
	TypeInvoice   DocumentType = "invoice"
	TypeReceipt   DocumentType = "receipt"
	TypeStatement DocumentType = "statement"
	TypeContract  DocumentType = "contract"
	TypeOther     DocumentType = "other"
)

// ParseDocumentType maps user input onto the closed type set. Empty input
// falls back to TypeOther.
func ParseDocumentType(raw string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeInvoice:
		return TypeInvoice, nil
	case TypeReceipt:
		return TypeReceipt, nil
	case TypeStatement:
		return TypeStatement, nil
	case TypeContract:
		return TypeContract, nil
	case TypeOther, "":
		return TypeOther, nil
	default:
		return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, raw)
	}
}

// Status is the processing state of a stored document.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus validates a status filter value. Empty input means no filter.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusUploaded:
		return StatusUploaded, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
}

// Document is the durable record for an accepted upload. It is created only
// after a validation verdict accepted the bytes, mutated through the
// transition methods below, and destroyed by an explicit delete.
type Document struct {
	ID               string
	UserID           string
	Filename         string
	OriginalFilename string
	DocumentType     DocumentType
	Description      string

	// FilePath is the storage key of the persisted bytes; the ObjectStore
	// owns its meaning.
	FilePath    string
	FileSize    int64
	ContentHash string
	MimeType    string

	Status                Status
	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
	ProcessingError       string

	AnalysisResults map[string]any
	ConfidenceScore *float64
	ExtractedText   string

	IsPasswordProtected bool
	PasswordRequired    bool

	Tags       []string
	IsArchived bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartProcessing moves the document into the processing state. It is legal
// from uploaded, and from completed/failed as a fresh re-analyze: a new
// processing entry with its own start timestamp, overwriting the previous
// terminal outcome.
func (d *Document) StartProcessing() error {
	switch d.Status {
	case StatusUploaded, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("%w: cannot start processing from %q", ErrInvalidTransition, d.Status)
	}
	now := time.Now().UTC()
	d.Status = StatusProcessing
	d.ProcessingStartedAt = &now
	d.ProcessingCompletedAt = nil
	d.ProcessingError = ""
	d.touch(now)
	return nil
}

// CompleteProcessing records a successful analysis outcome.
func (d *Document) CompleteProcessing(results map[string]any, confidence float64, extractedText string) error {
	if d.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot complete from %q", ErrInvalidTransition, d.Status)
	}
	if results == nil {
		return fmt.Errorf("%w: analysis results are required", ErrInvalidInput)
	}
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("%w: confidence score %v outside [0,1]", ErrInvalidInput, confidence)
	}
	now := time.Now().UTC()
	d.Status = StatusCompleted
	d.ProcessingCompletedAt = &now
	d.AnalysisResults = results
	d.ConfidenceScore = &confidence
	if extractedText != "" {
		d.ExtractedText = extractedText
	}
	d.ProcessingError = ""
	d.touch(now)
	return nil
}

// FailProcessing records a failed analysis. Any previously set analysis
// results are left untouched.
func (d *Document) FailProcessing(message string) error {
	if d.Status != StatusProcessing {
		return fmt.Errorf("%w: cannot fail from %q", ErrInvalidTransition, d.Status)
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: failure message is required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	d.Status = StatusFailed
	d.ProcessingCompletedAt = &now
	d.ProcessingError = message
	d.touch(now)
	return nil
}

// Archive sets the archived flag. Idempotent, legal from any state, no effect
// on Status.
func (d *Document) Archive() {
	if !d.IsArchived {
		d.IsArchived = true
		d.touch(time.Now().UTC())
	}
}

// Unarchive clears the archived flag. Idempotent.
func (d *Document) Unarchive() {
	if d.IsArchived {
		d.IsArchived = false
		d.touch(time.Now().UTC())
	}
}

// AddTags merges new tags into the set. Tags are trimmed, lowercased and
// deduplicated on every mutation.
func (d *Document) AddTags(tags []string) {
	d.Tags = normalizeTags(append(append([]string{}, d.Tags...), tags...))
	d.touch(time.Now().UTC())
}

// RemoveTags drops the given tags from the set.
func (d *Document) RemoveTags(tags []string) {
	remove := make(map[string]struct{}, len(tags))
	for _, t := range normalizeTags(tags) {
		remove[t] = struct{}{}
	}
	kept := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		if _, ok := remove[t]; !ok {
			kept = append(kept, t)
		}
	}
	d.Tags = kept
	d.touch(time.Now().UTC())
}

// ProcessingDuration is the elapsed processing time, defined only when both
// timestamps are present.
func (d *Document) ProcessingDuration() *time.Duration {
	if d.ProcessingStartedAt == nil || d.ProcessingCompletedAt == nil {
		return nil
	}
	dur := d.ProcessingCompletedAt.Sub(*d.ProcessingStartedAt)
	return &dur
}

// FileSizeMB is a pure display value.
func (d *Document) FileSizeMB() float64 {
	return float64(d.FileSize) / (1 << 20)
}

func (d *Document) touch(now time.Time) {
	d.UpdatedAt = now
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
