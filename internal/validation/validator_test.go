package validation

import (
	"context"
	"testing"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation/validationtest"
)

func TestValidateAcceptsCleanPDF(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), validationtest.Minimal(), "report.pdf", "")
	if !verdict.Accepted {
		t.Fatalf("expected accept, got %s: %s", verdict.Reason, verdict.Detail)
	}
	if len(verdict.ContentHash) != 64 {
		t.Fatalf("expected 64 hex chars of content hash, got %d", len(verdict.ContentHash))
	}
	if verdict.PasswordProtected {
		t.Fatalf("expected unencrypted document")
	}
	if len(verdict.Suspicious) != 0 {
		t.Fatalf("expected no suspicious markers, got %v", verdict.Suspicious)
	}
}

func TestValidateHashIsContentOnly(t *testing.T) {
	v := New(Options{})
	data := validationtest.Minimal()

	first := v.Validate(context.Background(), data, "a.pdf", "")
	second := v.Validate(context.Background(), data, "b.pdf", "")
	if first.ContentHash != second.ContentHash {
		t.Fatalf("expected identical hash for identical content, got %s vs %s", first.ContentHash, second.ContentHash)
	}

	other := v.Validate(context.Background(), validationtest.WithPattern("padding"), "a.pdf", "")
	if !other.Accepted {
		t.Fatalf("expected accept, got %s", other.Reason)
	}
	if other.ContentHash == first.ContentHash {
		t.Fatalf("expected different hash for different content")
	}
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), nil, "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonEmpty {
		t.Fatalf("expected empty rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateSizeLimitBeforeParsing(t *testing.T) {
	v := New(Options{MaxSizeBytes: 16})

	// A well-formed document that is simply too big must be rejected on size
	// alone, before the structural parser ever sees it.
	verdict := v.Validate(context.Background(), validationtest.Minimal(), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonSizeExceeded {
		t.Fatalf("expected size rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateRejectsWrongSignature(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), []byte("GIF89a not a pdf at all"), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonSignatureMismatch {
		t.Fatalf("expected signature rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateFilenameCheckedFirst(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), validationtest.Minimal(), "../escape.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonFilenameInvalid {
		t.Fatalf("expected filename rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateRejectsBrokenStructure(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), validationtest.Broken(), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonStructureInvalid {
		t.Fatalf("expected structure rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateHardBlockPattern(t *testing.T) {
	v := New(Options{})

	for _, payload := range []string{"/Launch", "/launch", "/LAUNCH", "javascript:alert(1)"} {
		verdict := v.Validate(context.Background(), validationtest.WithPattern(payload), "report.pdf", "")
		if verdict.Accepted || verdict.Reason != ReasonMaliciousContent {
			t.Fatalf("payload %q: expected malicious rejection, got accepted=%t reason=%s", payload, verdict.Accepted, verdict.Reason)
		}
		if verdict.Pattern == "" {
			t.Fatalf("payload %q: expected matched pattern name in verdict", payload)
		}
	}
}

func TestValidateWatchlistRecordedNotBlocking(t *testing.T) {
	v := New(Options{})

	verdict := v.Validate(context.Background(), validationtest.WithPattern("/OpenAction 5 0 R"), "report.pdf", "")
	if !verdict.Accepted {
		t.Fatalf("expected accept for watchlist-only content, got %s: %s", verdict.Reason, verdict.Detail)
	}
	found := false
	for _, name := range verdict.Suspicious {
		if name == "/OpenAction" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected /OpenAction in suspicious markers, got %v", verdict.Suspicious)
	}
}

func TestValidateObjectLimit(t *testing.T) {
	v := New(Options{MaxObjects: 2})

	verdict := v.Validate(context.Background(), validationtest.Minimal(), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonObjectLimitExceeded {
		t.Fatalf("expected object limit rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidatePageLimit(t *testing.T) {
	v := New(Options{MaxPages: 2})

	verdict := v.Validate(context.Background(), validationtest.Build(validationtest.Options{Pages: 3}), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonPageLimitExceeded {
		t.Fatalf("expected page limit rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}

func TestValidateSkipChecksBypassesContentGates(t *testing.T) {
	v := New(Options{SkipChecks: true})

	verdict := v.Validate(context.Background(), []byte("not a pdf"), "anything.txt", "")
	if !verdict.Accepted {
		t.Fatalf("expected accept in skip mode, got %s", verdict.Reason)
	}
	if len(verdict.ContentHash) != 64 {
		t.Fatalf("expected content hash even in skip mode")
	}

	// Size bounds still hold.
	empty := v.Validate(context.Background(), nil, "anything.txt", "")
	if empty.Accepted || empty.Reason != ReasonEmpty {
		t.Fatalf("expected empty rejection in skip mode, got accepted=%t reason=%s", empty.Accepted, empty.Reason)
	}
}

func TestValidateCanceledContext(t *testing.T) {
	v := New(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict := v.Validate(ctx, validationtest.Minimal(), "report.pdf", "")
	if verdict.Accepted || verdict.Reason != ReasonInternal {
		t.Fatalf("expected internal rejection, got accepted=%t reason=%s", verdict.Accepted, verdict.Reason)
	}
}
