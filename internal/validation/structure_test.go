package validation

import (
	"testing"
	"time"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation/validationtest"
)

func TestCheckStructurePasswordRequired(t *testing.T) {
	data := validationtest.Build(validationtest.Options{Encrypted: true})

	_, rej := checkStructure(data, "", 1000, 10000, 5*time.Second)
	if rej == nil || rej.Reason != ReasonPasswordRequired {
		t.Fatalf("expected password required, got %v", rej)
	}
}

func TestCheckStructurePasswordIncorrect(t *testing.T) {
	data := validationtest.Build(validationtest.Options{Encrypted: true})

	_, rej := checkStructure(data, "wrong-password", 1000, 10000, 5*time.Second)
	if rej == nil || rej.Reason != ReasonPasswordIncorrect {
		t.Fatalf("expected password incorrect, got %v", rej)
	}
}

func TestCheckStructurePageLimit(t *testing.T) {
	data := validationtest.Build(validationtest.Options{Pages: 5})

	_, rej := checkStructure(data, "", 4, 10000, 5*time.Second)
	if rej == nil || rej.Reason != ReasonPageLimitExceeded {
		t.Fatalf("expected page limit rejection, got %v", rej)
	}
}

func TestCheckStructureObjectLimitFromTrailer(t *testing.T) {
	data := validationtest.Build(validationtest.Options{ObjectCount: 20000})

	_, rej := checkStructure(data, "", 1000, 10000, 5*time.Second)
	if rej == nil || rej.Reason != ReasonObjectLimitExceeded {
		t.Fatalf("expected object limit rejection, got %v", rej)
	}
}

func TestCheckStructureReportsPageCount(t *testing.T) {
	data := validationtest.Build(validationtest.Options{Pages: 3})

	info, rej := checkStructure(data, "", 1000, 10000, 5*time.Second)
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", rej)
	}
	if info.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", info.Pages)
	}
	if info.Encrypted {
		t.Fatalf("expected unencrypted document")
	}
}

func TestCheckStructureGarbageIsStructural(t *testing.T) {
	_, rej := checkStructure(validationtest.Broken(), "", 1000, 10000, 5*time.Second)
	if rej == nil || rej.Reason != ReasonStructureInvalid {
		t.Fatalf("expected structural rejection, got %v", rej)
	}
}
