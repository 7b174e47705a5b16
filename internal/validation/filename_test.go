package validation

import (
	"strings"
	"testing"
)

func TestCheckFilename(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		reject bool
	}{
		{"simple", "report.pdf", false},
		{"uppercase extension", "REPORT.PDF", false},
		{"spaces", "q3 financial report.pdf", false},
		{"empty", "", true},
		{"wrong extension", "report.docx", true},
		{"no extension", "report", true},
		{"traversal dots", "..report.pdf", true},
		{"forward slash", "dir/report.pdf", true},
		{"backslash", `dir\report.pdf`, true},
		{"control character", "rep\x01ort.pdf", true},
		{"angle bracket", "re<port.pdf", true},
		{"question mark", "re?port.pdf", true},
		{"too long", strings.Repeat("a", 255) + ".pdf", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rej := checkFilename(tc.input)
			if tc.reject && rej == nil {
				t.Fatalf("expected rejection for %q", tc.input)
			}
			if !tc.reject && rej != nil {
				t.Fatalf("unexpected rejection for %q: %s", tc.input, rej.Detail)
			}
			if rej != nil && rej.Reason != ReasonFilenameInvalid {
				t.Fatalf("expected filename reason, got %s", rej.Reason)
			}
		})
	}
}
