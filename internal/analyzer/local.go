package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Local is a development stand-in for the external analysis pipeline. It
// extracts the plain text of the PDF and reports basic document facts so the
// full upload-to-completed lifecycle can run without the real analyzer.
type Local struct{}

// NewLocal constructs the stub analyzer.
func NewLocal() *Local {
	return &Local{}
}

// Analyze implements Analyzer.
func (l *Local) Analyze(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	text := extractText(reader)

	return Result{
		Results: map[string]any{
			"analyzer":    "local-stub",
			"page_count":  reader.NumPage(),
			"byte_size":   len(data),
			"text_length": len(text),
			"mime_type":   mimeType,
		},
		Confidence:    0.5,
		ExtractedText: text,
	}, nil
}

// extractText is best effort; documents without text streams yield an empty
// string. The pdf library panics on some malformed content streams, so the
// recover keeps extraction failures from killing the analysis.
func extractText(reader *pdf.Reader) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

var _ Analyzer = (*Local)(nil)
