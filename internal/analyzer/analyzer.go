// Package analyzer defines the boundary to the external document analysis
// pipeline. The ingestion core never inspects its reasoning; it only records
// the outcome through lifecycle transitions.
package analyzer

import "context"

// Result is what a completed analysis yields.
type Result struct {
	// Results is the opaque structured payload stored on the document.
	Results map[string]any

	// Confidence is the analyzer's confidence in [0, 1].
	Confidence float64

	// ExtractedText is the optional plain-text rendering of the document.
	ExtractedText string
}

// Analyzer produces analysis results for validated document bytes. A returned
// error is recorded as the document's processing failure.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, mimeType string) (Result, error)
}
