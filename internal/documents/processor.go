package documents

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/analyzer"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/telemetry"
)

// Processor runs document analysis jobs with a bounded level of concurrency.
// Dispatch never blocks the caller; the semaphore caps how many analyzer runs
// are in flight at once.
type Processor struct {
	Service  *Service
	Analyzer analyzer.Analyzer

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewProcessor builds a processor with the given concurrency bound. A bound
// of zero or less falls back to a single worker.
func NewProcessor(svc *Service, a analyzer.Analyzer, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		Service:  svc,
		Analyzer: a,
		sem:      make(chan struct{}, workers),
	}
}

// Dispatch transitions the document into processing and schedules the
// analysis to run in the background. The transition error, if any, is
// returned synchronously so the caller can surface it.
func (p *Processor) Dispatch(ctx context.Context, userID, id string) (Document, error) {
	doc, err := p.Service.StartProcessing(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		// The request context dies with the HTTP response; analysis keeps
		// its own lifetime.
		p.run(context.Background(), doc)
	}()

	return doc, nil
}

// Process runs the analysis synchronously. Used by the worker entrypoint and
// tests.
func (p *Processor) Process(ctx context.Context, userID, id string) (Document, error) {
	doc, err := p.Service.StartProcessing(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	p.run(ctx, doc)
	return p.Service.Get(ctx, userID, id)
}

// Wait blocks until all dispatched jobs have finished. Called on shutdown.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) run(ctx context.Context, doc Document) {
	result, err := p.analyze(ctx, doc)
	if err != nil {
		telemetry.Error("documents.process.failed", map[string]any{
			"document_id": doc.ID,
			"user_id":     doc.UserID,
			"err":         err.Error(),
		})
		if _, failErr := p.Service.FailProcessing(ctx, doc.UserID, doc.ID, err.Error()); failErr != nil {
			telemetry.Error("documents.process.record_failure", map[string]any{
				"document_id": doc.ID,
				"err":         failErr.Error(),
			})
		}
		return
	}

	if _, err := p.Service.CompleteProcessing(ctx, doc.UserID, doc.ID, result.Results, result.Confidence, result.ExtractedText); err != nil {
		telemetry.Error("documents.process.record_completion", map[string]any{
			"document_id": doc.ID,
			"err":         err.Error(),
		})
		return
	}

	telemetry.Info("documents.process.completed", map[string]any{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"confidence":  result.Confidence,
	})
}

func (p *Processor) analyze(ctx context.Context, doc Document) (analyzer.Result, error) {
	rc, err := p.Service.OpenContent(ctx, doc)
	if err != nil {
		return analyzer.Result{}, fmt.Errorf("open stored content: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return analyzer.Result{}, fmt.Errorf("read stored content: %w", err)
	}

	return p.Analyzer.Analyze(ctx, data, doc.MimeType)
}
