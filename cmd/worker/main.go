package main

// Re-run analysis for a stored document:
//   go run ./cmd/worker -user <user-id> -doc <document-id>

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/bootstrap"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/documents"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/config"
)

func main() {
	userID := flag.String("user", "", "owner of the document")
	docID := flag.String("doc", "", "document id to analyze")
	flag.Parse()

	if strings.TrimSpace(*userID) == "" || strings.TrimSpace(*docID) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := app.Processor.Process(ctx, *userID, *docID)
	if err != nil {
		log.Fatalf("process document: %v", err)
	}

	log.Printf("document %s finished with status %s", doc.ID, doc.Status)
	if doc.Status == documents.StatusFailed {
		os.Exit(1)
	}
}
