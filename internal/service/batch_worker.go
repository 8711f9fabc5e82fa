package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/encoder"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/normalizer"
	"invoicedesk/internal/port"
	"invoicedesk/internal/reconcile"
)

// BatchConfig holds settings for the batch ingest worker.
type BatchConfig struct {
	Concurrency int
	Commit      bool
}

// Document is one input to a batch run.
type Document struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// BatchResult is the outcome for one document, in input order.
type BatchResult struct {
	Name    string
	Draft   *domain.InvoiceDraft
	Invoice *domain.Invoice
	Err     error
}

// BatchIngestWorker extracts several documents concurrently, then reconciles
// them one at a time through the single-draft store.
type BatchIngestWorker struct {
	encoder   *encoder.Encoder
	extractor port.Extractor
	store     *reconcile.Store
	cfg       BatchConfig
	log       zerolog.Logger
}

// NewBatchIngestWorker creates a new BatchIngestWorker.
func NewBatchIngestWorker(enc *encoder.Encoder, extractor port.Extractor, store *reconcile.Store, cfg BatchConfig) *BatchIngestWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &BatchIngestWorker{
		encoder:   enc,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
		log:       logger.WithComponent("batch"),
	}
}

// Run processes docs and blocks until every extraction has finished. With
// Commit set, each extracted draft is loaded and committed in input order; a
// draft that fails to commit is cancelled and reported.
func (w *BatchIngestWorker) Run(ctx context.Context, docs []Document) []BatchResult {
	results := make([]BatchResult, len(docs))
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	w.log.Info().Int("documents", len(docs)).Int("concurrency", w.cfg.Concurrency).Msg("batch started")

	for i := range docs {
		results[i].Name = docs[i].Name
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i].Draft, results[i].Err = w.extract(ctx, docs[i])
		}(i)
	}
	wg.Wait()

	if w.cfg.Commit {
		for i := range results {
			if results[i].Err != nil {
				continue
			}
			results[i].Invoice, results[i].Err = w.commit(ctx, results[i].Draft)
		}
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
			w.log.Warn().Err(results[i].Err).Str("document", results[i].Name).Msg("document failed")
		}
	}
	w.log.Info().Int("documents", len(docs)).Int("failed", failed).Msg("batch finished")
	return results
}

func (w *BatchIngestWorker) extract(ctx context.Context, doc Document) (*domain.InvoiceDraft, error) {
	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("batch.Open: %w", err)
	}
	defer rc.Close()

	payload, err := w.encoder.Encode(doc.Name, rc)
	if err != nil {
		return nil, fmt.Errorf("batch.Encode: %w", err)
	}
	raw, err := w.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("batch.Extract: %w", err)
	}
	draft := normalizer.Normalize(raw)
	draft.FileKind = payload.Kind
	draft.SourceName = doc.Name
	return draft, nil
}

func (w *BatchIngestWorker) commit(ctx context.Context, draft *domain.InvoiceDraft) (*domain.Invoice, error) {
	if err := w.store.Load(draft); err != nil {
		return nil, err
	}
	inv, err := w.store.Commit(ctx)
	if err != nil {
		w.store.Cancel()
		return nil, err
	}
	return inv, nil
}
