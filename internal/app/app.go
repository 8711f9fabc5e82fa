// Package app assembles the invoicedesk services from configuration. The HTTP
// server and the invoicectl CLI share it.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/encoder"
	"invoicedesk/internal/extraction"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/persistence"
	"invoicedesk/internal/port"
	"invoicedesk/internal/reconcile"
	"invoicedesk/internal/repository/memory"
	"invoicedesk/internal/router"
	"invoicedesk/internal/service"
	"invoicedesk/internal/stats"
	s3storage "invoicedesk/internal/storage/s3"
)

// App holds the wired services of one process.
type App struct {
	Config *config.Config

	Repo     *memory.Store
	Store    *reconcile.Store
	Ingest   service.IngestService
	Drafts   service.DraftService
	Invoices service.InvoiceService
	Stats    service.StatsService

	encoder   *encoder.Encoder
	extractor port.Extractor
	handle    *persistence.Handle
}

// New wires every service for cfg. The caller owns the returned App and must
// Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	b := backend.NewClient(&cfg.Backend)

	extractor, err := extraction.NewClient(b)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extraction client: %w", err)
	}

	handle, err := persistence.Open(cfg, b)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s persistence: %w", cfg.Persistence.Mode, err)
	}

	repo := memory.NewStore()

	var provider port.StatsProvider
	switch cfg.Stats.Source {
	case config.StatsSourceRemote:
		provider = stats.NewRemoteProvider(b, cfg.Stats.CacheTTL)
	default:
		provider = stats.NewLocalProvider(stats.NewAggregator(repo))
	}
	statsSvc := service.NewStatsService(provider, cfg.Stats)

	store := reconcile.NewStore(handle.Gateway, repo,
		reconcile.WithRequireIdentifier(cfg.Persistence.RequireIdentifier()),
		reconcile.WithListener(func(_ domain.Invoice) { statsSvc.Invalidate() }),
	)

	var archive *service.Archive
	if cfg.S3.Enabled {
		s3c, err := s3storage.NewClient(ctx, &cfg.S3)
		if err != nil {
			_ = handle.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		archive = &service.Archive{Storage: s3c, Bucket: cfg.S3.Bucket}
	}

	enc := encoder.New(cfg.Upload.MaxBytes())

	return &App{
		Config:    cfg,
		Repo:      repo,
		Store:     store,
		Ingest:    service.NewIngestService(enc, extractor, store, archive),
		Drafts:    service.NewDraftService(store),
		Invoices:  service.NewInvoiceService(handle.Gateway, repo, nil, statsSvc.Invalidate),
		Stats:     statsSvc,
		encoder:   enc,
		extractor: extractor,
		handle:    handle,
	}, nil
}

// NewBatchWorker returns a batch ingester sharing the app's draft store.
func (a *App) NewBatchWorker(commit bool) *service.BatchIngestWorker {
	return service.NewBatchIngestWorker(a.encoder, a.extractor, a.Store, service.BatchConfig{
		Concurrency: a.Config.Ingest.Concurrency,
		Commit:      commit,
	})
}

// Sync loads the repository from the persistence store. A failure leaves the
// repository empty and is logged rather than returned so that the process can
// start while the backend is down.
func (a *App) Sync(ctx context.Context) {
	log := logger.WithComponent("app")
	result, err := a.Invoices.Sync(ctx)
	if err != nil {
		log.Warn().Err(err).Str("mode", a.handle.Mode).Msg("initial sync failed")
		return
	}
	log.Info().
		Str("mode", a.handle.Mode).
		Int("invoices", result.Invoices).
		Int("clients", result.Clients).
		Msg("repository synced")
}

// Router builds the HTTP engine over the app's services.
func (a *App) Router() *gin.Engine {
	return router.Setup(a.Config, router.Handlers{
		Health:  handler.NewHealthHandler(a.handle),
		Upload:  handler.NewUploadHandler(a.Ingest, a.Config.Upload.MaxBytes()),
		Draft:   handler.NewDraftHandler(a.Drafts),
		Invoice: handler.NewInvoiceHandler(a.Invoices),
		Stats:   handler.NewStatsHandler(a.Stats),
	})
}

// Close releases the persistence store.
func (a *App) Close() error {
	return a.handle.Close()
}
