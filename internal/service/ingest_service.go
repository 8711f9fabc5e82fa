package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/encoder"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/normalizer"
	"invoicedesk/internal/port"
	"invoicedesk/internal/reconcile"
	"invoicedesk/internal/storage/s3"
)

// documentURLTTL is how long a signed link to the archived upload stays valid.
const documentURLTTL = 15 * time.Minute

// IngestService turns an uploaded document into the draft under review.
type IngestService interface {
	Ingest(ctx context.Context, name string, r io.Reader) (*domain.InvoiceDraft, error)
	DocumentURL(ctx context.Context) (string, error)
}

// Archive stores uploaded documents. A nil Archive disables archiving.
type Archive struct {
	Storage port.DocumentArchive
	Bucket  string
}

type ingestService struct {
	encoder   *encoder.Encoder
	extractor port.Extractor
	store     *reconcile.Store
	archive   *Archive
	now       func() time.Time
	log       zerolog.Logger
}

// NewIngestService creates a new IngestService implementation.
func NewIngestService(enc *encoder.Encoder, extractor port.Extractor, store *reconcile.Store, archive *Archive) IngestService {
	if archive != nil && archive.Storage == nil {
		archive = nil
	}
	return &ingestService{
		encoder:   enc,
		extractor: extractor,
		store:     store,
		archive:   archive,
		now:       time.Now,
		log:       logger.WithComponent("ingest"),
	}
}

// Ingest runs encode, extract and normalize, then loads the result as the
// current draft. A failure at any step leaves the store as it was. The draft is
// dropped with domain.ErrStaleResponse if the upload was cancelled or
// superseded while extraction ran.
func (s *ingestService) Ingest(ctx context.Context, name string, r io.Reader) (*domain.InvoiceDraft, error) {
	ticket := s.store.Begin()

	payload, err := s.encoder.Encode(name, r)
	if err != nil {
		return nil, fmt.Errorf("ingest.Encode: %w", err)
	}

	archiveKey := s.archiveDocument(ctx, payload)

	raw, err := s.extractor.Extract(ctx, payload)
	if err != nil {
		s.log.Warn().Err(err).Str("document", name).Msg("extraction failed")
		s.discardArchive(ctx, archiveKey)
		return nil, fmt.Errorf("ingest.Extract: %w", err)
	}

	draft := normalizer.Normalize(raw)
	draft.FileKind = payload.Kind
	draft.SourceName = name
	draft.ArchiveKey = archiveKey

	if err := s.store.LoadFor(ticket, draft); err != nil {
		s.log.Info().Err(err).Str("document", name).Msg("extraction result dropped")
		s.discardArchive(ctx, archiveKey)
		return nil, fmt.Errorf("ingest.Load: %w", err)
	}

	event := s.log.Info().
		Str("document", name).
		Str("kind", string(payload.Kind)).
		Str("invoice_id", draft.ExtractionID)
	if raw != nil {
		event = event.Int("unknown_keys", len(raw.Extra))
	}
	event.Msg("draft loaded")
	return draft, nil
}

// archiveDocument copies the upload to object storage. Archiving is best
// effort; a failure is logged and the upload continues without a key.
func (s *ingestService) archiveDocument(ctx context.Context, payload *domain.EncodedPayload) string {
	if s.archive == nil {
		return ""
	}
	key := s3.ArchiveKey(payload.Name, s.now())
	err := s.archive.Storage.Put(ctx, port.ArchivedDocument{
		Bucket:    s.archive.Bucket,
		Key:       key,
		MediaType: payload.MediaType,
		Body:      bytes.NewReader(payload.Data),
		Size:      int64(len(payload.Data)),
	})
	if err != nil {
		s.log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrArchiveUploadFailed, err)).
			Str("key", key).Msg("archiving upload failed")
		return ""
	}
	return key
}

// discardArchive removes an archived upload whose draft was never loaded.
// Failures are logged only.
func (s *ingestService) discardArchive(ctx context.Context, key string) {
	if s.archive == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.archive.Storage.Remove(ctx, s.archive.Bucket, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("removing orphaned upload failed")
		return
	}
	s.log.Debug().Str("key", key).Msg("orphaned upload removed")
}

// DocumentURL returns a short-lived link to the archived document of the
// current draft.
func (s *ingestService) DocumentURL(ctx context.Context) (string, error) {
	draft, ok := s.store.Current()
	if !ok {
		return "", domain.ErrNoDraft
	}
	if s.archive == nil || draft.ArchiveKey == "" {
		return "", domain.ErrNotFound
	}
	url, err := s.archive.Storage.SignedURL(ctx, s.archive.Bucket, draft.ArchiveKey, documentURLTTL)
	if err != nil {
		return "", fmt.Errorf("ingest.DocumentURL: %w", err)
	}
	return url, nil
}
