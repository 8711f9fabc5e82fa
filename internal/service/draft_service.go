package service

import (
	"context"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/reconcile"
)

// DraftService exposes the draft under review.
type DraftService interface {
	Current(ctx context.Context) (*domain.InvoiceDraft, error)
	Edit(ctx context.Context, field, value string) (*domain.InvoiceDraft, error)
	Commit(ctx context.Context) (*domain.Invoice, error)
	Cancel(ctx context.Context)
}

type draftService struct {
	store *reconcile.Store
}

// NewDraftService creates a new DraftService implementation.
func NewDraftService(store *reconcile.Store) DraftService {
	return &draftService{store: store}
}

func (s *draftService) Current(_ context.Context) (*domain.InvoiceDraft, error) {
	d, ok := s.store.Current()
	if !ok {
		return nil, domain.ErrNoDraft
	}
	return d, nil
}

func (s *draftService) Edit(ctx context.Context, field, value string) (*domain.InvoiceDraft, error) {
	if err := s.store.EditField(field, value); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

func (s *draftService) Commit(ctx context.Context) (*domain.Invoice, error) {
	return s.store.Commit(ctx)
}

func (s *draftService) Cancel(_ context.Context) {
	s.store.Cancel()
}
