// Package reconcile holds the single invoice draft under review and commits it
// through the configured gateway.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/port"
	"invoicedesk/internal/validator"
)

// Ticket identifies one extraction in flight. A response arriving with an
// outdated ticket is dropped.
type Ticket struct {
	seq uint64
}

// Listener is notified after every successful commit.
type Listener func(inv domain.Invoice)

// Option configures a Store.
type Option func(*Store)

// WithRequireIdentifier makes Commit update the record named by the draft's
// extraction id instead of creating a new one.
func WithRequireIdentifier(require bool) Option {
	return func(s *Store) { s.requireIdentifier = require }
}

// WithRegistry replaces the default commit rules.
func WithRegistry(reg *validator.Registry) Option {
	return func(s *Store) { s.rules = reg }
}

// WithListener registers a commit listener.
func WithListener(l Listener) Option {
	return func(s *Store) { s.listeners = append(s.listeners, l) }
}

// Store is the reconciliation store. Every method is safe for concurrent use;
// gateway calls run outside the lock.
type Store struct {
	mu         sync.Mutex
	draft      *domain.InvoiceDraft
	uploadSeq  uint64
	draftSeq   uint64
	committing bool

	gateway           port.Gateway
	repo              port.InvoiceRepository
	rules             *validator.Registry
	requireIdentifier bool
	listeners         []Listener
	log               zerolog.Logger
}

// NewStore creates an empty store committing to gw and recording results in repo.
func NewStore(gw port.Gateway, repo port.InvoiceRepository, opts ...Option) *Store {
	s := &Store{
		gateway: gw,
		repo:    repo,
		rules:   validator.DefaultRegistry(),
		log:     logger.WithComponent("reconcile"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddListener registers l for future commits.
func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Begin starts an extraction and invalidates any earlier ticket.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadSeq++
	return Ticket{seq: s.uploadSeq}
}

// Load replaces the current draft, discarding uncommitted edits.
func (s *Store) Load(d *domain.InvoiceDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committing {
		return domain.ErrCommitInProgress
	}
	s.uploadSeq++
	s.replaceLocked(d)
	return nil
}

// LoadFor loads the draft produced for t, unless a later Begin, Load or Cancel
// has superseded it.
func (s *Store) LoadFor(t Ticket, d *domain.InvoiceDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq != s.uploadSeq {
		return domain.ErrStaleResponse
	}
	if s.committing {
		return domain.ErrCommitInProgress
	}
	s.replaceLocked(d)
	return nil
}

func (s *Store) replaceLocked(d *domain.InvoiceDraft) {
	if d == nil {
		d = domain.NewInvoiceDraft()
	}
	s.draft = d.Clone()
	s.draftSeq++
}

// EditField sets one draft field. Later edits to the same field win.
func (s *Store) EditField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return domain.ErrNoDraft
	}
	if s.committing {
		return domain.ErrCommitInProgress
	}
	return s.draft.Set(name, value)
}

// Current returns a copy of the draft.
func (s *Store) Current() (*domain.InvoiceDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, false
	}
	return s.draft.Clone(), true
}

// Cancel clears the draft and drops any extraction or save response still in
// flight.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
	s.uploadSeq++
	s.draftSeq++
}

// Commit validates the draft and saves it. On success the saved invoice is
// recorded in the repository and the draft is cleared; on failure the draft is
// left as it was. If the draft is cancelled while the gateway call is in flight,
// the response is not recorded and ErrStaleResponse is returned.
func (s *Store) Commit(ctx context.Context) (*domain.Invoice, error) {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoDraft
	}
	if s.committing {
		s.mu.Unlock()
		return nil, domain.ErrCommitInProgress
	}
	snapshot := s.draft.Clone()
	generation := s.draftSeq
	s.committing = true
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.committing = false
		s.mu.Unlock()
	}()

	inv := snapshot.ToInvoice()
	if s.requireIdentifier {
		if snapshot.ExtractionID == "" {
			return nil, domain.ErrMissingIdentifier
		}
		inv.ID = snapshot.ExtractionID
	}
	if err := validator.Check(s.rules, inv, snapshot.Invalid); err != nil {
		return nil, err
	}
	if c, ok := s.repo.FindClientByName(inv.ClientName); ok {
		inv.ClientID = c.ID
	}

	var (
		saved *domain.Invoice
		err   error
	)
	if s.requireIdentifier {
		saved, err = s.gateway.Update(ctx, inv)
	} else {
		saved, err = s.gateway.Create(ctx, inv)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("commit failed, draft kept")
		return nil, fmt.Errorf("reconcile.Commit: %w", err)
	}
	if saved.ClientID == "" {
		saved.ClientID = inv.ClientID
	}

	s.mu.Lock()
	if s.draftSeq != generation {
		s.mu.Unlock()
		s.log.Warn().Str("invoice_id", saved.ID).Msg("draft cancelled during commit, save response dropped")
		return nil, fmt.Errorf("reconcile.Commit: %w", domain.ErrStaleResponse)
	}
	stored, err := s.repo.Upsert(*saved)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("reconcile.Commit: %w: %w", domain.ErrPersistenceFailed, err)
	}
	s.draft = nil
	s.draftSeq++
	s.mu.Unlock()

	s.log.Info().Str("invoice_id", stored.ID).Str("client", stored.ClientName).Msg("invoice committed")
	for _, l := range listeners {
		l(stored)
	}
	return &stored, nil
}
