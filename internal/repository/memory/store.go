// Package memory holds the in-process invoice/client repository that every read
// model is computed from.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoicedesk/internal/domain"
)

// Store owns the invoice and client collections. Every mutator runs to completion
// under the store lock, so client rollups are never observed half-updated.
type Store struct {
	mu sync.RWMutex

	invoices map[string]*domain.Invoice
	clients  map[string]*domain.Client
	// seq records insertion order.
	invoiceSeq map[string]uint64
	clientSeq  map[string]uint64
	next       uint64

	byClient map[string]map[string]struct{}
	byName   map[string]string

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

// Reset discards all invoices and clients.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.invoices = make(map[string]*domain.Invoice)
	s.clients = make(map[string]*domain.Client)
	s.invoiceSeq = make(map[string]uint64)
	s.clientSeq = make(map[string]uint64)
	s.byClient = make(map[string]map[string]struct{})
	s.byName = make(map[string]string)
	s.next = 0
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Upsert inserts or replaces an invoice by ID and returns the stored copy. The
// invoice is attached to the client named by ClientID when that client exists and
// the names agree; otherwise to the client with the same name, created if needed.
func (s *Store) Upsert(inv domain.Invoice) (domain.Invoice, error) {
	if strings.TrimSpace(inv.ID) == "" {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.upsertLocked(inv)
	return stored, nil
}

func (s *Store) upsertLocked(inv domain.Invoice) domain.Invoice {
	now := s.now().UTC()
	inv.Provenance = nil

	previous, exists := s.invoices[inv.ID]
	oldClient := ""
	if exists {
		oldClient = previous.ClientID
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = previous.CreatedAt
		}
	} else {
		s.next++
		s.invoiceSeq[inv.ID] = s.next
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	if inv.UpdatedAt.IsZero() || exists {
		inv.UpdatedAt = now
	}

	if c := s.resolveClientLocked(inv.ClientID, inv.ClientName, inv.ClientEmail); c != nil {
		inv.ClientID = c.ID
		inv.ClientName = c.Name
		if inv.ClientEmail == "" {
			inv.ClientEmail = c.Email
		}
	} else {
		inv.ClientID = ""
	}

	if oldClient != "" && oldClient != inv.ClientID {
		delete(s.byClient[oldClient], inv.ID)
	}
	if inv.ClientID != "" {
		if s.byClient[inv.ClientID] == nil {
			s.byClient[inv.ClientID] = make(map[string]struct{})
		}
		s.byClient[inv.ClientID][inv.ID] = struct{}{}
	}

	copied := inv
	s.invoices[inv.ID] = &copied

	if oldClient != "" && oldClient != inv.ClientID {
		s.recomputeLocked(oldClient)
	}
	if inv.ClientID != "" {
		s.recomputeLocked(inv.ClientID)
	}
	return copied
}

// resolveClientLocked finds or creates the client an invoice belongs to. It
// returns nil when the invoice names no client at all.
func (s *Store) resolveClientLocked(id, name, email string) *domain.Client {
	key := nameKey(name)
	if id != "" {
		if c, ok := s.clients[id]; ok && (key == "" || nameKey(c.Name) == key) {
			s.fillEmailLocked(c, email)
			return c
		}
	}
	if key != "" {
		if existing, ok := s.byName[key]; ok {
			c := s.clients[existing]
			s.fillEmailLocked(c, email)
			return c
		}
	}
	if key == "" {
		return nil
	}

	if id == "" || s.clients[id] != nil {
		id = uuid.New().String()
	}
	created := s.now().UTC()
	c := &domain.Client{ID: id, Name: strings.TrimSpace(name), Email: email, CreatedAt: &created}
	s.insertClientLocked(c)
	return c
}

func (s *Store) fillEmailLocked(c *domain.Client, email string) {
	if c.Email == "" && email != "" {
		c.Email = email
	}
}

func (s *Store) insertClientLocked(c *domain.Client) {
	s.next++
	s.clientSeq[c.ID] = s.next
	s.clients[c.ID] = c
	if key := nameKey(c.Name); key != "" {
		s.byName[key] = c.ID
	}
}

// recomputeLocked rebuilds a client's rollups from the invoices that reference it.
func (s *Store) recomputeLocked(clientID string) {
	c, ok := s.clients[clientID]
	if !ok {
		return
	}
	count, total, last := 0, 0.0, ""
	for id := range s.byClient[clientID] {
		inv := s.invoices[id]
		count++
		total += inv.Amount
		if inv.IssueDate > last {
			last = inv.IssueDate
		}
	}
	c.InvoiceCount = count
	c.TotalValue = total
	c.LastInvoiceDate = last
}

// Remove deletes an invoice, reporting whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return false
	}
	delete(s.invoices, id)
	delete(s.invoiceSeq, id)
	if inv.ClientID != "" {
		delete(s.byClient[inv.ClientID], id)
		s.recomputeLocked(inv.ClientID)
	}
	return true
}

// FindInvoice returns the invoice with the given ID.
func (s *Store) FindInvoice(id string) (domain.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return domain.Invoice{}, false
	}
	return *inv, true
}

// FindClient returns the client with the given ID.
func (s *Store) FindClient(id string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return domain.Client{}, false
	}
	return *c, true
}

// FindClientByName returns the client with the given name, ignoring case.
func (s *Store) FindClientByName(name string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[nameKey(name)]
	if !ok {
		return domain.Client{}, false
	}
	return *s.clients[id], true
}

// InvoicesForClient returns the client's invoices in insertion order.
func (s *Store) InvoicesForClient(clientID string) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byClient[clientID]))
	for id := range s.byClient[clientID] {
		ids = append(ids, id)
	}
	return s.invoicesByIDLocked(ids)
}

// PutClient inserts a client or updates an existing one. Renaming a client
// rewrites the client name carried on each of its invoices.
func (s *Store) PutClient(c domain.Client) (domain.Client, error) {
	key := nameKey(c.Name)
	if key == "" {
		return domain.Client{}, fmt.Errorf("memory.PutClient: %w", &domain.ValidationError{
			Reasons: []domain.FieldReason{{Field: "name", Reason: "is required"}},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, taken := s.byName[key]; taken && owner != c.ID {
		return domain.Client{}, domain.ErrDuplicateClientName
	}

	existing, ok := s.clients[c.ID]
	if !ok {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.CreatedAt == nil {
			created := s.now().UTC()
			c.CreatedAt = &created
		}
		c.InvoiceCount, c.TotalValue, c.LastInvoiceDate = 0, 0, ""
		stored := c
		s.insertClientLocked(&stored)
		s.recomputeLocked(stored.ID)
		return stored, nil
	}

	delete(s.byName, nameKey(existing.Name))
	existing.Name = strings.TrimSpace(c.Name)
	existing.Email = c.Email
	existing.Address = c.Address
	s.byName[key] = existing.ID
	for id := range s.byClient[existing.ID] {
		s.invoices[id].ClientName = existing.Name
	}
	return *existing, nil
}

// Invoices returns every invoice in insertion order.
func (s *Store) Invoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allInvoicesLocked()
}

// Clients returns every client in insertion order.
func (s *Store) Clients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allClientsLocked()
}

// View returns invoices and clients from a single point in time.
func (s *Store) View() ([]domain.Invoice, []domain.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allInvoicesLocked(), s.allClientsLocked()
}

func (s *Store) allInvoicesLocked() []domain.Invoice {
	ids := make([]string, 0, len(s.invoices))
	for id := range s.invoices {
		ids = append(ids, id)
	}
	return s.invoicesByIDLocked(ids)
}

func (s *Store) allClientsLocked() []domain.Client {
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.clientSeq[ids[i]] < s.clientSeq[ids[j]] })
	out := make([]domain.Client, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.clients[id])
	}
	return out
}

// Len returns the number of invoices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}

// ReplaceAll swaps the whole content for the given snapshot. Clients are loaded
// first so invoices can attach to them by ID.
func (s *Store) ReplaceAll(invoices []domain.Invoice, clients []domain.Client) error {
	for _, inv := range invoices {
		if strings.TrimSpace(inv.ID) == "" {
			return fmt.Errorf("memory.ReplaceAll: %w", domain.ErrInvalidID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	for _, c := range clients {
		key := nameKey(c.Name)
		if key == "" {
			continue
		}
		if _, taken := s.byName[key]; taken {
			continue
		}
		if c.ID == "" || s.clients[c.ID] != nil {
			c.ID = uuid.New().String()
		}
		c.InvoiceCount, c.TotalValue, c.LastInvoiceDate = 0, 0, ""
		stored := c
		s.insertClientLocked(&stored)
	}
	for _, inv := range invoices {
		s.upsertLocked(inv)
	}
	return nil
}

func (s *Store) invoicesByIDLocked(ids []string) []domain.Invoice {
	sort.Slice(ids, func(i, j int) bool { return s.invoiceSeq[ids[i]] < s.invoiceSeq[ids[j]] })
	out := make([]domain.Invoice, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.invoices[id])
	}
	return out
}
