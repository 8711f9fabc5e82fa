// Package local persists invoices in a bbolt file for offline and demo use. It
// never talks to a backend.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"invoicedesk/internal/domain"
)

// IDPrefix marks identifiers fabricated by local persistence.
const IDPrefix = "local-"

const bucketInvoices = "invoices"

// Gateway implements port.Gateway on top of bbolt.
type Gateway struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (creating if needed) the bbolt file at path.
func Open(path string) (*Gateway, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("local.Open: failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketInvoices))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local.Open: failed to create bucket: %w", err)
	}
	return &Gateway{db: db, now: time.Now}, nil
}

// Close closes the database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Create stores inv under a fresh local- identifier. Any ID on inv is ignored.
func (g *Gateway) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	saved := *inv
	saved.Provenance = nil
	saved.ID = IDPrefix + uuid.New().String()
	now := g.now().UTC()
	saved.CreatedAt = now
	saved.UpdatedAt = now

	if err := g.put(&saved, false); err != nil {
		return nil, fmt.Errorf("local.Create: %w", err)
	}
	return &saved, nil
}

// Update replaces an existing record. Unknown ids yield domain.ErrNotFound.
func (g *Gateway) Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv.ID == "" {
		return nil, domain.ErrMissingIdentifier
	}
	saved := *inv
	saved.Provenance = nil
	saved.UpdatedAt = g.now().UTC()

	if err := g.put(&saved, true); err != nil {
		return nil, fmt.Errorf("local.Update: %w", err)
	}
	return &saved, nil
}

func (g *Gateway) put(inv *domain.Invoice, mustExist bool) error {
	return g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInvoices))
		existing := b.Get([]byte(inv.ID))
		if mustExist {
			if existing == nil {
				return domain.ErrNotFound
			}
			var prev domain.Invoice
			if err := json.Unmarshal(existing, &prev); err == nil && inv.CreatedAt.IsZero() {
				inv.CreatedAt = prev.CreatedAt
			}
		}
		data, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("failed to marshal invoice: %w", err)
		}
		if err := b.Put([]byte(inv.ID), data); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
		}
		return nil
	})
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketInvoices))
		if b.Get([]byte(id)) == nil {
			return domain.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("local.Delete: %w", err)
	}
	return nil
}

// List returns every stored invoice, oldest first.
func (g *Gateway) List(ctx context.Context) ([]domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Invoice
	err := g.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketInvoices)).ForEach(func(_, v []byte) error {
			var inv domain.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return fmt.Errorf("failed to unmarshal invoice: %w", err)
			}
			out = append(out, inv)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("local.List: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Ping reports whether the database is open.
func (g *Gateway) Ping(_ context.Context) error {
	return g.db.View(func(*bolt.Tx) error { return nil })
}
