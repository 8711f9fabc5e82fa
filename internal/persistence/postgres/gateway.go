// Package postgres persists committed invoices in PostgreSQL. The schema lives
// in db/migrations and is applied with cmd/migrate.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicedesk/internal/domain"
)

const selectColumns = `id, invoice_number, client_id, client_name, client_email,
	issue_date, due_date, amount::float8 AS amount, status, created_at, updated_at`

// Gateway implements port.Gateway on an invoices table.
type Gateway struct {
	db *sqlx.DB
}

// NewGateway creates a PostgreSQL-backed gateway.
func NewGateway(db *sqlx.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	saved := *inv
	saved.Provenance = nil
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	saved.CreatedAt = now
	saved.UpdatedAt = now

	query := `INSERT INTO invoices (id, invoice_number, client_id, client_name, client_email,
		issue_date, due_date, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := g.db.ExecContext(ctx, query,
		saved.ID, saved.InvoiceNumber, saved.ClientID, saved.ClientName, saved.ClientEmail,
		saved.IssueDate, saved.DueDate, saved.Amount, saved.Status, saved.CreatedAt, saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres.Create: %w: %w", domain.ErrPersistenceFailed, err)
	}
	return &saved, nil
}

func (g *Gateway) Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if inv.ID == "" {
		return nil, domain.ErrMissingIdentifier
	}
	saved := *inv
	saved.Provenance = nil
	saved.UpdatedAt = time.Now().UTC()

	query := `UPDATE invoices SET invoice_number = $1, client_id = $2, client_name = $3,
		client_email = $4, issue_date = $5, due_date = $6, amount = $7, status = $8, updated_at = $9
		WHERE id = $10
		RETURNING created_at`

	err := g.db.QueryRowxContext(ctx, query,
		saved.InvoiceNumber, saved.ClientID, saved.ClientName, saved.ClientEmail,
		saved.IssueDate, saved.DueDate, saved.Amount, saved.Status, saved.UpdatedAt, saved.ID,
	).Scan(&saved.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres.Update: %w: %w", domain.ErrPersistenceFailed, err)
	}
	return &saved, nil
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	result, err := g.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres.Delete: %w: %w", domain.ErrPersistenceFailed, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *Gateway) List(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := g.db.SelectContext(ctx, &invoices,
		"SELECT "+selectColumns+" FROM invoices ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("postgres.List: %w: %w", domain.ErrPersistenceFailed, err)
	}
	return invoices, nil
}

// Ping checks the connection.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}
