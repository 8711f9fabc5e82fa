package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/persistence/postgres"
)

// Runs against a disposable database named by INVOICEDESK_TEST_DSN.
func setupGateway(t *testing.T) *postgres.Gateway {
	t.Helper()
	dsn := os.Getenv("INVOICEDESK_TEST_DSN")
	if dsn == "" {
		t.Skip("INVOICEDESK_TEST_DSN not set")
	}

	m, err := migrate.New("file://../../../db/migrations", dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	_, _ = m.Close()

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec("TRUNCATE invoices")
	require.NoError(t, err)
	return postgres.NewGateway(db)
}

func TestGateway_Lifecycle(t *testing.T) {
	g := setupGateway(t)
	ctx := context.Background()

	created, err := g.Create(ctx, &domain.Invoice{
		InvoiceNumber: "INV-1000",
		ClientName:    "Acme Corporation",
		IssueDate:     "2024-01-01",
		DueDate:       "2024-01-31",
		Amount:        125.5,
		Status:        domain.InvoiceStatusPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Status = domain.InvoiceStatusPaid
	updated, err := g.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)

	list, err := g.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 125.5, list[0].Amount)
	assert.Equal(t, "2024-01-31", list[0].DueDate)

	require.NoError(t, g.Delete(ctx, created.ID))
	assert.True(t, errors.Is(g.Delete(ctx, created.ID), domain.ErrNotFound))
	_, err = g.Update(ctx, created)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
