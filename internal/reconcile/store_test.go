package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/reconcile"
	"invoicedesk/internal/repository/memory"
	"invoicedesk/mocks"
)

func validDraft() *domain.InvoiceDraft {
	d := domain.NewInvoiceDraft()
	d.InvoiceNumber = "INV-1001"
	d.ClientName = "Acme Corporation"
	d.IssueDate = "2024-03-01"
	d.DueDate = "2024-03-31"
	d.Amount = 250
	return d
}

func TestCommit_CreateClearsDraft(t *testing.T) {
	gw := new(mocks.MockGateway)
	gw.Echo("local-1")
	repo := memory.NewStore()

	var notified []domain.Invoice
	s := reconcile.NewStore(gw, repo, reconcile.WithListener(func(inv domain.Invoice) {
		notified = append(notified, inv)
	}))
	require.NoError(t, s.Load(validDraft()))

	inv, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local-1", inv.ID)
	assert.NotEmpty(t, inv.ClientID)

	_, ok := s.Current()
	assert.False(t, ok)
	stored, ok := repo.FindInvoice("local-1")
	require.True(t, ok)
	assert.Equal(t, 250.0, stored.Amount)
	require.Len(t, notified, 1)
	assert.Equal(t, "local-1", notified[0].ID)
	gw.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommit_RemoteUpdatesByExtractionID(t *testing.T) {
	gw := new(mocks.MockGateway)
	gw.On("Update", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ID == "42" && inv.Provenance != nil && inv.Provenance.ExtractionID == "42"
	})).Return(func(inv *domain.Invoice) *domain.Invoice {
		out := *inv
		return &out
	}, nil)
	repo := memory.NewStore()
	s := reconcile.NewStore(gw, repo, reconcile.WithRequireIdentifier(true))

	d := validDraft()
	d.ExtractionID = "42"
	require.NoError(t, s.Load(d))

	inv, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", inv.ID)
	assert.Nil(t, inv.Provenance)
	gw.AssertExpectations(t)
}

func TestCommit_RemoteMissingIdentifier(t *testing.T) {
	gw := new(mocks.MockGateway)
	s := reconcile.NewStore(gw, memory.NewStore(), reconcile.WithRequireIdentifier(true))
	require.NoError(t, s.Load(validDraft()))

	_, err := s.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrMissingIdentifier))

	_, ok := s.Current()
	assert.True(t, ok)
	gw.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommit_GatewayFailureKeepsDraft(t *testing.T) {
	gw := new(mocks.MockGateway)
	gw.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("remote.Create: %w", domain.ErrPersistenceFailed))
	repo := memory.NewStore()
	s := reconcile.NewStore(gw, repo)

	d := validDraft()
	require.NoError(t, s.Load(d))
	require.NoError(t, s.EditField("description", "Consulting"))

	_, err := s.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrPersistenceFailed))

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Consulting", current.Description)
	assert.Equal(t, 0, repo.Len())
}

func TestCommit_ValidationReasons(t *testing.T) {
	gw := new(mocks.MockGateway)
	s := reconcile.NewStore(gw, memory.NewStore())

	d := validDraft()
	d.ClientName = ""
	d.DueDate = "2024-02-01"
	require.NoError(t, s.Load(d))
	require.NoError(t, s.EditField("amount", "lots"))

	_, err := s.Commit(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))

	fields := make([]string, 0, len(verr.Reasons))
	for _, r := range verr.Reasons {
		fields = append(fields, r.Field)
	}
	assert.Equal(t, domain.FieldAmount, fields[0])
	assert.Contains(t, fields, domain.FieldClientName)
	assert.Contains(t, fields, domain.FieldDueDate)
	gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancel_LeavesRepositoryUnchanged(t *testing.T) {
	repo := memory.NewStore()
	_, err := repo.Upsert(domain.Invoice{ID: "inv-1", ClientName: "Globex Inc", Amount: 10, Status: domain.InvoiceStatusPaid})
	require.NoError(t, err)
	before := repo.Invoices()

	s := reconcile.NewStore(new(mocks.MockGateway), repo)
	require.NoError(t, s.Load(validDraft()))
	require.NoError(t, s.EditField("clientName", "Initech"))
	s.Cancel()

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, before, repo.Invoices())
	assert.Equal(t, "Globex Inc", before[0].ClientName)
}

func TestLoadFor_DropsStaleResponses(t *testing.T) {
	s := reconcile.NewStore(new(mocks.MockGateway), memory.NewStore())

	first := s.Begin()
	s.Cancel()
	assert.True(t, errors.Is(s.LoadFor(first, validDraft()), domain.ErrStaleResponse))
	_, ok := s.Current()
	assert.False(t, ok)

	older := s.Begin()
	newer := s.Begin()
	assert.True(t, errors.Is(s.LoadFor(older, validDraft()), domain.ErrStaleResponse))
	require.NoError(t, s.LoadFor(newer, validDraft()))

	pending := s.Begin()
	require.NoError(t, s.Load(validDraft()))
	assert.True(t, errors.Is(s.LoadFor(pending, validDraft()), domain.ErrStaleResponse))
}

func TestEditField_Errors(t *testing.T) {
	s := reconcile.NewStore(new(mocks.MockGateway), memory.NewStore())

	assert.True(t, errors.Is(s.EditField("amount", "1"), domain.ErrNoDraft))
	_, err := s.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNoDraft))

	require.NoError(t, s.Load(nil))
	assert.True(t, errors.Is(s.EditField("colour", "red"), domain.ErrUnknownField))

	require.NoError(t, s.EditField("amount", "10"))
	require.NoError(t, s.EditField("amount", "20"))
	d, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 20.0, d.Amount)
}

func TestCommit_InProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gw := new(mocks.MockGateway)
	gw.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&domain.Invoice{ID: "local-9", ClientName: "Acme Corporation", Status: domain.InvoiceStatusPending}, nil)

	s := reconcile.NewStore(gw, memory.NewStore())
	require.NoError(t, s.Load(validDraft()))

	done := make(chan error, 1)
	go func() {
		_, err := s.Commit(context.Background())
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("commit never reached the gateway")
	}

	_, err := s.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCommitInProgress))
	assert.True(t, errors.Is(s.Load(validDraft()), domain.ErrCommitInProgress))
	assert.True(t, errors.Is(s.EditField("amount", "5"), domain.ErrCommitInProgress))

	close(release)
	require.NoError(t, <-done)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestCommit_CancelledDuringSaveDropsResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gw := new(mocks.MockGateway)
	gw.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&domain.Invoice{ID: "local-7", ClientName: "Acme Corporation", Amount: 250, Status: domain.InvoiceStatusPending}, nil)

	repo := memory.NewStore()
	notified := 0
	s := reconcile.NewStore(gw, repo, reconcile.WithListener(func(domain.Invoice) { notified++ }))
	require.NoError(t, s.Load(validDraft()))

	done := make(chan error, 1)
	go func() {
		_, err := s.Commit(context.Background())
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("commit never reached the gateway")
	}
	s.Cancel()
	close(release)

	err := <-done
	assert.True(t, errors.Is(err, domain.ErrStaleResponse))
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.Clients())
	assert.Equal(t, 0, notified)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestCommit_ReusesExistingClient(t *testing.T) {
	repo := memory.NewStore()
	client, err := repo.PutClient(domain.Client{Name: "Acme Corporation", Email: "billing@acme.com"})
	require.NoError(t, err)

	gw := new(mocks.MockGateway)
	gw.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ClientID == client.ID
	})).Return(&domain.Invoice{ID: "local-2", ClientName: "Acme Corporation", Amount: 250, Status: domain.InvoiceStatusPending}, nil)

	s := reconcile.NewStore(gw, repo)
	d := validDraft()
	d.ClientName = "acme corporation"
	require.NoError(t, s.Load(d))

	inv, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.ID, inv.ClientID)
	assert.Len(t, repo.Clients(), 1)
	gw.AssertExpectations(t)
}
