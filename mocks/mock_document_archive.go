package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/port"
)

// MockDocumentArchive is a mock implementation of port.DocumentArchive.
type MockDocumentArchive struct {
	mock.Mock
}

func (m *MockDocumentArchive) Put(ctx context.Context, doc port.ArchivedDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentArchive) Remove(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockDocumentArchive) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, ttl)
	return args.String(0), args.Error(1)
}
