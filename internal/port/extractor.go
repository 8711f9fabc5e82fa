package port

import (
	"context"

	"invoicedesk/internal/domain"
)

// Extractor turns an encoded document into raw invoice fields.
type Extractor interface {
	Extract(ctx context.Context, payload *domain.EncodedPayload) (*domain.RawFieldMap, error)
}
