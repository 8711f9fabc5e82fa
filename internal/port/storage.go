package port

import (
	"context"
	"io"
	"time"
)

// ArchivedDocument is an uploaded invoice document on its way to the archive.
type ArchivedDocument struct {
	Bucket    string
	Key       string
	MediaType string
	Body      io.Reader
	Size      int64
}

// DocumentArchive keeps copies of uploaded documents so the reviewer can open
// the original next to the draft.
type DocumentArchive interface {
	Put(ctx context.Context, doc ArchivedDocument) error
	// Remove drops a document whose draft never loaded.
	Remove(ctx context.Context, bucket, key string) error
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
