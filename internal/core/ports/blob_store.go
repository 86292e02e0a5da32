package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// BlobStore stores an artifact under a random name and returns its permanent
// public URL.
type BlobStore interface {
	Store(ctx context.Context, upload domain.Upload) (string, error)
}

// IdempotencyStore maps client idempotency keys to the submission they created.
//
// Reserve claims key atomically. When the key is already claimed it returns
// reserved=false with the submission id stored under it, or an empty id while
// the request holding the claim has not completed yet.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (reserved bool, submissionID string, err error)
	// Complete binds a reserved key to the submission it created.
	Complete(ctx context.Context, key, submissionID string) error
	// Release drops a reservation whose request failed so the client can retry.
	Release(ctx context.Context, key string) error
}
