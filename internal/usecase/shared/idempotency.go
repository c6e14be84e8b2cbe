package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type IdempotencyClaim struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	ExpiresAt   time.Time
}

type IdempotencyRecord struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	Status      string
	ResultID    *uuid.UUID
	Response    []byte
	ExpiresAt   time.Time
}

type IdempotencyRepository interface {
	// Claim inserts a processing record, or takes over an expired one. It reports false
	// when a live record for the key already exists.
	Claim(ctx context.Context, c IdempotencyClaim, now time.Time) (bool, error)
	FindForUpdate(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	Complete(ctx context.Context, key, userID, resultID uuid.UUID, response []byte, now time.Time) error
	// Release drops a processing record so the client may retry with the same key
	Release(ctx context.Context, key, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
