package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"tourbook/internal/infra"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	idempotencyTTL = 24 * time.Hour

	EndpointCreateBooking = "POST /bookings"
	EndpointCreatePayment = "POST /payments/:gateway/create"
)

var (
	ErrIdempotencyInProgress = errs.New("a request with this idempotency key is still in progress")
	ErrIdempotencyKeyReused  = errs.New("idempotency key was already used for a different request")
)

// idempotentRequest binds a client supplied key to the caller and the request body
type idempotentRequest struct {
	key      uuid.UUID
	userID   uuid.UUID
	endpoint string
	hash     string
}

// newIdempotentRequest returns nil when the client sent no key
func newIdempotentRequest(key *uuid.UUID, userID uuid.UUID, endpoint string, body any) (*idempotentRequest, error) {
	if key == nil {
		return nil, nil
	}
	hash, err := requestHash(body)
	if err != nil {
		return nil, err
	}
	return &idempotentRequest{
		key:      *key,
		userID:   userID,
		endpoint: endpoint,
		hash:     hash,
	}, nil
}

func requestHash(body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", errs.Wrap(err, "hash request")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// claim takes the key for this request. It returns the record of an earlier completed
// request with the same key, or nil when the caller should go on and do the work.
func (r *idempotentRequest) claim(ctx context.Context, tx shared.Tx, now time.Time) (*shared.IdempotencyRecord, error) {
	if r == nil {
		return nil, nil
	}
	claimed, err := tx.Idempotency().Claim(ctx, shared.IdempotencyClaim{
		Key:         r.key,
		UserID:      r.userID,
		Endpoint:    r.endpoint,
		RequestHash: r.hash,
		ExpiresAt:   now.Add(idempotencyTTL),
	}, now)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, nil
	}

	existing, err := tx.Idempotency().FindForUpdate(ctx, r.key, r.userID)
	if err != nil {
		if infra.IsNotFound(err) {
			// released between the claim and the read
			return nil, ErrIdempotencyInProgress
		}
		return nil, err
	}
	if existing.Endpoint != r.endpoint || existing.RequestHash != r.hash {
		return nil, ErrIdempotencyKeyReused
	}
	if existing.Status != shared.IdempotencyCompleted || existing.ResultID == nil {
		return nil, ErrIdempotencyInProgress
	}
	return existing, nil
}

func (r *idempotentRequest) complete(ctx context.Context, tx shared.Tx, resultID uuid.UUID, response any, now time.Time) error {
	if r == nil {
		return nil
	}
	var body []byte
	if response != nil {
		var err error
		if body, err = json.Marshal(response); err != nil {
			return errs.Wrap(err, "encode idempotent response")
		}
	}
	return tx.Idempotency().Complete(ctx, r.key, r.userID, resultID, body, now)
}

// release lets the client retry with the same key after the work failed outside a transaction
func (r *idempotentRequest) release(ctx context.Context, uow shared.UnitOfWork) {
	if r == nil {
		return
	}
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, r.key, r.userID)
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to release idempotency key",
			slog.String("idempotency_key", r.key.String()),
			slog.Any("error", err),
		)
	}
}
