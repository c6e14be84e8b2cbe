package repository

import (
	"context"
	"time"

	"tourbook/internal/infra"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyWriteQueries interface {
	ClaimIdempotencyKey(ctx context.Context, db sqlc.DBTX, arg sqlc.ClaimIdempotencyKeyParams) (int64, error)
	GetIdempotencyKeyForUpdate(ctx context.Context, db sqlc.DBTX, arg sqlc.GetIdempotencyKeyForUpdateParams) (sqlc.IdempotencyKeys, error)
	CompleteIdempotencyKey(ctx context.Context, db sqlc.DBTX, arg sqlc.CompleteIdempotencyKeyParams) error
	ReleaseIdempotencyKey(ctx context.Context, db sqlc.DBTX, arg sqlc.ReleaseIdempotencyKeyParams) error
	DeleteExpiredIdempotencyKeys(ctx context.Context, db sqlc.DBTX, expiresAt pgtype.Timestamptz) (int64, error)
}

type IdempotencyRepository struct {
	queries IdempotencyWriteQueries
	db      sqlc.DBTX
}

func NewIdempotencyRepository(queries IdempotencyWriteQueries, db sqlc.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{
		queries: queries,
		db:      db,
	}
}

func (r *IdempotencyRepository) Claim(ctx context.Context, c shared.IdempotencyClaim, now time.Time) (bool, error) {
	rows, err := r.queries.ClaimIdempotencyKey(ctx, r.db, sqlc.ClaimIdempotencyKeyParams{
		Key:         c.Key,
		UserID:      c.UserID,
		Endpoint:    c.Endpoint,
		RequestHash: c.RequestHash,
		ExpiresAt:   pgconv.TimeToPgtype(c.ExpiresAt),
		CreatedAt:   pgconv.TimeToPgtype(now),
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	return rows > 0, nil
}

func (r *IdempotencyRepository) FindForUpdate(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	row, err := r.queries.GetIdempotencyKeyForUpdate(ctx, r.db, sqlc.GetIdempotencyKeyForUpdateParams{
		Key:    key,
		UserID: userID,
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	return &shared.IdempotencyRecord{
		Key:         row.Key,
		UserID:      row.UserID,
		Endpoint:    row.Endpoint,
		RequestHash: row.RequestHash,
		Status:      row.Status,
		ResultID:    pgconv.UUIDPtrFromPgtype(row.ResultID),
		Response:    row.Response,
		ExpiresAt:   pgconv.TimeFromPgtype(row.ExpiresAt),
	}, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key, userID, resultID uuid.UUID, response []byte, now time.Time) error {
	err := r.queries.CompleteIdempotencyKey(ctx, r.db, sqlc.CompleteIdempotencyKeyParams{
		Key:       key,
		UserID:    userID,
		ResultID:  pgconv.UUIDPtrToPgtype(&resultID),
		Response:  response,
		UpdatedAt: pgconv.TimeToPgtype(now),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key, userID uuid.UUID) error {
	err := r.queries.ReleaseIdempotencyKey(ctx, r.db, sqlc.ReleaseIdempotencyKeyParams{
		Key:    key,
		UserID: userID,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := r.queries.DeleteExpiredIdempotencyKeys(ctx, r.db, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return count, nil
}
