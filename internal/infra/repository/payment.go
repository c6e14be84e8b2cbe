package repository

import (
	"context"

	"tourbook/internal/domain/payment"
	"tourbook/internal/infra"
	"tourbook/internal/infra/repository/converter"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type PaymentWriteQueries interface {
	CreatePayment(ctx context.Context, db sqlc.DBTX, arg sqlc.CreatePaymentParams) error
	UpdatePayment(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdatePaymentParams) error
	GetPaymentByIDForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Payments, error)
	GetPaymentByBookingIDForUpdate(ctx context.Context, db sqlc.DBTX, bookingID uuid.UUID) (sqlc.Payments, error)
	GetPaymentByTransactionIDForUpdate(ctx context.Context, db sqlc.DBTX, arg sqlc.GetPaymentByTransactionIDForUpdateParams) (sqlc.Payments, error)
	GetPaymentBookingIDByTransactionID(ctx context.Context, db sqlc.DBTX, arg sqlc.GetPaymentBookingIDByTransactionIDParams) (uuid.UUID, error)
	UpsertPaymentAttempt(ctx context.Context, db sqlc.DBTX, arg sqlc.UpsertPaymentAttemptParams) error
	UpdatePaymentAttempt(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdatePaymentAttemptParams) error
	GetPaymentAttemptForUpdate(ctx context.Context, db sqlc.DBTX, arg sqlc.GetPaymentAttemptForUpdateParams) (sqlc.PaymentAttempts, error)
}

type PaymentRepository struct {
	queries PaymentWriteQueries
	db      sqlc.DBTX
}

func NewPaymentRepository(queries PaymentWriteQueries, db sqlc.DBTX) *PaymentRepository {
	return &PaymentRepository{
		queries: queries,
		db:      db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	params, err := converter.PaymentToCreateParams(p)
	if err != nil {
		return infra.WrapRepoErr("failed to encode payment", err, infra.KindDBFailure)
	}
	if err := r.queries.CreatePayment(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	params, err := converter.PaymentToUpdateParams(p)
	if err != nil {
		return infra.WrapRepoErr("failed to encode payment", err, infra.KindDBFailure)
	}
	if err := r.queries.UpdatePayment(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	return nil
}

func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	row, err := r.queries.GetPaymentByIDForUpdate(ctx, r.db, id)
	return r.decode(row, err)
}

func (r *PaymentRepository) FindByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	row, err := r.queries.GetPaymentByBookingIDForUpdate(ctx, r.db, bookingID)
	return r.decode(row, err)
}

func (r *PaymentRepository) FindByTransactionIDForUpdate(ctx context.Context, method payment.Method, transactionID string) (*payment.Payment, error) {
	row, err := r.queries.GetPaymentByTransactionIDForUpdate(ctx, r.db, sqlc.GetPaymentByTransactionIDForUpdateParams{
		PaymentMethod: method.String(),
		TransactionID: pgconv.OptionalStringToPgtype(transactionID),
	})
	return r.decode(row, err)
}

func (r *PaymentRepository) BookingIDForTransaction(ctx context.Context, method payment.Method, transactionID string) (uuid.UUID, error) {
	id, err := r.queries.GetPaymentBookingIDByTransactionID(ctx, r.db, sqlc.GetPaymentBookingIDByTransactionIDParams{
		PaymentMethod: method.String(),
		TransactionID: pgconv.OptionalStringToPgtype(transactionID),
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return uuid.Nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to resolve payment transaction", err)
	}
	return id, nil
}

func (r *PaymentRepository) RecordAttempt(ctx context.Context, a *payment.Attempt) error {
	params, err := converter.AttemptToUpsertParams(a)
	if err != nil {
		return infra.WrapRepoErr("failed to encode payment attempt", err, infra.KindDBFailure)
	}
	if err := r.queries.UpsertPaymentAttempt(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to record payment attempt", err)
	}
	return nil
}

func (r *PaymentRepository) UpdateAttempt(ctx context.Context, a *payment.Attempt) error {
	params, err := converter.AttemptToUpdateParams(a)
	if err != nil {
		return infra.WrapRepoErr("failed to encode payment attempt", err, infra.KindDBFailure)
	}
	if err := r.queries.UpdatePaymentAttempt(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to update payment attempt", err)
	}
	return nil
}

func (r *PaymentRepository) FindAttemptForUpdate(ctx context.Context, method payment.Method, transactionID string) (*payment.Attempt, error) {
	row, err := r.queries.GetPaymentAttemptForUpdate(ctx, r.db, sqlc.GetPaymentAttemptForUpdateParams{
		PaymentMethod: method.String(),
		TransactionID: transactionID,
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment attempt not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock payment attempt", err)
	}
	a, err := converter.AttemptFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode payment attempt row", err, infra.KindDBFailure)
	}
	return a, nil
}

func (r *PaymentRepository) decode(row sqlc.Payments, err error) (*payment.Payment, error) {
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock payment", err)
	}
	p, err := converter.PaymentFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode payment row", err, infra.KindDBFailure)
	}
	return p, nil
}
