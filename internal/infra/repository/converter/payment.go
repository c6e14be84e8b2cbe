package converter

import (
	"encoding/json"

	"tourbook/internal/domain/payment"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/pgconv"
)

func PaymentToCreateParams(p *payment.Payment) (sqlc.CreatePaymentParams, error) {
	details, err := marshalDetails(p.Details())
	if err != nil {
		return sqlc.CreatePaymentParams{}, err
	}
	return sqlc.CreatePaymentParams{
		ID:             p.ID(),
		BookingID:      p.BookingID(),
		PaymentMethod:  p.Method().String(),
		TransactionID:  pgconv.StringPtrToPgtype(p.TransactionID()),
		Amount:         pgconv.DecimalToNumeric(p.Amount()),
		Status:         p.Status().String(),
		PaymentDetails: details,
		PaidAt:         pgconv.TimePtrToPgtype(p.PaidAt()),
		RefundedAt:     pgconv.TimePtrToPgtype(p.RefundedAt()),
		CreatedAt:      pgconv.TimeToPgtype(p.CreatedAt()),
		UpdatedAt:      pgconv.TimeToPgtype(p.UpdatedAt()),
	}, nil
}

func PaymentToUpdateParams(p *payment.Payment) (sqlc.UpdatePaymentParams, error) {
	details, err := marshalDetails(p.Details())
	if err != nil {
		return sqlc.UpdatePaymentParams{}, err
	}
	return sqlc.UpdatePaymentParams{
		ID:             p.ID(),
		PaymentMethod:  p.Method().String(),
		TransactionID:  pgconv.StringPtrToPgtype(p.TransactionID()),
		Amount:         pgconv.DecimalToNumeric(p.Amount()),
		Status:         p.Status().String(),
		PaymentDetails: details,
		PaidAt:         pgconv.TimePtrToPgtype(p.PaidAt()),
		RefundedAt:     pgconv.TimePtrToPgtype(p.RefundedAt()),
		UpdatedAt:      pgconv.TimeToPgtype(p.UpdatedAt()),
	}, nil
}

func PaymentFromRow(row sqlc.Payments) (*payment.Payment, error) {
	method, err := payment.ParseMethod(row.PaymentMethod)
	if err != nil {
		return nil, err
	}
	status, err := payment.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}
	amount, err := pgconv.DecimalFromNumeric(row.Amount)
	if err != nil {
		return nil, err
	}
	details, err := unmarshalDetails(row.PaymentDetails)
	if err != nil {
		return nil, err
	}

	return payment.ReconstructPayment(payment.Snapshot{
		ID:            row.ID,
		BookingID:     row.BookingID,
		Method:        method,
		TransactionID: pgconv.StringPtrFromPgtype(row.TransactionID),
		Amount:        amount,
		Status:        status,
		Details:       details,
		PaidAt:        pgconv.TimePtrFromPgtype(row.PaidAt),
		RefundedAt:    pgconv.TimePtrFromPgtype(row.RefundedAt),
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:     pgconv.TimeFromPgtype(row.UpdatedAt),
	}), nil
}

func AttemptToUpsertParams(a *payment.Attempt) (sqlc.UpsertPaymentAttemptParams, error) {
	details, err := marshalDetails(a.Details())
	if err != nil {
		return sqlc.UpsertPaymentAttemptParams{}, err
	}
	return sqlc.UpsertPaymentAttemptParams{
		ID:             a.ID(),
		PaymentID:      a.PaymentID(),
		PaymentMethod:  a.Method().String(),
		TransactionID:  a.TransactionID(),
		Amount:         pgconv.DecimalToNumeric(a.Amount()),
		Status:         a.Status().String(),
		PaymentDetails: details,
		CreatedAt:      pgconv.TimeToPgtype(a.CreatedAt()),
		UpdatedAt:      pgconv.TimeToPgtype(a.UpdatedAt()),
	}, nil
}

func AttemptToUpdateParams(a *payment.Attempt) (sqlc.UpdatePaymentAttemptParams, error) {
	details, err := marshalDetails(a.Details())
	if err != nil {
		return sqlc.UpdatePaymentAttemptParams{}, err
	}
	return sqlc.UpdatePaymentAttemptParams{
		PaymentMethod:  a.Method().String(),
		TransactionID:  a.TransactionID(),
		Status:         a.Status().String(),
		PaymentDetails: details,
		UpdatedAt:      pgconv.TimeToPgtype(a.UpdatedAt()),
	}, nil
}

func AttemptFromRow(row sqlc.PaymentAttempts) (*payment.Attempt, error) {
	method, err := payment.ParseMethod(row.PaymentMethod)
	if err != nil {
		return nil, err
	}
	status, err := payment.ParseAttemptStatus(row.Status)
	if err != nil {
		return nil, err
	}
	amount, err := pgconv.DecimalFromNumeric(row.Amount)
	if err != nil {
		return nil, err
	}
	details, err := unmarshalDetails(row.PaymentDetails)
	if err != nil {
		return nil, err
	}

	return payment.ReconstructAttempt(payment.AttemptSnapshot{
		ID:            row.ID,
		PaymentID:     row.PaymentID,
		Method:        method,
		TransactionID: row.TransactionID,
		Amount:        amount,
		Status:        status,
		Details:       details,
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:     pgconv.TimeFromPgtype(row.UpdatedAt),
	}), nil
}

func unmarshalDetails(raw []byte) (payment.Details, error) {
	details := payment.Details{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &details); err != nil {
			return nil, errs.Wrap(err, "decode payment details")
		}
	}
	return details, nil
}

func marshalDetails(d payment.Details) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errs.Wrap(err, "encode payment details")
	}
	return b, nil
}
