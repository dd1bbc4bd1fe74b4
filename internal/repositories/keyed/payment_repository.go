package keyed

import (
	"context"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// PaymentRepository stores payment history under the payments key.
type PaymentRepository struct {
	store keyvalue.Store
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Save(ctx context.Context, payment domain.Payment) error {
	return mutateSlice(ctx, r.store, keyPayments, func(records []paymentRecord) ([]paymentRecord, error) {
		rec := paymentToRecord(payment)
		for i := range records {
			if records[i].TransactionID == rec.TransactionID {
				records[i] = rec
				return records, nil
			}
		}
		return append(records, rec), nil
	})
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (domain.Payment, error) {
	records, err := loadSlice[paymentRecord](ctx, r.store, keyPayments)
	if err != nil {
		return domain.Payment{}, err
	}
	for _, rec := range records {
		if rec.TransactionID == transactionID {
			return rec.domain(), nil
		}
	}
	return domain.Payment{}, repositories.NewNotFoundError("payments.find", "payment "+transactionID)
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	records, err := loadSlice[paymentRecord](ctx, r.store, keyPayments)
	if err != nil {
		return nil, err
	}
	var out []domain.Payment
	for _, rec := range records {
		if rec.OrderID == orderID {
			out = append(out, rec.domain())
		}
	}
	return out, nil
}
