package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const paymentsCollection = "payments"

// PaymentRepository stores payment records keyed by transaction id.
type PaymentRepository struct {
	base *pfirestore.BaseRepository[paymentDocument]
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository constructs a Firestore-backed payment repository.
func NewPaymentRepository(provider *pfirestore.Provider) (*PaymentRepository, error) {
	if provider == nil {
		return nil, errors.New("payment repository requires firestore provider")
	}
	return &PaymentRepository{base: pfirestore.NewBaseRepository[paymentDocument](provider, paymentsCollection)}, nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment domain.Payment) error {
	return r.base.Set(ctx, payment.TransactionID, paymentDocument{
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Method:        payment.Method,
		Status:        string(payment.Status),
		FailureReason: payment.FailureReason,
		CreatedAt:     payment.CreatedAt.UTC(),
		UpdatedAt:     payment.UpdatedAt.UTC(),
	})
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (domain.Payment, error) {
	doc, err := r.base.Get(ctx, transactionID)
	if err != nil {
		return domain.Payment{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("orderId", "==", orderID).OrderBy("createdAt", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}
