package domain

import "time"

// PaymentMethod is a selectable way to pay.
type PaymentMethod struct {
	ID          string
	Name        string
	Description string
}

// Payment records a simulated transaction against an order.
type Payment struct {
	TransactionID string
	OrderID       string
	UserID        string
	Amount        float64
	Currency      string
	Method        string
	Status        PaymentStatus
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal reports whether the payment reached completed or failed.
func (p Payment) Terminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}
