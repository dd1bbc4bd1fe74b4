package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPickedUp       OrderStatus = "picked-up"
	OrderStatusInProgress     OrderStatus = "in-progress"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStateTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusPickedUp:       {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:     {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:      nil,
	OrderStatusCancelled:      nil,
}

// Valid reports whether the status is one of the seven lifecycle states.
func (s OrderStatus) Valid() bool {
	_, ok := orderStateTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition reports whether next is a legal successor of s.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, candidate := range orderStateTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Label renders the status in Title Case, e.g. "Out For Delivery".
func (s OrderStatus) Label() string {
	words := strings.Split(string(s), "-")
	caser := cases.Title(language.English)
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}

// PickupDetails carries the collection slot and address for an order.
type PickupDetails struct {
	Date    string
	Time    string
	Address string
}

// PaymentStatus is the terminal or in-flight state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Order is a snapshot of line items plus pickup metadata. Only status and payment
// bookkeeping change after creation.
type Order struct {
	ID             string
	UserID         string
	Items          []LineItem
	Pickup         PickupDetails
	Notes          string
	Status         OrderStatus
	TotalAmount    float64
	OriginalTotal  *float64
	AppliedOfferID string
	PaymentStatus  PaymentStatus
	TransactionID  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
