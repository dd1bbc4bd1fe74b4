package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
)

type checkoutCarts interface {
	GetCart(ctx context.Context, userID string) (CartView, error)
	Clear(ctx context.Context, userID string) error
}

type checkoutCoupons interface {
	ApplyCoupon(ctx context.Context, code string, baseAmount float64) (CouponQuote, error)
}

type checkoutOrders interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	AttachPayment(ctx context.Context, cmd AttachPaymentCommand) (Order, error)
}

type checkoutPayments interface {
	Methods() []PaymentMethod
	Process(ctx context.Context, cmd ProcessPaymentCommand) (Payment, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Carts    checkoutCarts
	Offers   checkoutCoupons
	Orders   checkoutOrders
	Payments checkoutPayments
	Receipts ReceiptArchiver
	Clock    func() time.Time
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	carts    checkoutCarts
	offers   checkoutCoupons
	orders   checkoutOrders
	payments checkoutPayments
	receipts ReceiptArchiver
	now      func() time.Time
	logger   func(ctx context.Context, event string, fields map[string]any)
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout service: cart service is required")
	}
	if deps.Offers == nil {
		return nil, errors.New("checkout service: offer service is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order service is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payment service is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}

	return &checkoutService{
		carts:    deps.Carts,
		offers:   deps.Offers,
		orders:   deps.Orders,
		payments: deps.Payments,
		receipts: deps.Receipts,
		now:      func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

// Quote prices the user's cart. An empty coupon code means no discount; any other code that
// fails validation is returned as *CouponError.
func (s *checkoutService) Quote(ctx context.Context, cmd QuoteCommand) (CheckoutQuote, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return CheckoutQuote{}, fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return CheckoutQuote{}, err
	}
	return s.quote(ctx, cart, cmd.CouponCode)
}

// PlaceOrder creates the order and runs the payment. A declined payment is not an error: the
// result carries the failed payment, the order stays pending and the cart is kept.
func (s *checkoutService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return PlaceOrderResult{}, fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}
	if err := validateCheckoutPickup(cmd.Pickup); err != nil {
		return PlaceOrderResult{}, err
	}
	method := strings.ToLower(strings.TrimSpace(cmd.PaymentMethod))
	if !s.knownMethod(method) {
		return PlaceOrderResult{}, fmt.Errorf("%w: unknown payment method %q", ErrCheckoutInvalidInput, cmd.PaymentMethod)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	if len(cart.Lines) == 0 {
		return PlaceOrderResult{}, fmt.Errorf("%w: cart is empty", ErrCheckoutInvalidInput)
	}

	quote, err := s.quote(ctx, cart, cmd.CouponCode)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	create := CreateOrderCommand{
		UserID:      userID,
		Items:       cart.Items(),
		Pickup:      cmd.Pickup,
		Notes:       cmd.Notes,
		TotalAmount: quote.Total,
	}
	if quote.Offer != nil {
		subtotal := quote.Subtotal
		create.OriginalTotal = &subtotal
		create.AppliedOfferID = quote.Offer.ID
	}
	order, err := s.orders.CreateOrder(ctx, create)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	payment, err := s.payments.Process(ctx, ProcessPaymentCommand{
		OrderID: order.ID,
		UserID:  userID,
		Amount:  order.TotalAmount,
		Method:  method,
	})
	if err != nil {
		s.logger(ctx, "checkout.payment.error", map[string]any{"orderId": order.ID, "error": err.Error()})
		return PlaceOrderResult{Order: order}, err
	}

	if updated, err := s.orders.AttachPayment(ctx, AttachPaymentCommand{
		OrderID:       order.ID,
		TransactionID: payment.TransactionID,
		Status:        payment.Status,
	}); err != nil {
		s.logger(ctx, "checkout.payment.attach.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	} else {
		order = updated
	}

	result := PlaceOrderResult{Order: order, Payment: payment}
	if payment.Status != domain.PaymentStatusCompleted {
		s.logger(ctx, "checkout.payment.failed", map[string]any{
			"orderId":       order.ID,
			"transactionId": payment.TransactionID,
			"reason":        payment.FailureReason,
		})
		return result, nil
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger(ctx, "checkout.cart.clear.failed", map[string]any{"userId": userID, "error": err.Error()})
	}
	result.ReceiptURI = s.archive(ctx, quote, order, payment)
	s.logger(ctx, "checkout.completed", map[string]any{
		"orderId":       order.ID,
		"transactionId": payment.TransactionID,
		"total":         order.TotalAmount,
	})
	return result, nil
}

func (s *checkoutService) quote(ctx context.Context, cart CartView, couponCode string) (CheckoutQuote, error) {
	subtotal := Round2(cart.Total)
	quote := CheckoutQuote{Cart: cart, Subtotal: subtotal, Total: subtotal}
	if strings.TrimSpace(couponCode) == "" {
		return quote, nil
	}
	applied, err := s.offers.ApplyCoupon(ctx, couponCode, subtotal)
	if err != nil {
		return CheckoutQuote{}, err
	}
	offer := applied.Offer
	quote.Offer = &offer
	quote.Discount = applied.Discount
	quote.Total = applied.FinalAmount
	return quote, nil
}

func (s *checkoutService) knownMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, candidate := range s.payments.Methods() {
		if candidate.ID == method {
			return true
		}
	}
	return false
}

func (s *checkoutService) archive(ctx context.Context, quote CheckoutQuote, order Order, payment Payment) string {
	if s.receipts == nil {
		return ""
	}
	receipt := Receipt{
		OrderID:       order.ID,
		TransactionID: payment.TransactionID,
		UserID:        order.UserID,
		Method:        payment.Method,
		Currency:      payment.Currency,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Total:         order.TotalAmount,
		OfferID:       order.AppliedOfferID,
		PaidAt:        payment.UpdatedAt,
	}
	if receipt.PaidAt.IsZero() {
		receipt.PaidAt = s.now()
	}
	for _, line := range quote.Cart.Lines {
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			Service:   line.ServiceName,
			Garment:   line.GarmentName,
			Quality:   string(line.Item.Quality),
			Quantity:  line.Item.Quantity,
			LinePrice: Round2(line.LinePrice),
		})
	}
	uri, err := s.receipts.ArchiveReceipt(ctx, receipt)
	if err != nil {
		s.logger(ctx, "checkout.receipt.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
		return ""
	}
	return uri
}

func validateCheckoutPickup(p PickupDetails) error {
	var missing []string
	if strings.TrimSpace(p.Date) == "" {
		missing = append(missing, "pickup date")
	}
	if strings.TrimSpace(p.Time) == "" {
		missing = append(missing, "pickup time")
	}
	if strings.TrimSpace(p.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrCheckoutInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
