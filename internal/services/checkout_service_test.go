package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/payments"
)

func TestCheckoutServiceQuote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addItem(t, "user-1", "wash-normal", "tshirt", domain.QualityNormal, 3)
	h.createOffer(t, CreateOfferCommand{
		Title: "Ten", DiscountType: domain.DiscountPercentage, DiscountValue: 10, CouponCode: "TEN", IsActive: true,
	})

	quote, err := h.checkout.Quote(ctx, QuoteCommand{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Subtotal != 90 || quote.Discount != 0 || quote.Total != 90 || quote.Offer != nil {
		t.Fatalf("unexpected quote %+v", quote)
	}

	quote, err = h.checkout.Quote(ctx, QuoteCommand{UserID: "user-1", CouponCode: "ten"})
	if err != nil {
		t.Fatalf("Quote with coupon: %v", err)
	}
	if quote.Subtotal != 90 || quote.Discount != 9 || quote.Total != 81 || quote.Offer == nil {
		t.Fatalf("unexpected discounted quote %+v", quote)
	}

	_, err = h.checkout.Quote(ctx, QuoteCommand{UserID: "user-1", CouponCode: "WHAT"})
	var couponErr *CouponError
	if !errors.As(err, &couponErr) || couponErr.Reason != CouponReasonInvalid {
		t.Fatalf("expected coupon error, got %v", err)
	}
}

func TestCheckoutServicePlaceOrderSuccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addItem(t, "user-1", "wash-normal", "tshirt", domain.QualityNormal, 3)
	offer := h.createOffer(t, CreateOfferCommand{
		Title: "Ten", DiscountType: domain.DiscountPercentage, DiscountValue: 10, CouponCode: "TEN", IsActive: true, UsageLimit: intPtr(5),
	})

	result, err := h.checkout.PlaceOrder(ctx, PlaceOrderCommand{
		UserID:        "user-1",
		Pickup:        samplePickup(),
		Notes:         "Gate code 1234",
		CouponCode:    "TEN",
		PaymentMethod: "upi",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.Order.ID != "ORD-20250120-001" {
		t.Fatalf("unexpected order id %s", result.Order.ID)
	}
	if result.Order.TotalAmount != 81 || result.Order.OriginalTotal == nil || *result.Order.OriginalTotal != 90 {
		t.Fatalf("unexpected totals %+v", result.Order)
	}
	if result.Order.Status != domain.OrderStatusPending || result.Order.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("expected pending order with completed payment, got %+v", result.Order)
	}
	if result.Payment.Amount != 81 || result.Payment.TransactionID != result.Order.TransactionID {
		t.Fatalf("unexpected payment %+v", result.Payment)
	}

	view, err := h.carts.GetCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected cart cleared after payment, got %+v", view.Lines)
	}

	stored, err := h.offers.GetOffer(ctx, offer.ID)
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected one redemption, got %d", stored.UsedCount)
	}

	if len(h.receipts.receipts) != 1 {
		t.Fatalf("expected receipt archived")
	}
	receipt := h.receipts.receipts[0]
	if receipt.Subtotal != 90 || receipt.Discount != 9 || receipt.Total != 81 || len(receipt.Lines) != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if receipt.Lines[0].Garment != "T-shirt" || receipt.Lines[0].LinePrice != 90 {
		t.Fatalf("unexpected receipt line %+v", receipt.Lines[0])
	}
	if result.ReceiptURI == "" {
		t.Fatalf("expected receipt uri")
	}
}

func TestCheckoutServicePlaceOrderPaymentFailureKeepsCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addItem(t, "user-1", "wash-normal", "tshirt", domain.QualityNormal, 1)
	offer := h.createOffer(t, CreateOfferCommand{
		Title: "Five", DiscountType: domain.DiscountFixed, DiscountValue: 5, CouponCode: "FIVE", IsActive: true,
	})
	h.provider.chargeFn = func(_ context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
		return payments.ChargeResult{TransactionID: req.TransactionID, Status: domain.PaymentStatusFailed, FailureReason: payments.FailureReasonDeclined}, nil
	}

	result, err := h.checkout.PlaceOrder(ctx, PlaceOrderCommand{
		UserID: "user-1", Pickup: samplePickup(), CouponCode: "FIVE", PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.Payment.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %+v", result.Payment)
	}
	if result.Order.Status != domain.OrderStatusPending || result.Order.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("expected order to stay pending, got %+v", result.Order)
	}
	if result.ReceiptURI != "" || len(h.receipts.receipts) != 0 {
		t.Fatalf("expected no receipt for failed payment")
	}

	view, err := h.carts.GetCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("expected cart kept, got %+v", view.Lines)
	}
	stored, err := h.offers.GetOffer(ctx, offer.ID)
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("expected usage to stay counted, got %d", stored.UsedCount)
	}
}

func TestCheckoutServicePlaceOrderValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.checkout.PlaceOrder(ctx, PlaceOrderCommand{UserID: "user-1", Pickup: samplePickup(), PaymentMethod: "upi"}); !errors.Is(err, ErrCheckoutInvalidInput) {
		t.Fatalf("expected empty cart to be rejected, got %v", err)
	}

	h.addItem(t, "user-1", "wash-normal", "tshirt", domain.QualityNormal, 1)
	tests := []struct {
		name string
		cmd  PlaceOrderCommand
	}{
		{name: "missing user", cmd: PlaceOrderCommand{Pickup: samplePickup(), PaymentMethod: "upi"}},
		{name: "missing time", cmd: PlaceOrderCommand{UserID: "user-1", Pickup: PickupDetails{Date: "2025-01-21", Address: "x"}, PaymentMethod: "upi"}},
		{name: "missing address", cmd: PlaceOrderCommand{UserID: "user-1", Pickup: PickupDetails{Date: "2025-01-21", Time: "10:00"}, PaymentMethod: "upi"}},
		{name: "missing method", cmd: PlaceOrderCommand{UserID: "user-1", Pickup: samplePickup()}},
		{name: "unknown method", cmd: PlaceOrderCommand{UserID: "user-1", Pickup: samplePickup(), PaymentMethod: "barter"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.checkout.PlaceOrder(ctx, tc.cmd); !errors.Is(err, ErrCheckoutInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}

	orders, err := h.orders.ListOrders(ctx, OrderListFilter{})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no order created, got %d", len(orders))
	}
}

func TestCheckoutServicePlaceOrderRejectsExhaustedCoupon(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addItem(t, "user-1", "wash-normal", "tshirt", domain.QualityNormal, 1)
	offer := h.createOffer(t, CreateOfferCommand{
		Title: "Once", DiscountType: domain.DiscountFixed, DiscountValue: 5, CouponCode: "ONCE", IsActive: true, UsageLimit: intPtr(1),
	})
	if _, err := h.offers.RecordRedemption(ctx, offer.ID); err != nil {
		t.Fatalf("RecordRedemption: %v", err)
	}

	_, err := h.checkout.PlaceOrder(ctx, PlaceOrderCommand{UserID: "user-1", Pickup: samplePickup(), CouponCode: "ONCE", PaymentMethod: "cash"})
	var couponErr *CouponError
	if !errors.As(err, &couponErr) || couponErr.Reason != CouponReasonExhausted {
		t.Fatalf("expected exhausted coupon, got %v", err)
	}
}

func TestCheckoutServiceReceiptFailureIsLogged(t *testing.T) {
	h := newHarness(t)
	h.receipts.err = errors.New("bucket missing")
	h.addItem(t, "user-1", "iron-casual", "shirt", domain.QualityNormal, 2)

	result, err := h.checkout.PlaceOrder(context.Background(), PlaceOrderCommand{UserID: "user-1", Pickup: samplePickup(), PaymentMethod: "netbanking"})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.Payment.Status != domain.PaymentStatusCompleted || result.ReceiptURI != "" {
		t.Fatalf("unexpected result %+v", result)
	}
	if !h.logger.has("checkout.receipt.failed") {
		t.Fatalf("expected receipt failure to be logged")
	}
}
