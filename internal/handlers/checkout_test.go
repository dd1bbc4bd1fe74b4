package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/idempotency"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/services"
)

const placeOrderBody = `{"pickup":{"date":"2025-01-21","time":"10:00","address":"12 Lake Road"},"couponCode":"TEN","paymentMethod":"upi"}`

func newCheckoutRouter(checkout *stubCheckoutService, opts ...CheckoutOption) chi.Router {
	router := chi.NewRouter()
	router.Route("/checkout", NewCheckoutHandlers(nil, checkout, opts...).Routes)
	return router
}

func placedResult(status domain.PaymentStatus) services.PlaceOrderResult {
	original := 90.0
	return services.PlaceOrderResult{
		Order: services.Order{
			ID:             "ORD-20250120-001",
			UserID:         "user-1",
			Status:         domain.OrderStatusPending,
			TotalAmount:    81,
			OriginalTotal:  &original,
			AppliedOfferID: "offer-1",
			PaymentStatus:  status,
			CreatedAt:      testNow,
			UpdatedAt:      testNow,
		},
		Payment: services.Payment{TransactionID: "TXN-1", OrderID: "ORD-20250120-001", Amount: 81, Currency: "INR", Method: "upi", Status: status},
	}
}

func TestCheckoutPlaceOrder(t *testing.T) {
	var got services.PlaceOrderCommand
	checkout := &stubCheckoutService{
		placeFunc: func(_ context.Context, cmd services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
			got = cmd
			result := placedResult(domain.PaymentStatusCompleted)
			result.ReceiptURI = "gs://receipts/receipts/ORD-20250120-001/TXN-1.json"
			return result, nil
		},
	}
	rr := httptest.NewRecorder()
	newCheckoutRouter(checkout).ServeHTTP(rr, authedRequest(http.MethodPost, "/checkout", placeOrderBody, "user-1", domain.UserRoleUser))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.UserID != "user-1" || got.Pickup.Address != "12 Lake Road" || got.CouponCode != "TEN" || got.PaymentMethod != "upi" {
		t.Fatalf("unexpected command %+v", got)
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/orders/ORD-20250120-001" {
		t.Fatalf("unexpected location %q", loc)
	}
	var body placeOrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Order.TotalAmount != 81 || body.Order.OriginalTotal == nil || *body.Order.OriginalTotal != 90 || body.Order.StatusLabel != "Pending" {
		t.Fatalf("unexpected order %+v", body.Order)
	}
	if body.Payment.Status != "completed" || body.ReceiptURI == "" {
		t.Fatalf("unexpected payment %+v", body)
	}
}

func TestCheckoutDeclinedPayment(t *testing.T) {
	checkout := &stubCheckoutService{
		placeFunc: func(context.Context, services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
			result := placedResult(domain.PaymentStatusFailed)
			result.Payment.FailureReason = "declined by issuer"
			return result, nil
		},
	}
	rr := httptest.NewRecorder()
	newCheckoutRouter(checkout).ServeHTTP(rr, authedRequest(http.MethodPost, "/checkout", placeOrderBody, "user-1", domain.UserRoleUser))
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rr.Code)
	}
	var body placeOrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Order.Status != "pending" || body.Payment.FailureReason != "declined by issuer" {
		t.Fatalf("unexpected declined body %+v", body)
	}
}

func TestCheckoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: fmt.Errorf("%w: cart is empty", services.ErrCheckoutInvalidInput), status: http.StatusBadRequest, code: "invalid_request"},
		{name: "coupon", err: &services.CouponError{Reason: services.CouponReasonExhausted, Code: "TEN"}, status: http.StatusUnprocessableEntity, code: "invalid_coupon"},
		{name: "unavailable", err: fmt.Errorf("%w: store down", services.ErrOrderUnavailable), status: http.StatusServiceUnavailable, code: "service_unavailable"},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkout := &stubCheckoutService{
				placeFunc: func(context.Context, services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
					return services.PlaceOrderResult{}, tc.err
				},
			}
			rr := httptest.NewRecorder()
			newCheckoutRouter(checkout).ServeHTTP(rr, authedRequest(http.MethodPost, "/checkout", placeOrderBody, "user-1", domain.UserRoleUser))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			if body["error"] != tc.code {
				t.Fatalf("expected code %q, got %v", tc.code, body["error"])
			}
		})
	}
}

func TestCheckoutIdempotentReplay(t *testing.T) {
	checkout := &stubCheckoutService{
		placeFunc: func(context.Context, services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
			return placedResult(domain.PaymentStatusCompleted), nil
		},
	}
	store := idempotency.NewKeyedStore(keyvalue.NewMemoryStore())
	router := newCheckoutRouter(checkout, WithCheckoutIdempotency(idempotency.Middleware(store)))

	var bodies []string
	for i := 0; i < 2; i++ {
		req := authedRequest(http.MethodPost, "/checkout", placeOrderBody, "user-1", domain.UserRoleUser)
		req.Header.Set(idempotency.DefaultHeader, "checkout-42")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201, got %d", i, rr.Code)
		}
		bodies = append(bodies, rr.Body.String())
	}
	if checkout.placed != 1 {
		t.Fatalf("expected one placement, got %d", checkout.placed)
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("expected identical replay")
	}
}

func TestCheckoutQuote(t *testing.T) {
	checkout := &stubCheckoutService{
		quoteFunc: func(_ context.Context, cmd services.QuoteCommand) (services.CheckoutQuote, error) {
			if cmd.CouponCode == "" {
				return services.CheckoutQuote{Cart: sampleCartView(), Subtotal: 90, Total: 90}, nil
			}
			offer := services.Offer{ID: "offer-1", CouponCode: cmd.CouponCode}
			return services.CheckoutQuote{Cart: sampleCartView(), Subtotal: 90, Discount: 9, Total: 81, Offer: &offer}, nil
		},
	}
	router := newCheckoutRouter(checkout)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/checkout/quote", "", "user-1", domain.UserRoleUser))
	var plain checkoutQuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &plain); err != nil || rr.Code != http.StatusOK {
		t.Fatalf("expected plain quote, got %d %v", rr.Code, err)
	}
	if plain.Total != 90 || plain.Offer != nil {
		t.Fatalf("unexpected plain quote %+v", plain)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/checkout/quote", `{"couponCode":"TEN"}`, "user-1", domain.UserRoleUser))
	var discounted checkoutQuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &discounted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if discounted.Total != 81 || discounted.Offer == nil || discounted.Offer.CouponCode != "TEN" {
		t.Fatalf("unexpected discounted quote %+v", discounted)
	}
}
