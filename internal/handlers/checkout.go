package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

// CheckoutHandlers quote and place orders from the caller's cart.
type CheckoutHandlers struct {
	authn       *auth.Authenticator
	checkout    services.CheckoutService
	idempotency func(http.Handler) http.Handler
}

// CheckoutOption customises CheckoutHandlers.
type CheckoutOption func(*CheckoutHandlers)

// WithCheckoutIdempotency wraps order placement, typically with idempotency.Middleware.
func WithCheckoutIdempotency(mw func(http.Handler) http.Handler) CheckoutOption {
	return func(h *CheckoutHandlers) { h.idempotency = mw }
}

func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService, opts ...CheckoutOption) *CheckoutHandlers {
	h := &CheckoutHandlers{authn: authn, checkout: checkout}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/quote", h.quote)
	place := r
	if h.idempotency != nil {
		place = r.With(h.idempotency)
	}
	place.Post("/", h.placeOrder)
}

type checkoutQuoteRequest struct {
	CouponCode string `json:"couponCode"`
}

type checkoutQuoteResponse struct {
	Cart     cartPayload   `json:"cart"`
	Subtotal float64       `json:"subtotal"`
	Discount float64       `json:"discount"`
	Total    float64       `json:"total"`
	Offer    *offerPayload `json:"offer,omitempty"`
}

func (h *CheckoutHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		unavailable(ctx, w, "checkout")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req checkoutQuoteRequest
	if r.ContentLength != 0 && !decodeBody(ctx, w, r, &req) {
		return
	}
	quote, err := h.checkout.Quote(ctx, services.QuoteCommand{UserID: identity.UID, CouponCode: req.CouponCode})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	resp := checkoutQuoteResponse{
		Cart:     buildCartPayload(quote.Cart),
		Subtotal: quote.Subtotal,
		Discount: quote.Discount,
		Total:    quote.Total,
	}
	if quote.Offer != nil {
		offer := buildOfferPayload(*quote.Offer)
		resp.Offer = &offer
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

type placeOrderRequest struct {
	Pickup        pickupPayload `json:"pickup"`
	Notes         string        `json:"notes"`
	CouponCode    string        `json:"couponCode"`
	PaymentMethod string        `json:"paymentMethod"`
}

type placeOrderResponse struct {
	Order      orderPayload   `json:"order"`
	Payment    paymentPayload `json:"payment"`
	ReceiptURI string         `json:"receiptUri,omitempty"`
}

// placeOrder answers 201 when the payment completes and 402 when it is declined. A declined
// order stays pending and the cart is kept so the caller can retry with a new key.
func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		unavailable(ctx, w, "checkout")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req placeOrderRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	result, err := h.checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		UserID: identity.UID,
		Pickup: domain.PickupDetails{
			Date:    req.Pickup.Date,
			Time:    req.Pickup.Time,
			Address: req.Pickup.Address,
		},
		Notes:         req.Notes,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Payment.Status == domain.PaymentStatusFailed {
		status = http.StatusPaymentRequired
	}
	w.Header().Set("Location", "/api/v1/orders/"+result.Order.ID)
	writeJSONResponse(w, status, placeOrderResponse{
		Order:      buildOrderPayload(result.Order),
		Payment:    buildPaymentPayload(result.Payment),
		ReceiptURI: result.ReceiptURI,
	})
}
