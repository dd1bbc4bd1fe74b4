package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/services"
)

type errorMapping struct {
	target error
	code   string
	status int
}

var serviceErrorMappings = []errorMapping{
	{services.ErrCartInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrCatalogInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrCheckoutInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrNotificationInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrOfferInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrOrderInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrPaymentInvalidInput, "invalid_request", http.StatusBadRequest},
	{services.ErrUserInvalidInput, "invalid_request", http.StatusBadRequest},

	{services.ErrCatalogNotFound, "not_found", http.StatusNotFound},
	{services.ErrNotificationNotFound, "notification_not_found", http.StatusNotFound},
	{services.ErrOfferNotFound, "offer_not_found", http.StatusNotFound},
	{services.ErrOrderNotFound, "order_not_found", http.StatusNotFound},
	{services.ErrPaymentNotFound, "payment_not_found", http.StatusNotFound},
	{services.ErrUserNotFound, "user_not_found", http.StatusNotFound},

	{services.ErrNotificationForbidden, "forbidden", http.StatusForbidden},

	{services.ErrOrderInvalidState, "invalid_status_transition", http.StatusConflict},
	{services.ErrCartConflict, "cart_conflict", http.StatusConflict},
	{services.ErrOfferConflict, "offer_conflict", http.StatusConflict},
	{services.ErrOrderConflict, "order_conflict", http.StatusConflict},
	{services.ErrOfferUsageLimitReached, "coupon_exhausted", http.StatusConflict},

	{services.ErrCartUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrCatalogUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrCheckoutUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrOfferUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrOrderUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrPaymentUnavailable, "service_unavailable", http.StatusServiceUnavailable},
	{services.ErrUserUnavailable, "service_unavailable", http.StatusServiceUnavailable},
}

// writeServiceError maps service sentinels to HTTP errors. Coupon failures answer 422 with
// the reason so clients can show the matching message.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var couponErr *services.CouponError
	if errors.As(err, &couponErr) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_coupon", couponErr.Message(), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"reason": string(couponErr.Reason)}))
		return
	}
	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.target) {
			message := err.Error()
			if m.status == http.StatusServiceUnavailable {
				message = "service temporarily unavailable"
			}
			httpx.WriteError(ctx, w, httpx.NewError(m.code, message, m.status))
			return
		}
	}
	httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
}
