package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

// PaymentHandlers list payment methods and expose payment records to their owner.
type PaymentHandlers struct {
	authn    *auth.Authenticator
	payments services.PaymentService
}

func NewPaymentHandlers(authn *auth.Authenticator, payments services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{authn: authn, payments: payments}
}

// Routes wires the /payments endpoints onto the provided router.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/methods", h.listMethods)
	r.Get("/{transactionId}", h.getPayment)
}

type paymentMethodPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *PaymentHandlers) listMethods(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		unavailable(r.Context(), w, "payment")
		return
	}
	methods := mapSlice(h.payments.Methods(), func(m domain.PaymentMethod) paymentMethodPayload {
		return paymentMethodPayload{ID: m.ID, Name: m.Name, Description: m.Description}
	})
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": methods})
}

func (h *PaymentHandlers) getPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		unavailable(ctx, w, "payment")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(ctx, chi.URLParam(r, "transactionId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if payment.UserID != identity.UID && !identity.IsStaff() {
		writeServiceError(ctx, w, services.ErrPaymentNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPaymentPayload(payment))
}
