package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/services"
)

// CartHandlers expose the authenticated caller's cart.
type CartHandlers struct {
	authn *auth.Authenticator
	carts services.CartService
}

func NewCartHandlers(authn *auth.Authenticator, carts services.CartService) *CartHandlers {
	return &CartHandlers{authn: authn, carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{lineKey}", h.updateItem)
	r.Delete("/items/{lineKey}", h.removeItem)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, uid string) (services.CartView, error) {
		return h.carts.GetCart(ctx, uid)
	})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(ctx context.Context, uid string) (services.CartView, error) {
		if err := h.carts.Clear(ctx, uid); err != nil {
			return services.CartView{}, err
		}
		return h.carts.GetCart(ctx, uid)
	})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemPayload
	if !decodeBody(r.Context(), w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, uid string) (services.CartView, error) {
		return h.carts.AddItem(ctx, uid, req.toDomain())
	})
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

// updateItem sets a line's quantity. Zero or negative removes the line.
func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := lineKeyParam(ctx, w, r)
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity is required", http.StatusBadRequest))
		return
	}
	h.respond(w, r, func(ctx context.Context, uid string) (services.CartView, error) {
		return h.carts.UpdateQuantity(ctx, uid, key, *req.Quantity)
	})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	key, ok := lineKeyParam(r.Context(), w, r)
	if !ok {
		return
	}
	h.respond(w, r, func(ctx context.Context, uid string) (services.CartView, error) {
		return h.carts.RemoveItem(ctx, uid, key)
	})
}

func (h *CartHandlers) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, uid string) (services.CartView, error)) {
	ctx := r.Context()
	if h.carts == nil {
		unavailable(ctx, w, "cart")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	view, err := fn(ctx, identity.UID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if !view.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", view.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func lineKeyParam(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.LineKey, bool) {
	key, err := domain.ParseLineKey(chi.URLParam(r, "lineKey"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_line_key", err.Error(), http.StatusBadRequest))
		return domain.LineKey{}, false
	}
	return key, true
}
