package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/services"
)

// PublicHandlers expose the catalog, price quotes and active offers without authentication.
type PublicHandlers struct {
	catalog services.CatalogService
	offers  services.OfferService
}

func NewPublicHandlers(catalog services.CatalogService, offers services.OfferService) *PublicHandlers {
	return &PublicHandlers{catalog: catalog, offers: offers}
}

// Routes wires the /public endpoints onto the provided router.
func (h *PublicHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/garment-types", h.listGarmentTypes)
	r.Get("/services", h.listServices)
	r.Get("/services/{serviceId}", h.getService)
	r.Post("/quote", h.quote)
	r.Get("/offers", h.listOffers)
}

func (h *PublicHandlers) listGarmentTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	garments, err := h.catalog.ListGarmentTypes(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": mapSlice(garments, buildGarmentTypePayload)})
}

func (h *PublicHandlers) listServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	filter := services.ServiceListFilter{}
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active must be a boolean", http.StatusBadRequest))
			return
		}
		filter.ActiveOnly = active
	}
	list, err := h.catalog.ListServices(ctx, filter)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": mapSlice(list, buildServicePayload)})
}

func (h *PublicHandlers) getService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	svc, err := h.catalog.GetService(ctx, chi.URLParam(r, "serviceId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildServicePayload(svc))
}

type quoteRequest struct {
	Items      []lineItemPayload `json:"items"`
	CouponCode string            `json:"couponCode"`
}

type quoteLinePayload struct {
	lineItemPayload
	UnitPrice float64 `json:"unitPrice"`
	LinePrice float64 `json:"linePrice"`
}

type quoteResponse struct {
	Items    []quoteLinePayload `json:"items"`
	Subtotal float64            `json:"subtotal"`
	Discount float64            `json:"discount"`
	Total    float64            `json:"total"`
	Offer    *offerPayload      `json:"offer,omitempty"`
}

// quote prices arbitrary items against the live catalog. Unresolvable lines price at zero.
func (h *PublicHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	var req quoteRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	items := make([]domain.LineItem, 0, len(req.Items))
	for i, raw := range req.Items {
		item := raw.toDomain()
		if item.Quality == "" {
			item.Quality = domain.QualityNormal
		}
		if err := item.Validate(); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "items["+strconv.Itoa(i)+"]: "+err.Error(), http.StatusBadRequest))
			return
		}
		items = append(items, item)
	}

	catalog, err := h.catalog.Snapshot(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	resp := quoteResponse{Items: make([]quoteLinePayload, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, quoteLinePayload{
			lineItemPayload: buildLineItems([]domain.LineItem{item})[0],
			UnitPrice:       services.UnitPrice(item, catalog),
			LinePrice:       services.ComputeLineItemPrice(item, catalog),
		})
	}
	resp.Subtotal = services.ComputeCartTotal(items, catalog)
	resp.Total = resp.Subtotal

	if code := strings.TrimSpace(req.CouponCode); code != "" {
		if h.offers == nil {
			unavailable(ctx, w, "offer")
			return
		}
		applied, err := h.offers.ApplyCoupon(ctx, code, resp.Subtotal)
		if err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		offer := buildOfferPayload(applied.Offer)
		resp.Discount = applied.Discount
		resp.Total = applied.FinalAmount
		resp.Offer = &offer
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *PublicHandlers) listOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.offers == nil {
		unavailable(ctx, w, "offer")
		return
	}
	offers, err := h.offers.ListActiveOffers(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": mapSlice(offers, buildOfferPayload)})
}
