package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/services"
)

// AdminHandlers serve staff operations: order status, catalog prices, offers, users and broadcasts.
type AdminHandlers struct {
	authn         *auth.Authenticator
	orders        services.OrderService
	catalog       services.CatalogService
	offers        services.OfferService
	users         services.UserService
	notifications services.NotificationService
}

// AdminDeps groups the services used by the admin routes.
type AdminDeps struct {
	Orders        services.OrderService
	Catalog       services.CatalogService
	Offers        services.OfferService
	Users         services.UserService
	Notifications services.NotificationService
}

func NewAdminHandlers(authn *auth.Authenticator, deps AdminDeps) *AdminHandlers {
	return &AdminHandlers{
		authn:         authn,
		orders:        deps.Orders,
		catalog:       deps.Catalog,
		offers:        deps.Offers,
		users:         deps.Users,
		notifications: deps.Notifications,
	}
}

// Routes wires the /admin endpoints. Every route requires the staff or admin role.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(domain.UserRoleAdmin, domain.UserRoleStaff))
	}
	r.Get("/orders", h.listOrders)
	r.Put("/orders/{orderId}/status", h.updateOrderStatus)
	r.Patch("/garment-types/{garmentTypeId}/pricing", h.updateGarmentPricing)
	r.Patch("/services/{serviceId}", h.updateService)
	r.Get("/offers", h.listOffers)
	r.Post("/offers", h.createOffer)
	r.Patch("/offers/{offerId}", h.updateOffer)
	r.Delete("/offers/{offerId}", h.deleteOffer)
	r.Get("/users", h.listUsers)
	r.Post("/notifications", h.broadcast)
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		unavailable(ctx, w, "order")
		return
	}
	params, ok := pageParams(ctx, w, r)
	if !ok {
		return
	}
	filter := services.OrderListFilter{UserID: strings.TrimSpace(r.URL.Query().Get("userId"))}
	for _, raw := range r.URL.Query()["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Status = append(filter.Status, domain.OrderStatus(status))
			}
		}
	}
	orders, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, paged(mapSlice(orders, buildOrderPayload), params))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		unavailable(ctx, w, "order")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(ctx, services.UpdateOrderStatusCommand{
		OrderID: chi.URLParam(r, "orderId"),
		Status:  domain.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		ActorID: identity.UID,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

type updateGarmentPricingRequest struct {
	Wash     *float64 `json:"wash"`
	Iron     *float64 `json:"iron"`
	WashIron *float64 `json:"washIron"`
	DryClean *float64 `json:"dryClean"`
}

func (h *AdminHandlers) updateGarmentPricing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req updateGarmentPricingRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	garment, err := h.catalog.UpdateGarmentPricing(ctx, services.UpdateGarmentPricingCommand{
		GarmentTypeID: chi.URLParam(r, "garmentTypeId"),
		Wash:          req.Wash,
		Iron:          req.Iron,
		WashIron:      req.WashIron,
		DryClean:      req.DryClean,
		ActorID:       identity.UID,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildGarmentTypePayload(garment))
}

type updateServiceRequest struct {
	Active *bool `json:"active"`
}

func (h *AdminHandlers) updateService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		unavailable(ctx, w, "catalog")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req updateServiceRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	if req.Active == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active is required", http.StatusBadRequest))
		return
	}
	svc, err := h.catalog.SetServiceActive(ctx, services.SetServiceActiveCommand{
		ServiceID: chi.URLParam(r, "serviceId"),
		Active:    *req.Active,
		ActorID:   identity.UID,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildServicePayload(svc))
}

func (h *AdminHandlers) listOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.offers == nil {
		unavailable(ctx, w, "offer")
		return
	}
	offers, err := h.offers.ListOffers(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": mapSlice(offers, buildOfferPayload)})
}

type offerRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	DiscountType   *string    `json:"discountType"`
	DiscountValue  *float64   `json:"discountValue"`
	CouponCode     *string    `json:"couponCode"`
	MinOrderAmount *float64   `json:"minOrderAmount"`
	ValidFrom      *time.Time `json:"validFrom"`
	ValidTo        *time.Time `json:"validTo"`
	IsActive       *bool      `json:"isActive"`
	UsageLimit     *int       `json:"usageLimit"`
}

func (h *AdminHandlers) createOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.offers == nil {
		unavailable(ctx, w, "offer")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req offerRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	cmd := services.CreateOfferCommand{
		Title:          deref(req.Title),
		Description:    deref(req.Description),
		DiscountType:   domain.DiscountType(deref(req.DiscountType)),
		DiscountValue:  deref(req.DiscountValue),
		CouponCode:     deref(req.CouponCode),
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      deref(req.ValidFrom),
		ValidTo:        deref(req.ValidTo),
		IsActive:       req.IsActive == nil || *req.IsActive,
		UsageLimit:     req.UsageLimit,
		ActorID:        identity.UID,
	}
	offer, err := h.offers.CreateOffer(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/admin/offers/"+offer.ID)
	writeJSONResponse(w, http.StatusCreated, buildOfferPayload(offer))
}

func (h *AdminHandlers) updateOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.offers == nil {
		unavailable(ctx, w, "offer")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	var req offerRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	cmd := services.UpdateOfferCommand{
		OfferID:        chi.URLParam(r, "offerId"),
		Title:          req.Title,
		Description:    req.Description,
		DiscountValue:  req.DiscountValue,
		CouponCode:     req.CouponCode,
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		IsActive:       req.IsActive,
		UsageLimit:     req.UsageLimit,
		ActorID:        identity.UID,
	}
	if req.DiscountType != nil {
		dt := domain.DiscountType(*req.DiscountType)
		cmd.DiscountType = &dt
	}
	offer, err := h.offers.UpdateOffer(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOfferPayload(offer))
}

func (h *AdminHandlers) deleteOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.offers == nil {
		unavailable(ctx, w, "offer")
		return
	}
	if err := h.offers.DeleteOffer(ctx, chi.URLParam(r, "offerId")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		unavailable(ctx, w, "user")
		return
	}
	params, ok := pageParams(ctx, w, r)
	if !ok {
		return
	}
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, paged(mapSlice(users, buildProfilePayload), params))
}

type broadcastRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	OfferID string `json:"offerId"`
}

// broadcast sends a notification to one user, or to everyone when userId is empty.
func (h *AdminHandlers) broadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.notifications == nil {
		unavailable(ctx, w, "notification")
		return
	}
	var req broadcastRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	kind := domain.NotificationType(strings.ToLower(strings.TrimSpace(req.Type)))
	if kind == "" {
		kind = domain.NotificationInfo
	}
	notification, err := h.notifications.Notify(ctx, services.NotifyCommand{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    kind,
		OfferID: req.OfferID,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildNotificationPayload(notification))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
