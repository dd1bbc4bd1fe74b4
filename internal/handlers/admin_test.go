package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

const adminSecret = "admin-test-secret"

func newAdminRouter(t *testing.T, deps AdminDeps) chi.Router {
	t.Helper()
	verifier, err := auth.NewLocalVerifier(auth.LocalVerifierConfig{
		Secret: adminSecret,
		Clock:  func() time.Time { return testNow.Add(time.Minute) },
	})
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}
	router := chi.NewRouter()
	router.Route("/admin", NewAdminHandlers(auth.NewAuthenticator(verifier), deps).Routes)
	return router
}

func adminRequest(t *testing.T, method, target, body string, role domain.UserRole) *http.Request {
	t.Helper()
	req := authedRequest(method, target, body, "", role)
	token, err := auth.IssueSessionToken(adminSecret, "staff-1", role, time.Hour, testNow)
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminHandlersRequireStaffRole(t *testing.T) {
	router := newAdminRouter(t, AdminDeps{Orders: &stubOrderService{orders: sampleOrders()}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodGet, "/admin/orders", "", domain.UserRoleUser))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodGet, "/admin/orders", "", domain.UserRoleStaff))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff, got %d", rr.Code)
	}
}

func TestAdminHandlersListOrdersFilters(t *testing.T) {
	orders := &stubOrderService{orders: sampleOrders()}
	router := newAdminRouter(t, AdminDeps{Orders: orders})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodGet, "/admin/orders?userId=user-1&status=pending,completed&status=cancelled", "", domain.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusCancelled}
	if orders.lastFilter.UserID != "user-1" || fmt.Sprint(orders.lastFilter.Status) != fmt.Sprint(want) {
		t.Fatalf("unexpected filter %+v", orders.lastFilter)
	}
	var body listResponse[orderPayload]
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected user-1 orders, got %d", len(body.Items))
	}
}

func TestAdminHandlersUpdateOrderStatus(t *testing.T) {
	var got services.UpdateOrderStatusCommand
	orders := &stubOrderService{
		statusFunc: func(_ context.Context, cmd services.UpdateOrderStatusCommand) (services.Order, error) {
			got = cmd
			if cmd.Status == domain.OrderStatusPending {
				return services.Order{}, fmt.Errorf("%w: completed -> pending", services.ErrOrderInvalidState)
			}
			return services.Order{ID: cmd.OrderID, UserID: "user-1", Status: cmd.Status}, nil
		},
	}
	router := newAdminRouter(t, AdminDeps{Orders: orders})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPut, "/admin/orders/ORD-20250120-001/status", `{"status":" Picked-Up "}`, domain.UserRoleStaff))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.OrderID != "ORD-20250120-001" || got.Status != domain.OrderStatusPickedUp || got.ActorID != "staff-1" {
		t.Fatalf("unexpected command %+v", got)
	}
	var order orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.StatusLabel != "Picked Up" {
		t.Fatalf("unexpected label %q", order.StatusLabel)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPut, "/admin/orders/ORD-20250120-001/status", `{"status":"pending"}`, domain.UserRoleStaff))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAdminHandlersCatalogUpdates(t *testing.T) {
	var pricing services.UpdateGarmentPricingCommand
	var active services.SetServiceActiveCommand
	catalog := &stubCatalogService{
		pricingFunc: func(_ context.Context, cmd services.UpdateGarmentPricingCommand) (services.GarmentType, error) {
			pricing = cmd
			return sampleCatalog().garments[0], nil
		},
		activeFunc: func(_ context.Context, cmd services.SetServiceActiveCommand) (services.Service, error) {
			active = cmd
			return sampleCatalog().services[1], nil
		},
	}
	router := newAdminRouter(t, AdminDeps{Catalog: catalog})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPatch, "/admin/garment-types/tshirt/pricing", `{"wash":35}`, domain.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if pricing.GarmentTypeID != "tshirt" || pricing.Wash == nil || *pricing.Wash != 35 || pricing.Iron != nil {
		t.Fatalf("unexpected pricing command %+v", pricing)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPatch, "/admin/services/steam-press", `{}`, domain.UserRoleAdmin))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without active flag, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPatch, "/admin/services/steam-press", `{"active":true}`, domain.UserRoleAdmin))
	if rr.Code != http.StatusOK || active.ServiceID != "steam-press" || !active.Active {
		t.Fatalf("unexpected service toggle %d %+v", rr.Code, active)
	}
}

func TestAdminHandlersOffers(t *testing.T) {
	var created services.CreateOfferCommand
	offers := &stubOfferService{
		offers: []services.Offer{{ID: "offer-1", Title: "Ten off", IsActive: true}},
		createFunc: func(_ context.Context, cmd services.CreateOfferCommand) (services.Offer, error) {
			created = cmd
			return services.Offer{ID: "offer-2", Title: cmd.Title, DiscountType: cmd.DiscountType, DiscountValue: cmd.DiscountValue, IsActive: cmd.IsActive}, nil
		},
		updateFunc: func(_ context.Context, cmd services.UpdateOfferCommand) (services.Offer, error) {
			if cmd.DiscountType == nil || *cmd.DiscountType != domain.DiscountFixed || cmd.Title != nil {
				return services.Offer{}, fmt.Errorf("%w: unexpected update", services.ErrOfferInvalidInput)
			}
			return services.Offer{ID: cmd.OfferID, DiscountType: *cmd.DiscountType}, nil
		},
	}
	router := newAdminRouter(t, AdminDeps{Offers: offers})

	rr := httptest.NewRecorder()
	body := `{"title":"Weekend","discountType":"percentage","discountValue":15,"validFrom":"2025-01-01T00:00:00Z","validTo":"2025-02-01T00:00:00Z"}`
	router.ServeHTTP(rr, adminRequest(t, http.MethodPost, "/admin/offers", body, domain.UserRoleAdmin))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/admin/offers/offer-2" {
		t.Fatalf("unexpected location %q", loc)
	}
	if !created.IsActive || created.DiscountType != domain.DiscountPercentage || created.ActorID != "staff-1" {
		t.Fatalf("expected new offers to default to active, got %+v", created)
	}
	if !created.ValidTo.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected validTo %s", created.ValidTo)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPatch, "/admin/offers/offer-1", `{"discountType":"fixed"}`, domain.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodDelete, "/admin/offers/offer-1", "", domain.UserRoleAdmin))
	if rr.Code != http.StatusNoContent || len(offers.deleted) != 1 {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodDelete, "/admin/offers/missing", "", domain.UserRoleAdmin))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAdminHandlersUsersAndBroadcast(t *testing.T) {
	users := &stubUserService{users: []services.UserProfile{
		{ID: "user-1", Email: "asha@example.com", Role: domain.UserRoleUser},
		{ID: "staff-1", Email: "ops@example.com", Role: domain.UserRoleStaff},
	}}
	notifications := &stubNotificationService{}
	router := newAdminRouter(t, AdminDeps{Users: users, Notifications: notifications})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodGet, "/admin/users", "", domain.UserRoleAdmin))
	var list listResponse[profilePayload]
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 2 || list.Items[1].Role != "staff" {
		t.Fatalf("unexpected users %+v", list.Items)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, adminRequest(t, http.MethodPost, "/admin/notifications", `{"title":"Closed on Sunday","message":"See you Monday"}`, domain.UserRoleAdmin))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if len(notifications.notify) != 1 || notifications.notify[0].UserID != "" || notifications.notify[0].Type != domain.NotificationInfo {
		t.Fatalf("unexpected broadcast %+v", notifications.notify)
	}
	var payload notificationPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Broadcast {
		t.Fatalf("expected broadcast payload")
	}
}
