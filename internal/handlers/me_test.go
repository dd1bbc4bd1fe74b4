package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

func newMeRouter(users *stubUserService, notifications *stubNotificationService) chi.Router {
	router := chi.NewRouter()
	router.Route("/me", NewMeHandlers(nil, users, notifications).Routes)
	return router
}

func TestMeHandlersProfileEnsuresUser(t *testing.T) {
	users := &stubUserService{}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: "user-1", Email: "asha@example.com", Name: "Asha", Role: domain.UserRoleUser}))

	rr := httptest.NewRecorder()
	newMeRouter(users, &stubNotificationService{}).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(users.ensured) != 1 || users.ensured[0].Email != "asha@example.com" || users.ensured[0].Role != domain.UserRoleUser {
		t.Fatalf("unexpected ensure calls %+v", users.ensured)
	}
	var profile profilePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.ID != "user-1" || profile.Name != "Asha" || profile.Role != "user" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestMeHandlersNotifications(t *testing.T) {
	notifications := &stubNotificationService{list: []services.Notification{
		{ID: "n-1", Title: "Order picked up", Type: domain.NotificationOrder, UserID: "user-1", CreatedAt: testNow},
		{ID: "n-2", Title: "Weekend offer", Type: domain.NotificationOffer, IsRead: true, CreatedAt: testNow},
		{ID: "n-3", Title: "Maintenance", Type: domain.NotificationSystem, CreatedAt: testNow},
	}}
	rr := httptest.NewRecorder()
	newMeRouter(&stubUserService{}, notifications).ServeHTTP(rr, authedRequest(http.MethodGet, "/me/notifications?pageSize=2", "", "user-1", domain.UserRoleUser))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Items         []notificationPayload `json:"items"`
		NextPageToken string                `json:"nextPageToken"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 || body.NextPageToken == "" || body.UnreadCount != 2 {
		t.Fatalf("unexpected notifications %+v", body)
	}
	if body.Items[0].Broadcast || !body.Items[1].Broadcast {
		t.Fatalf("expected broadcast flag to follow the recipient, got %+v", body.Items)
	}
}

func TestMeHandlersNotificationActions(t *testing.T) {
	notifications := &stubNotificationService{}
	router := newMeRouter(&stubUserService{}, notifications)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/me/notifications/n-1/read", "", "user-1", domain.UserRoleUser))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodDelete, "/me/notifications/n-2", "", "staff-1", domain.UserRoleStaff))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if len(notifications.actions) != 2 {
		t.Fatalf("expected two actions, got %d", len(notifications.actions))
	}
	if got := notifications.actions[0]; got.NotificationID != "n-1" || got.UserID != "user-1" || got.AllowBroadcast {
		t.Fatalf("unexpected user action %+v", got)
	}
	if got := notifications.actions[1]; got.NotificationID != "n-2" || !got.AllowBroadcast {
		t.Fatalf("expected staff delete to allow broadcasts, got %+v", got)
	}

	notifications.err = services.ErrNotificationForbidden
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodDelete, "/me/notifications/n-2", "", "user-1", domain.UserRoleUser))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
