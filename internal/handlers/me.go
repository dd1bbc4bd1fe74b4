package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

// MeHandlers serve the caller's profile and notifications.
type MeHandlers struct {
	authn         *auth.Authenticator
	users         services.UserService
	notifications services.NotificationService
}

func NewMeHandlers(authn *auth.Authenticator, users services.UserService, notifications services.NotificationService) *MeHandlers {
	return &MeHandlers{authn: authn, users: users, notifications: notifications}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.getProfile)
	r.Get("/notifications", h.listNotifications)
	r.Post("/notifications/{notificationId}/read", h.markRead)
	r.Delete("/notifications/{notificationId}", h.deleteNotification)
}

// getProfile returns the stored profile, creating it from the token claims on first sight.
func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		unavailable(ctx, w, "user")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	profile, err := h.users.EnsureProfile(ctx, services.EnsureProfileCommand{
		UserID: identity.UID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   identity.Role,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProfilePayload(profile))
}

func (h *MeHandlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.notifications == nil {
		unavailable(ctx, w, "notification")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	params, ok := pageParams(ctx, w, r)
	if !ok {
		return
	}
	list, err := h.notifications.ListForUser(ctx, identity.UID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	page := paged(mapSlice(list, buildNotificationPayload), params)
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"items":         page.Items,
		"nextPageToken": page.NextPageToken,
		"unreadCount":   unread,
	})
}

func (h *MeHandlers) markRead(w http.ResponseWriter, r *http.Request) {
	h.notificationAction(w, r, func(svc services.NotificationService) func(context.Context, services.NotificationActionCommand) error {
		return svc.MarkRead
	})
}

// deleteNotification removes a notification. Only staff may delete broadcasts.
func (h *MeHandlers) deleteNotification(w http.ResponseWriter, r *http.Request) {
	h.notificationAction(w, r, func(svc services.NotificationService) func(context.Context, services.NotificationActionCommand) error {
		return svc.Delete
	})
}

func (h *MeHandlers) notificationAction(w http.ResponseWriter, r *http.Request, pick func(services.NotificationService) func(context.Context, services.NotificationActionCommand) error) {
	ctx := r.Context()
	if h.notifications == nil {
		unavailable(ctx, w, "notification")
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	err := pick(h.notifications)(ctx, services.NotificationActionCommand{
		UserID:         identity.UID,
		NotificationID: chi.URLParam(r, "notificationId"),
		AllowBroadcast: identity.IsStaff(),
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
