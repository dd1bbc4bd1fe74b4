package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/httpx"
	"github.com/laundryhub/api/internal/platform/requestctx"
)

const defaultHeartbeat = 25 * time.Second

// ChangeHandlers stream change notices as server-sent events. Events carry only the
// collection key and record id; clients re-read what they display.
type ChangeHandlers struct {
	authn     *auth.Authenticator
	feed      changefeed.Subscriber
	heartbeat time.Duration
}

func NewChangeHandlers(authn *auth.Authenticator, feed changefeed.Subscriber, heartbeat time.Duration) *ChangeHandlers {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &ChangeHandlers{authn: authn, feed: feed, heartbeat: heartbeat}
}

// Routes wires GET /changes. The optional keys query parameter filters by collection,
// e.g. ?keys=orders,offers.
func (h *ChangeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.stream)
}

func (h *ChangeHandlers) stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.feed == nil {
		unavailable(ctx, w, "changefeed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("streaming_unsupported", "streaming is not supported", http.StatusInternalServerError))
		return
	}
	filter := parseKeyFilter(r.URL.Query().Get("keys"))

	changes, err := h.feed.Subscribe(ctx)
	if err != nil {
		requestctx.Logger(ctx).Warn("changefeed subscribe failed", zap.Error(err))
		unavailable(ctx, w, "changefeed")
		return
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, open := <-changes:
			if !open {
				return
			}
			if len(filter) > 0 && !filter[change.Key] {
				continue
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Key, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func parseKeyFilter(raw string) map[string]bool {
	filter := make(map[string]bool)
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			filter[key] = true
		}
	}
	return filter
}
