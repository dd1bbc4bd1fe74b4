package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laundryhub/api/internal/platform/changefeed"
)

// readEvent returns the next non-comment SSE frame as event name and data.
func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestChangeHandlersStreamsFilteredChanges(t *testing.T) {
	broker := changefeed.NewMemoryBroker(8)
	defer broker.Close()

	router := chi.NewRouter()
	router.Route("/changes", NewChangeHandlers(nil, broker, time.Hour).Routes)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/changes?keys=orders,offers", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || line != ": connected\n" {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	_ = broker.Publish(ctx, changefeed.Change{Key: changefeed.KeyCart, ID: "user-1", Op: changefeed.OpUpdate, At: testNow})
	_ = broker.Publish(ctx, changefeed.Change{Key: changefeed.KeyOrders, ID: "ORD-20250120-001", Op: changefeed.OpCreate, At: testNow})

	event, data := readEvent(t, reader)
	if event != changefeed.KeyOrders {
		t.Fatalf("expected orders event, got %q", event)
	}
	var change changefeed.Change
	if err := json.Unmarshal([]byte(data), &change); err != nil {
		t.Fatalf("decode change: %v", err)
	}
	if change.ID != "ORD-20250120-001" || change.Op != changefeed.OpCreate || !change.At.Equal(testNow) {
		t.Fatalf("unexpected change %+v", change)
	}
}

func TestChangeHandlersHeartbeat(t *testing.T) {
	broker := changefeed.NewMemoryBroker(1)
	defer broker.Close()

	router := chi.NewRouter()
	router.Route("/changes", NewChangeHandlers(nil, broker, 20*time.Millisecond).Routes)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/changes", nil)
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for i := 0; i < 10; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if line == ": ping\n" {
			return
		}
	}
	t.Fatalf("expected a heartbeat comment")
}

func TestParseKeyFilter(t *testing.T) {
	filter := parseKeyFilter(" orders, ,offers ")
	if len(filter) != 2 || !filter["orders"] || !filter["offers"] {
		t.Fatalf("unexpected filter %v", filter)
	}
	if len(parseKeyFilter("")) != 0 {
		t.Fatalf("expected empty filter")
	}
}
