package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/services"
)

func TestHealthHandlersHealthz(t *testing.T) {
	handlers := NewHealthHandlers(
		WithHealthBuildInfo(services.BuildInfo{Version: "1.4.0", CommitSHA: "abc123", Environment: "prod", StartedAt: testNow.Add(-90 * time.Second)}),
		WithHealthClock(func() time.Time { return testNow }),
	)

	rr := httptest.NewRecorder()
	handlers.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != domain.HealthStatusOK || body["version"] != "1.4.0" || body["commitSha"] != "abc123" || body["uptime"] != "1m30s" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHealthHandlersReadyz(t *testing.T) {
	tests := []struct {
		name    string
		svc     *stubSystemService
		status  int
		details []string
	}{
		{
			name: "healthy",
			svc: &stubSystemService{report: services.SystemHealthReport{
				Status: domain.HealthStatusOK,
				Checks: map[string]domain.SystemHealthCheck{"store": {Status: domain.HealthStatusOK, Latency: 4 * time.Millisecond}},
			}},
			status: http.StatusOK,
		},
		{
			name: "degraded",
			svc: &stubSystemService{report: services.SystemHealthReport{
				Status: domain.HealthStatusDegraded,
				Checks: map[string]domain.SystemHealthCheck{
					"store":      {Status: domain.HealthStatusOK},
					"changefeed": {Status: domain.HealthStatusError, Error: "redis unreachable"},
				},
			}},
			status:  http.StatusServiceUnavailable,
			details: []string{"changefeed: redis unreachable"},
		},
		{
			name:    "report error",
			svc:     &stubSystemService{err: errors.New("health repository unavailable")},
			status:  http.StatusServiceUnavailable,
			details: []string{"health repository unavailable"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handlers := NewHealthHandlers(WithHealthSystemService(tc.svc), WithHealthClock(func() time.Time { return testNow }))
			rr := httptest.NewRecorder()
			handlers.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			var body struct {
				Details []string `json:"details"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(body.Details) != len(tc.details) {
				t.Fatalf("expected details %v, got %v", tc.details, body.Details)
			}
			for i := range tc.details {
				if body.Details[i] != tc.details[i] {
					t.Fatalf("expected details %v, got %v", tc.details, body.Details)
				}
			}
		})
	}
}
