package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/services"
)

func TestNewRouterDefaultMounts(t *testing.T) {
	healthHandlers := NewHealthHandlers(
		WithHealthSystemService(&stubSystemService{report: services.SystemHealthReport{
			Status: domain.HealthStatusOK,
			Checks: map[string]domain.SystemHealthCheck{"store": {Status: domain.HealthStatusOK}},
		}}),
		WithHealthClock(func() time.Time { return testNow }),
	)
	router := NewRouter(WithHealthHandlers(healthHandlers))

	tests := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{name: "healthz", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "readyz", method: http.MethodGet, path: "/readyz", status: http.StatusOK},
		{name: "unconfigured group", method: http.MethodGet, path: "/api/v1/cart", status: http.StatusNotImplemented, code: "not_implemented"},
		{name: "unconfigured changes", method: http.MethodGet, path: "/api/v1/changes", status: http.StatusNotImplemented, code: "not_implemented"},
		{name: "unknown route", method: http.MethodGet, path: "/nope", status: http.StatusNotFound, code: errorNotFoundCode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rr.Code, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected JSON content type, got %q", ct)
			}
			if tc.code == "" {
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != tc.code {
				t.Fatalf("expected error %q, got %v", tc.code, body["error"])
			}
		})
	}
}

func TestNewRouterMountsRegistrars(t *testing.T) {
	router := NewRouter(WithPublicRoutes(NewPublicHandlers(sampleCatalog(), &stubOfferService{}).Routes))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/public/garment-types", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Items []garmentTypePayload `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Pricing.WashIron != 40 {
		t.Fatalf("unexpected garment types %+v", body.Items)
	}
}
