package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func roleRequest(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/abc/refund", nil)
	if role != "" {
		req = req.WithContext(WithRole(req.Context(), role))
	}
	return req
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, roleRequest("admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, roleRequest("customer"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer expected 403, got %d", rec.Code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	handler := RequireAnyRole(nil, "vendor", "admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, role := range []string{"vendor", "admin"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(role))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", role, rec.Code)
		}
	}

	for _, role := range []string{"customer", ""} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(role))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%q expected 403, got %d", role, rec.Code)
		}
	}
}
