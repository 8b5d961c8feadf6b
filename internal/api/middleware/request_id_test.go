package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())
		if requestID == "" {
			t.Error("expected request ID to be set in context")
		}
		if len(requestID) != 16 {
			t.Errorf("expected request ID length 16, got %d", len(requestID))
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	responseID := rec.Header().Get("X-Request-ID")
	if responseID == "" {
		t.Error("expected X-Request-ID header in response")
	}
	if len(responseID) != 16 {
		t.Errorf("expected X-Request-ID length 16, got %d", len(responseID))
	}
}

func TestRequestIDHonorsClientHeader(t *testing.T) {
	expectedID := "client-request-123"
	var actualID string

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actualID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", expectedID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if actualID != expectedID {
		t.Errorf("expected request ID %q, got %q", expectedID, actualID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != expectedID {
		t.Errorf("expected X-Request-ID header %q, got %q", expectedID, got)
	}
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty string, got %q", id)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	ids := make(map[string]bool)

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[GetRequestID(r.Context())] = true
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	if len(ids) != 100 {
		t.Errorf("expected 100 unique IDs, got %d", len(ids))
	}
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	if id1 == "" || len(id1) != 16 {
		t.Errorf("expected 16-character ID, got %q", id1)
	}
	if id1 == id2 {
		t.Error("expected distinct IDs")
	}
	for _, c := range id1 {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("expected hex character, got %c", c)
		}
	}
}
