package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func redirectServer(code int, location string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if location != "" {
			w.Header().Set("Location", location)
		}
		w.WriteHeader(code)
	}))
}

func TestHTTPSRedirectProbe_Permanent(t *testing.T) {
	ts := redirectServer(http.StatusMovedPermanently, "https://example.com/")
	defer ts.Close()

	res := httpsRedirectProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for 301 to HTTPS, got %q", res.Remark)
	}
}

func TestHTTPSRedirectProbe_Temporary(t *testing.T) {
	ts := redirectServer(http.StatusFound, "https://example.com/")
	defer ts.Close()

	res := httpsRedirectProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for 302 to HTTPS, got %q", res.Remark)
	}
	if !strings.Contains(res.Remark, "301") {
		t.Errorf("Expected remark to recommend a 301 redirect, got %q", res.Remark)
	}
}

func TestHTTPSRedirectProbe_NoRedirect(t *testing.T) {
	ts := redirectServer(http.StatusOK, "")
	defer ts.Close()

	res := httpsRedirectProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result when HTTP serves content directly")
	}
}

func TestHTTPSRedirectProbe_RedirectToHTTP(t *testing.T) {
	ts := redirectServer(http.StatusMovedPermanently, "http://other.example.com/")
	defer ts.Close()

	res := httpsRedirectProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result for redirect to plain HTTP")
	}
}

func TestHTTPSOperationalProbe_UntrustedCertificate(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// The verifying client must reject the self-signed test certificate.
	res := httpsOperationalProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result for self-signed certificate")
	}
	if !strings.Contains(res.Remark, "certificate") {
		t.Errorf("Expected certificate-related remark, got %q", res.Remark)
	}
}
