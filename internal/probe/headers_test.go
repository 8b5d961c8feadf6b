package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// testTarget parses the httptest server URL into a Target.
func testTarget(t *testing.T, serverURL string) *Target {
	t.Helper()
	tgt, err := ParseTarget(serverURL)
	if err != nil {
		t.Fatalf("ParseTarget(%q) failed: %v", serverURL, err)
	}
	return tgt
}

func headerServer(headers map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestServerBannerProbe_VersionLeaked(t *testing.T) {
	ts := headerServer(map[string]string{"Server": "Apache/2.4.41 (Ubuntu)"})
	defer ts.Close()

	res := serverBannerProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result for version-bearing Server header")
	}
	if res.Severity != SeverityHigh {
		t.Errorf("Expected high severity, got %s", res.Severity)
	}
	if !strings.Contains(res.Remark, "Apache/2.4.41") {
		t.Errorf("Expected remark to quote the banner, got %q", res.Remark)
	}
}

func TestServerBannerProbe_GenericBanner(t *testing.T) {
	ts := headerServer(map[string]string{"Server": "nginx"})
	defer ts.Close()

	res := serverBannerProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for generic banner, got %q", res.Remark)
	}
}

func TestServerBannerProbe_NoHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Go adds no Server header by default.
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	res := serverBannerProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result without a Server header, got %q", res.Remark)
	}
}

func TestSoftwareFingerprintProbe_PoweredByLeak(t *testing.T) {
	ts := headerServer(map[string]string{"X-Powered-By": "PHP"})
	defer ts.Close()

	res := softwareFingerprintProbe(context.Background(), testTarget(t, ts.URL), Options{})

	// X-Powered-By leaks the stack even with no version number.
	if res.Compliant {
		t.Error("Expected non-compliant result for X-Powered-By header")
	}
}

func TestSoftwareFingerprintProbe_Clean(t *testing.T) {
	ts := headerServer(nil)
	defer ts.Close()

	res := softwareFingerprintProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result without fingerprint headers, got %q", res.Remark)
	}
}

func TestEtagProbe_InodeFormat(t *testing.T) {
	ts := headerServer(map[string]string{"ETag": `"680c1-45-42a7c8d8"`})
	defer ts.Close()

	res := etagProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result for inode-style E-Tag")
	}
}

func TestEtagProbe_HashFormat(t *testing.T) {
	ts := headerServer(map[string]string{"ETag": `W/"5f8a7b3c9d2e1"`})
	defer ts.Close()

	res := etagProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for hash-style E-Tag, got %q", res.Remark)
	}
}

func TestXSSProtectionProbe(t *testing.T) {
	cases := []struct {
		name          string
		value         string
		wantCompliant bool
		wantSeverity  Severity
	}{
		{"block mode", "1; mode=block", true, SeverityInfo},
		{"enabled without block", "1", true, SeverityWarning},
		{"explicitly disabled", "0", false, SeverityHigh},
		{"missing", "", false, SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.value != "" {
				headers["X-XSS-Protection"] = tc.value
			}
			ts := headerServer(headers)
			defer ts.Close()

			res := xssProtectionProbe(context.Background(), testTarget(t, ts.URL), Options{})

			if res.Compliant != tc.wantCompliant {
				t.Errorf("Compliant = %v, want %v (remark %q)", res.Compliant, tc.wantCompliant, res.Remark)
			}
			if res.Severity != tc.wantSeverity {
				t.Errorf("Severity = %s, want %s", res.Severity, tc.wantSeverity)
			}
		})
	}
}

func TestFrameOptionsProbe(t *testing.T) {
	cases := []struct {
		name          string
		value         string
		wantCompliant bool
	}{
		{"deny", "DENY", true},
		{"sameorigin lowercase", "sameorigin", true},
		{"deprecated allow-from", "ALLOW-FROM https://example.com", false},
		{"missing", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.value != "" {
				headers["X-Frame-Options"] = tc.value
			}
			ts := headerServer(headers)
			defer ts.Close()

			res := frameOptionsProbe(context.Background(), testTarget(t, ts.URL), Options{})

			if res.Compliant != tc.wantCompliant {
				t.Errorf("Compliant = %v, want %v (remark %q)", res.Compliant, tc.wantCompliant, res.Remark)
			}
		})
	}
}

func TestHSTSProbe_StrongPolicy(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	res := hstsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for strong HSTS, got %q", res.Remark)
	}
	if res.Severity != SeverityInfo {
		t.Errorf("Expected info severity, got %s", res.Severity)
	}
}

func TestHSTSProbe_ShortMaxAge(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=3600")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	res := hstsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant-with-warning result, got %q", res.Remark)
	}
	if res.Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %s", res.Severity)
	}
}

func TestHSTSProbe_Missing(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	res := hstsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result when HSTS is missing")
	}
}

func TestParseHSTS(t *testing.T) {
	maxAge, sub := parseHSTS("max-age=31536000; includeSubDomains; preload")
	if maxAge != 31536000 || !sub {
		t.Errorf("parseHSTS = (%d, %v), want (31536000, true)", maxAge, sub)
	}

	maxAge, sub = parseHSTS("max-age=0")
	if maxAge != 0 || sub {
		t.Errorf("parseHSTS = (%d, %v), want (0, false)", maxAge, sub)
	}
}

func TestCSPProbe(t *testing.T) {
	cases := []struct {
		name          string
		value         string
		wantCompliant bool
		wantSeverity  Severity
	}{
		{"strong policy", "default-src 'self'; script-src 'self'", true, SeverityInfo},
		{"unsafe-inline", "default-src 'self'; script-src 'unsafe-inline'", true, SeverityWarning},
		{"missing", "", false, SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.value != "" {
				headers["Content-Security-Policy"] = tc.value
			}
			ts := headerServer(headers)
			defer ts.Close()

			res := cspProbe(context.Background(), testTarget(t, ts.URL), Options{})

			if res.Compliant != tc.wantCompliant {
				t.Errorf("Compliant = %v, want %v", res.Compliant, tc.wantCompliant)
			}
			if res.Severity != tc.wantSeverity {
				t.Errorf("Severity = %s, want %s", res.Severity, tc.wantSeverity)
			}
		})
	}
}

func TestCacheControlProbe(t *testing.T) {
	cases := []struct {
		name          string
		value         string
		wantCompliant bool
		wantSeverity  Severity
	}{
		{"strong", "no-store, no-cache, must-revalidate", true, SeverityInfo},
		{"partial", "max-age=3600", true, SeverityWarning},
		{"missing", "", false, SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.value != "" {
				headers["Cache-Control"] = tc.value
			}
			ts := headerServer(headers)
			defer ts.Close()

			res := cacheControlProbe(context.Background(), testTarget(t, ts.URL), Options{})

			if res.Compliant != tc.wantCompliant {
				t.Errorf("Compliant = %v, want %v (remark %q)", res.Compliant, tc.wantCompliant, res.Remark)
			}
			if res.Severity != tc.wantSeverity {
				t.Errorf("Severity = %s, want %s", res.Severity, tc.wantSeverity)
			}
		})
	}
}

func TestCSSInjectionProbe(t *testing.T) {
	cases := []struct {
		name          string
		headers       map[string]string
		wantCompliant bool
		wantSeverity  Severity
	}{
		{
			"both protections",
			map[string]string{
				"Content-Security-Policy": "style-src 'self'",
				"X-Content-Type-Options":  "nosniff",
			},
			true, SeverityInfo,
		},
		{
			"nosniff only",
			map[string]string{"X-Content-Type-Options": "nosniff"},
			true, SeverityWarning,
		},
		{
			"neither",
			nil,
			false, SeverityHigh,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := headerServer(tc.headers)
			defer ts.Close()

			res := cssInjectionProbe(context.Background(), testTarget(t, ts.URL), Options{})

			if res.Compliant != tc.wantCompliant {
				t.Errorf("Compliant = %v, want %v (remark %q)", res.Compliant, tc.wantCompliant, res.Remark)
			}
			if res.Severity != tc.wantSeverity {
				t.Errorf("Severity = %s, want %s", res.Severity, tc.wantSeverity)
			}
		})
	}
}
