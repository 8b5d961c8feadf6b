package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func cookieServer(setCookies ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, c := range setCookies {
			w.Header().Add("Set-Cookie", c)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestParseSetCookie(t *testing.T) {
	c := parseSetCookie("sessionid=abc123; Path=/; Secure; HttpOnly; SameSite=Lax")

	if c.name != "sessionid" {
		t.Errorf("name = %q, want sessionid", c.name)
	}
	if !c.has("secure") || !c.has("httponly") {
		t.Error("Expected secure and httponly attributes to be detected")
	}
	if c.attrs["samesite"] != "Lax" {
		t.Errorf("samesite = %q, want Lax", c.attrs["samesite"])
	}
}

func TestCookieFlagsProbe_NoCookies(t *testing.T) {
	ts := cookieServer()
	defer ts.Close()

	res := cookieFlagsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result with no cookies, got %q", res.Remark)
	}
}

func TestCookieFlagsProbe_AllFlagsSet(t *testing.T) {
	ts := cookieServer("sessionid=abc; Secure; HttpOnly")
	defer ts.Close()

	res := cookieFlagsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result with full flags, got %q", res.Remark)
	}
}

func TestCookieFlagsProbe_SessionCookieMissingFlags(t *testing.T) {
	ts := cookieServer("sessionid=abc; Path=/")
	defer ts.Close()

	res := cookieFlagsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	// A session-looking cookie without flags is a hard failure.
	if res.Compliant {
		t.Error("Expected non-compliant result for unprotected session cookie")
	}
	if res.Severity != SeverityHigh {
		t.Errorf("Expected high severity, got %s", res.Severity)
	}
}

func TestCookieFlagsProbe_StaticCookieMissingFlags(t *testing.T) {
	ts := cookieServer("theme=dark; Path=/")
	defer ts.Close()

	res := cookieFlagsProbe(context.Background(), testTarget(t, ts.URL), Options{})

	// No session indicator in the name: downgraded to a warning.
	if !res.Compliant {
		t.Errorf("Expected compliant-with-warning result, got %q", res.Remark)
	}
	if res.Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %s", res.Severity)
	}
}

func TestSameSiteProbe_AllStrict(t *testing.T) {
	ts := cookieServer("sessionid=abc; Secure; HttpOnly; SameSite=Strict")
	defer ts.Close()

	res := sameSiteProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant result for SameSite=Strict, got %q", res.Remark)
	}
}

func TestSameSiteProbe_SessionCookieMissingSameSite(t *testing.T) {
	ts := cookieServer("authtoken=xyz; Secure; HttpOnly")
	defer ts.Close()

	res := sameSiteProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if res.Compliant {
		t.Error("Expected non-compliant result for session cookie without SameSite")
	}
}

func TestSameSiteProbe_StaticCookieSameSiteNone(t *testing.T) {
	ts := cookieServer("pref=1; SameSite=None")
	defer ts.Close()

	res := sameSiteProbe(context.Background(), testTarget(t, ts.URL), Options{})

	if !res.Compliant {
		t.Errorf("Expected compliant-with-warning result, got %q", res.Remark)
	}
	if res.Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %s", res.Severity)
	}
}
