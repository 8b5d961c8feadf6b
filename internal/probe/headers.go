package probe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern matches dotted version numbers such as 2.4 or 7.4.33 in
// banner headers.
var versionPattern = regexp.MustCompile(`\d+\.\d+`)

// fingerprintHeaders are response headers that disclose the software stack.
var fingerprintHeaders = []string{
	"X-Powered-By",
	"X-Generator",
	"X-AspNet-Version",
	"X-AspNetMvc-Version",
	"X-Powered-CMS",
}

// inodePattern matches Apache inode-style ETags ("680c1-45-42a7c8d8") that
// leak filesystem metadata.
var inodePattern = regexp.MustCompile(`^[a-fA-F0-9]+-[a-fA-F0-9]+-[a-fA-F0-9]+$`)

// serverBannerProbe checks the Server header for version disclosure.
func serverBannerProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.server-banner", 4

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Could not retrieve headers for analysis.", err)
	}
	defer drainAndClose(resp)

	server := resp.Header.Get("Server")
	switch {
	case server == "":
		return compliant(id, catalogID, "Server header is disabled. No information leaked.")
	case !versionPattern.MatchString(server) && !strings.Contains(server, "("):
		return compliant(id, catalogID,
			fmt.Sprintf("Server header is generic (%q). Exact version is hidden.", server))
	default:
		res := failure(id, catalogID,
			fmt.Sprintf("Sensitive information leaked in Server header: %q. Version numbers must be hidden.", server), nil)
		res.Evidence = map[string]any{"server": server}
		return res
	}
}

// softwareFingerprintProbe checks X-Powered-By and friends for stack leaks.
func softwareFingerprintProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.software-fingerprint", 5

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze software fingerprint headers.", err)
	}
	defer drainAndClose(resp)

	var leaks []string
	for _, name := range fingerprintHeaders {
		value := resp.Header.Get(name)
		if value == "" {
			continue
		}
		// X-Powered-By is a leak even without a version number.
		if versionPattern.MatchString(value) || name == "X-Powered-By" {
			leaks = append(leaks, name+": "+value)
		}
	}

	if len(leaks) == 0 {
		return compliant(id, catalogID, "No software or CMS version information detected in HTTP headers.")
	}

	res := failure(id, catalogID,
		fmt.Sprintf("Technology stack info leaked: %s. Disable version disclosure.", strings.Join(leaks, ", ")), nil)
	res.Evidence = map[string]any{"leaks": leaks}
	return res
}

// etagProbe checks the ETag header for inode-style filesystem leakage.
func etagProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.etag", 6

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze E-Tag header.", err)
	}
	defer drainAndClose(resp)

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return compliant(id, catalogID, "E-Tag header is disabled. No filesystem info leaked.")
	}

	clean := strings.Trim(strings.TrimPrefix(etag, "W/"), `"`)
	if inodePattern.MatchString(clean) {
		res := failure(id, catalogID,
			fmt.Sprintf("E-Tag %q appears to leak inode/filesystem info.", etag), nil)
		res.Evidence = map[string]any{"etag": etag}
		return res
	}

	return compliant(id, catalogID, "E-Tag uses a hash format without leaking inode data.")
}

// xssProtectionProbe checks the legacy X-XSS-Protection header.
func xssProtectionProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.x-xss-protection", 7

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Could not retrieve headers for XSS analysis.", err)
	}
	defer drainAndClose(resp)

	value := strings.ToLower(strings.TrimSpace(resp.Header.Get("X-XSS-Protection")))
	switch {
	case value == "1; mode=block":
		return compliant(id, catalogID, "X-XSS-Protection is enabled in block mode.")
	case strings.Contains(value, "1"):
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark: fmt.Sprintf("X-XSS-Protection is enabled (%q) but not in block mode; sanitization can be bypassed.", value),
		}
	case value == "0":
		return failure(id, catalogID, "XSS filter is explicitly disabled (X-XSS-Protection: 0).", nil)
	default:
		return failure(id, catalogID, "X-XSS-Protection header is missing. Legacy browsers remain exposed to reflected XSS.", nil)
	}
}

// frameOptionsProbe checks X-Frame-Options for clickjacking protection.
func frameOptionsProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.x-frame-options", 8

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to perform clickjacking analysis.", err)
	}
	defer drainAndClose(resp)

	value := strings.ToUpper(strings.TrimSpace(resp.Header.Get("X-Frame-Options")))
	switch {
	case value == "DENY":
		return compliant(id, catalogID, "Clickjacking protection is fully enabled (X-Frame-Options: DENY).")
	case value == "SAMEORIGIN":
		return compliant(id, catalogID, "Framing is restricted to the same origin (X-Frame-Options: SAMEORIGIN).")
	case strings.Contains(value, "ALLOW-FROM"):
		return failure(id, catalogID, "Uses the deprecated ALLOW-FROM directive, unsupported by modern browsers.", nil)
	default:
		return failure(id, catalogID, "X-Frame-Options header is missing. The site is exposed to clickjacking.", nil)
	}
}

// hstsProbe checks Strict-Transport-Security over HTTPS.
func hstsProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.hsts", 9

	// HSTS is only meaningful over HTTPS.
	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.HTTPSURL(), opts)
	if err != nil {
		return failure(id, catalogID, "Could not analyze the HSTS header.", err)
	}
	defer drainAndClose(resp)

	hsts := resp.Header.Get("Strict-Transport-Security")
	if hsts == "" {
		return failure(id, catalogID, "HSTS header is missing. Site is exposed to SSL stripping attacks.", nil)
	}

	maxAge, includeSubdomains := parseHSTS(hsts)
	switch {
	case maxAge >= 31536000 && includeSubdomains:
		return compliant(id, catalogID,
			fmt.Sprintf("Strong HSTS policy detected (max-age=%d, includeSubDomains).", maxAge))
	case maxAge > 0:
		var warnings []string
		if maxAge < 15768000 {
			warnings = append(warnings, "max-age is less than 6 months")
		}
		if !includeSubdomains {
			warnings = append(warnings, "subdomains are not protected")
		}
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark:   "HSTS is enabled with warnings: " + strings.Join(warnings, "; ") + ".",
			Evidence: map[string]any{"header": hsts},
		}
	default:
		return failure(id, catalogID, "HSTS is explicitly disabled (max-age=0).", nil)
	}
}

// parseHSTS extracts max-age and includeSubDomains from an HSTS header value.
func parseHSTS(value string) (maxAge int, includeSubdomains bool) {
	for _, directive := range strings.Split(value, ";") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		if directive == "includesubdomains" {
			includeSubdomains = true
			continue
		}
		if after, ok := strings.CutPrefix(directive, "max-age="); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(after)); err == nil {
				maxAge = n
			}
		}
	}
	return maxAge, includeSubdomains
}

// cspWeakKeywords weaken a Content-Security-Policy enough to downgrade the
// verdict to a warning.
var cspWeakKeywords = []string{"unsafe-inline", "unsafe-eval", "*"}

// cspProbe checks for presence and strength of Content-Security-Policy.
func cspProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.csp", 10

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze the CSP header.", err)
	}
	defer drainAndClose(resp)

	csp := resp.Header.Get("Content-Security-Policy")
	if csp == "" {
		return failure(id, catalogID, "No CSP header detected. The site is highly exposed to XSS and injection attacks.", nil)
	}

	lower := strings.ToLower(csp)
	var weak []string
	for _, kw := range cspWeakKeywords {
		if strings.Contains(lower, kw) {
			weak = append(weak, kw)
		}
	}

	if len(weak) > 0 {
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark:   fmt.Sprintf("CSP is enabled but contains weak directives (%s), reducing XSS protection.", strings.Join(weak, ", ")),
			Evidence: map[string]any{"csp": clip(csp)},
		}
	}

	return compliant(id, catalogID, "Strong Content-Security-Policy detected.")
}

// cacheControlProbe checks anti-caching headers for sensitive content.
func cacheControlProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.cache-control", 13

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze cache headers.", err)
	}
	defer drainAndClose(resp)

	cache := strings.ToLower(resp.Header.Get("Cache-Control"))
	switch {
	case strings.Contains(cache, "no-store") && strings.Contains(cache, "no-cache"):
		return compliant(id, catalogID, "Strong anti-caching headers detected (no-store, no-cache).")
	case cache != "":
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark:   fmt.Sprintf("Cache-Control is set to %q; browsers may still store sensitive content.", cache),
			Evidence: map[string]any{"cache_control": cache},
		}
	default:
		return failure(id, catalogID, "Cache-Control header is missing. Sensitive data may be stored in local or shared caches.", nil)
	}
}

// cssInjectionProbe combines CSP style-src restrictions with nosniff.
func cssInjectionProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "header.css-injection", 22

	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze CSS injection protections.", err)
	}
	defer drainAndClose(resp)

	csp := strings.ToLower(resp.Header.Get("Content-Security-Policy"))
	nosniff := strings.Contains(strings.ToLower(resp.Header.Get("X-Content-Type-Options")), "nosniff")
	strictStyle := strings.Contains(csp, "style-src") && !strings.Contains(csp, "'unsafe-inline'")

	switch {
	case strictStyle && nosniff:
		return compliant(id, catalogID, "Strong style-src CSP and MIME-sniffing protection enabled.")
	case strictStyle || nosniff:
		partial := "nosniff present but style-src CSP weak or missing"
		if strictStyle {
			partial = "style-src CSP present but nosniff missing"
		}
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark: fmt.Sprintf("Partial CSS injection protection detected (%s).", partial),
		}
	default:
		return failure(id, catalogID, "Missing both CSP style-src restrictions and the nosniff header.", nil)
	}
}
