package probe

import (
	"context"
	"fmt"
	"strings"
)

// parsedCookie is one Set-Cookie header broken into its name and a
// lowercase attribute map. Parsing is deliberately naive: split on ';',
// attribute keys compared case-insensitively.
type parsedCookie struct {
	name  string
	attrs map[string]string
}

func parseSetCookie(raw string) parsedCookie {
	c := parsedCookie{attrs: make(map[string]string)}
	for i, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if i == 0 {
			c.name = key
			continue
		}
		c.attrs[strings.ToLower(key)] = value
	}
	return c
}

func (c parsedCookie) has(attr string) bool {
	_, ok := c.attrs[attr]
	return ok
}

// sessionIndicators mark cookie names that suggest a dynamic site carrying
// session state, where missing flags are a hard failure instead of a warning.
var sessionIndicators = []string{"session", "id", "token", "user", "sid", "auth"}

func looksDynamic(cookies []parsedCookie) bool {
	for _, c := range cookies {
		lower := strings.ToLower(c.name)
		for _, indicator := range sessionIndicators {
			if strings.Contains(lower, indicator) {
				return true
			}
		}
	}
	return false
}

// fetchCookies GETs the target and parses every Set-Cookie header.
func fetchCookies(ctx context.Context, tgt *Target, opts Options) ([]parsedCookie, error) {
	client := newInsecureHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.URL(), opts)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)

	raw := resp.Header.Values("Set-Cookie")
	cookies := make([]parsedCookie, 0, len(raw))
	for _, header := range raw {
		cookies = append(cookies, parseSetCookie(header))
	}
	return cookies, nil
}

// cookieFlagsProbe checks Secure and HttpOnly on every cookie the target sets.
func cookieFlagsProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "cookie.flags", 11

	cookies, err := fetchCookies(ctx, tgt, opts)
	if err != nil {
		return failure(id, catalogID, "Could not analyze cookie security flags.", err)
	}

	if len(cookies) == 0 {
		return compliant(id, catalogID, "No cookies are set. No session security risk.")
	}

	var insecure []string
	for _, c := range cookies {
		var missing []string
		if !c.has("secure") {
			missing = append(missing, "Secure")
		}
		if !c.has("httponly") {
			missing = append(missing, "HttpOnly")
		}
		if len(missing) > 0 {
			insecure = append(insecure, fmt.Sprintf("%s (missing %s)", c.name, strings.Join(missing, ", ")))
		}
	}

	if len(insecure) == 0 {
		return compliant(id, catalogID, "All cookies carry both the Secure and HttpOnly flags.")
	}

	if looksDynamic(cookies) {
		res := failure(id, catalogID,
			fmt.Sprintf("Dynamic site detected with unprotected cookies: %s. Session hijacking risk.", strings.Join(insecure, "; ")), nil)
		res.Evidence = map[string]any{"cookies": insecure}
		return res
	}

	return Result{
		ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
		Remark:   "Site appears static but sets cookies without full security flags.",
		Evidence: map[string]any{"cookies": insecure},
	}
}

// sameSiteProbe checks the SameSite attribute on every cookie.
func sameSiteProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "cookie.samesite", 12

	cookies, err := fetchCookies(ctx, tgt, opts)
	if err != nil {
		return failure(id, catalogID, "Failed to analyze the SameSite attribute.", err)
	}

	if len(cookies) == 0 {
		return compliant(id, catalogID, "No cookies detected. No CSRF risk via cookie injection.")
	}

	allStrict := true
	var weak []string
	for _, c := range cookies {
		switch strings.ToLower(c.attrs["samesite"]) {
		case "strict", "lax":
		case "none":
			allStrict = false
			weak = append(weak, c.name+" (SameSite=None)")
		default:
			allStrict = false
			weak = append(weak, c.name+" (SameSite missing)")
		}
	}

	if allStrict {
		return compliant(id, catalogID, "SameSite is set to Strict or Lax on all cookies. Strong CSRF protection.")
	}

	if looksDynamic(cookies) {
		res := failure(id, catalogID,
			fmt.Sprintf("Dynamic site detected with weak SameSite configuration: %s. Exposed to CSRF.", strings.Join(weak, "; ")), nil)
		res.Evidence = map[string]any{"cookies": weak}
		return res
	}

	return Result{
		ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
		Remark:   "SameSite attribute is missing or None on a static site. Low risk, but Lax is recommended.",
		Evidence: map[string]any{"cookies": weak},
	}
}
