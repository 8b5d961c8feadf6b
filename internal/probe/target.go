package probe

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is the parsed, immutable identity of the host under audit.
type Target struct {
	Host   string // bare hostname, no scheme/port/path
	Scheme string // "http" or "https"
	Port   string // explicit port if the caller supplied one
}

// ParseTarget parses the supported input forms:
//
//   - example.com
//   - https://example.com
//   - http://example.com:8080/path
//
// The scheme defaults to https when omitted.
func ParseTarget(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("target cannot be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") {
		// Missing or bogus scheme ("example.com:8080" parses the host as a
		// scheme), reparse with the default prepended.
		parsed, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", raw, err)
		}
	}

	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q (expected http or https)", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("target %q has no hostname", raw)
	}

	return &Target{
		Host:   host,
		Scheme: parsed.Scheme,
		Port:   parsed.Port(),
	}, nil
}

// URL returns the target's base URL in its declared scheme.
func (t *Target) URL() string {
	return t.urlWithScheme(t.Scheme)
}

// HTTPURL returns the plain-HTTP form of the target, used by probes that
// deliberately test the insecure endpoint.
func (t *Target) HTTPURL() string {
	return t.urlWithScheme("http")
}

// HTTPSURL returns the HTTPS form of the target.
func (t *Target) HTTPSURL() string {
	return t.urlWithScheme("https")
}

func (t *Target) urlWithScheme(scheme string) string {
	if t.Port != "" {
		return scheme + "://" + t.Host + ":" + t.Port
	}
	return scheme + "://" + t.Host
}

// TLSAddr returns the host:port dialed by the TLS probes. The explicit port
// wins; otherwise 443.
func (t *Target) TLSAddr() string {
	if t.Port != "" {
		return t.Host + ":" + t.Port
	}
	return t.Host + ":443"
}

func (t *Target) String() string {
	return t.URL()
}
