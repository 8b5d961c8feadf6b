package probe

import "context"

// ProbeFunc runs one compliance check against a target. Implementations
// must not panic and must return a Result for their catalog item even on
// network failure.
type ProbeFunc func(ctx context.Context, tgt *Target, opts Options) Result

// Probe is one registry entry.
type Probe struct {
	ID        string
	CatalogID int
	Run       ProbeFunc
}

// Execute runs the probe with defaulted options.
func (p Probe) Execute(ctx context.Context, tgt *Target, opts Options) Result {
	return p.Run(ctx, tgt, opts.withDefaults())
}

// The registry is a fixed table rather than anything discovered at
// runtime, so the set of probes a scan runs is visible in one place.
var registry = []Probe{
	{ID: "network.open-ports", CatalogID: 1, Run: openPortsProbe},
	{ID: "transport.https-redirect", CatalogID: 2, Run: httpsRedirectProbe},
	{ID: "transport.https-operational", CatalogID: 3, Run: httpsOperationalProbe},
	{ID: "header.server-banner", CatalogID: 4, Run: serverBannerProbe},
	{ID: "header.software-fingerprint", CatalogID: 5, Run: softwareFingerprintProbe},
	{ID: "header.etag", CatalogID: 6, Run: etagProbe},
	{ID: "header.x-xss-protection", CatalogID: 7, Run: xssProtectionProbe},
	{ID: "header.x-frame-options", CatalogID: 8, Run: frameOptionsProbe},
	{ID: "header.hsts", CatalogID: 9, Run: hstsProbe},
	{ID: "header.csp", CatalogID: 10, Run: cspProbe},
	{ID: "cookie.flags", CatalogID: 11, Run: cookieFlagsProbe},
	{ID: "cookie.samesite", CatalogID: 12, Run: sameSiteProbe},
	{ID: "header.cache-control", CatalogID: 13, Run: cacheControlProbe},
	{ID: "http.methods", CatalogID: 14, Run: methodsProbe},
	{ID: "http.admin-exposure", CatalogID: 15, Run: adminExposureProbe},
	{ID: "tls.deprecated-versions", CatalogID: 16, Run: deprecatedTLSProbe},
	{ID: "tls.weak-ciphers", CatalogID: 17, Run: weakCipherProbe},
	{ID: "tls.poodle", CatalogID: 18, Run: poodleProbe},
	{ID: "tls.logjam", CatalogID: 19, Run: logjamProbe},
	{ID: "tls.heartbleed", CatalogID: 20, Run: heartbleedProbe},
	{ID: "tls.crime", CatalogID: 21, Run: crimeProbe},
	{ID: "header.css-injection", CatalogID: 22, Run: cssInjectionProbe},
	{ID: "tls.anonymous-ciphers", CatalogID: 23, Run: anonCipherProbe},
	{ID: "tls.freak", CatalogID: 24, Run: freakProbe},
	{ID: "tls.drown", CatalogID: 25, Run: drownProbe},
	{ID: "tls.forward-secrecy", CatalogID: 26, Run: forwardSecrecyProbe},
	{ID: "http.legacy-version", CatalogID: 27, Run: legacyHTTPProbe},
	{ID: "dns.caa", CatalogID: 28, Run: caaProbe},
}

// Registry returns the full probe table in run order.
func Registry() []Probe {
	out := make([]Probe, len(registry))
	copy(out, registry)
	return out
}
