package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// httpsRedirectProbe verifies the plain-HTTP endpoint redirects to HTTPS.
// Redirects are not followed so the initial status code can be inspected.
func httpsRedirectProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "transport.https-redirect", 2

	client := newHTTPClient(opts, false)
	resp, err := doRequest(ctx, client, "HEAD", tgt.HTTPURL(), opts)
	if err != nil {
		return failure(id, catalogID, "Could not reach the HTTP endpoint for redirection testing.", err)
	}
	defer drainAndClose(resp)

	location := resp.Header.Get("Location")
	toHTTPS := strings.HasPrefix(location, "https://")

	switch {
	case resp.StatusCode == http.StatusMovedPermanently && toHTTPS:
		return compliant(id, catalogID,
			fmt.Sprintf("HTTP request redirected with code 301 to %s.", location))
	case toHTTPS && (resp.StatusCode == http.StatusFound ||
		resp.StatusCode == http.StatusTemporaryRedirect ||
		resp.StatusCode == http.StatusPermanentRedirect):
		return compliant(id, catalogID,
			fmt.Sprintf("Redirection to HTTPS detected (code %d). A 301 redirect is preferred.", resp.StatusCode))
	default:
		res := failure(id, catalogID,
			"Website is accessible over insecure HTTP with no automatic redirection to HTTPS.", nil)
		res.Evidence = map[string]any{"status": resp.StatusCode, "location": location}
		return res
	}
}

// httpsOperationalProbe verifies the site is fully functional over HTTPS with
// a valid certificate chain.
func httpsOperationalProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "transport.https-operational", 3

	// Certificate verification is the point here, so no insecure client.
	client := newHTTPClient(opts, true)
	resp, err := doRequest(ctx, client, "GET", tgt.HTTPSURL(), opts)
	if err != nil {
		var certErr *x509.CertificateInvalidError
		var unknownAuthority x509.UnknownAuthorityError
		var hostnameErr x509.HostnameError
		var recordErr tls.RecordHeaderError
		if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) ||
			errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
			return failure(id, catalogID,
				"SSL/TLS certificate validation failed. The site may use an expired or self-signed certificate.", err)
		}
		return failure(id, catalogID, "Website is not reachable over HTTPS.", err)
	}
	defer drainAndClose(resp)

	finalHTTPS := resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.Scheme == "https"
	switch {
	case resp.StatusCode == http.StatusOK && finalHTTPS:
		return compliant(id, catalogID, "Website is fully operational over HTTPS (status 200).")
	case finalHTTPS:
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: true, Severity: SeverityWarning,
			Remark: fmt.Sprintf("Operational over HTTPS but returned status %d; the connection is secure, content access is restricted.", resp.StatusCode),
		}
	default:
		return failure(id, catalogID, "The final destination after redirects is not secure (HTTP).", nil)
	}
}
