package compliance

// recommendations holds the remediation guidance reported alongside a
// non-compliant catalog item.
var recommendations = map[int]string{
	1:  "Close unnecessary network ports or restrict them with firewall rules; expose only 80 and 443 publicly.",
	2:  "Configure the web server to redirect all HTTP requests to HTTPS with a 301 permanent redirect.",
	3:  "Install a valid certificate from a trusted CA and ensure the site is fully reachable over HTTPS.",
	4:  "Suppress version details in the Server header (e.g. ServerTokens Prod, server_tokens off).",
	5:  "Remove software-identifying headers such as X-Powered-By and X-AspNet-Version from responses.",
	6:  "Configure E-Tags to exclude inode information (e.g. FileETag MTime Size).",
	7:  "Send X-XSS-Protection: 1; mode=block, or rely on a strict Content-Security-Policy.",
	8:  "Send X-Frame-Options: DENY or SAMEORIGIN to prevent clickjacking.",
	9:  "Enable HSTS with a max-age of at least one year and includeSubDomains.",
	10: "Deploy a Content-Security-Policy without unsafe-inline, unsafe-eval or wildcard sources.",
	11: "Set the Secure and HttpOnly flags on all cookies.",
	12: "Set SameSite=Strict or SameSite=Lax on all cookies.",
	13: "Send Cache-Control: no-store, no-cache on responses carrying sensitive data.",
	14: "Disable the PUT, DELETE, TRACE and CONNECT methods at the server or proxy.",
	15: "Remove or access-restrict management interfaces; place them behind VPN or IP allow-lists.",
	16: "Disable SSLv3, TLS 1.0 and TLS 1.1; accept only TLS 1.2 and newer.",
	17: "Remove RC4, DES, 3DES and NULL ciphers from the server cipher list.",
	18: "Disable SSLv3 entirely to eliminate POODLE exposure.",
	19: "Remove export-grade DHE ciphers and use 2048-bit or larger DH parameters.",
	20: "Upgrade OpenSSL to a version patched against CVE-2014-0160 and reissue certificates.",
	21: "Disable TLS-level compression.",
	22: "Send X-Content-Type-Options: nosniff and restrict style sources via CSP.",
	23: "Remove anonymous (aNULL) cipher suites from the server configuration.",
	24: "Remove export-grade RSA cipher suites.",
	25: "Disable SSLv2 on this server and on any other service sharing its certificate.",
	26: "Prefer ECDHE key exchange so every session has forward secrecy.",
	27: "Serve HTTP/1.1 or newer only; retire HTTP/1.0 support.",
	28: "Publish DNS CAA records naming the certificate authorities allowed to issue for the domain.",
}

// Recommendation returns the remediation guidance for a catalog item, or
// an empty string for unknown IDs.
func Recommendation(catalogID int) string {
	return recommendations[catalogID]
}
