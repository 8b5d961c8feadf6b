package probe

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// legacyHTTPProbe writes a literal HTTP/1.0 request and inspects the status
// line. net/http always speaks 1.1, so the request is written by hand over a
// raw connection; for https targets the socket is wrapped in TLS first.
// Certificate validity is out of scope here, only the protocol version
// matters, so the handshake skips verification. Only a 200 answered with
// "HTTP/1.0" counts: the server actually serves content over the legacy
// protocol instead of refusing or redirecting it.
func legacyHTTPProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "http.legacy-version"

	useTLS := tgt.Scheme != "http"
	addr := tgt.TLSAddr()
	if !useTLS {
		port := tgt.Port
		if port == "" {
			port = "80"
		}
		addr = net.JoinHostPort(tgt.Host, port)
	}

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return failure(id, 27, "HTTP port could not be reached.", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(opts.DialTimeout))

	var rw io.ReadWriter = conn
	if useTLS {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: tgt.Host, InsecureSkipVerify: true})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return failure(id, 27, "TLS handshake for the HTTP/1.0 request failed.", err)
		}
		rw = tlsConn
	}

	request := fmt.Sprintf("GET / HTTP/1.0\r\nHost: %s\r\nUser-Agent: %s\r\n\r\n", tgt.Host, opts.UserAgent)
	if _, err := rw.Write([]byte(request)); err != nil {
		return failure(id, 27, "HTTP/1.0 request could not be sent.", err)
	}

	statusLine, err := bufio.NewReader(rw).ReadString('\n')
	if err != nil {
		return failure(id, 27, "No response to the HTTP/1.0 request.", err)
	}
	statusLine = strings.TrimSpace(statusLine)

	if strings.HasPrefix(statusLine, "HTTP/1.0 200") {
		return Result{
			ProbeID:   id,
			CatalogID: 27,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    "Server serves content over the obsolete HTTP/1.0 protocol.",
			Evidence:  map[string]any{"status_line": clip(statusLine)},
		}
	}
	return compliant(id, 27, fmt.Sprintf("Server does not serve content over HTTP/1.0 (%q).", statusLine))
}
