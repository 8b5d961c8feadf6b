package probe

import (
	"context"
	"crypto/tls"
	"net"
	"strings"
	"testing"
	"time"
)

// closingListener accepts connections and immediately closes them, so a
// TLS handshake can never complete.
func closingListener(t *testing.T) *Target {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, port, _ := net.SplitHostPort(l.Addr().String())
	return &Target{Host: host, Scheme: "https", Port: port}
}

func TestControlHandshakeFailsOnNonTLSEndpoint(t *testing.T) {
	tgt := closingListener(t)
	opts := Options{}.withDefaults()
	opts.DialTimeout = 2 * time.Second

	if _, err := controlHandshake(context.Background(), tgt, opts); err == nil {
		t.Fatal("expected handshake against closing listener to fail")
	}
}

func TestTLSProbesReportConnectivityFailure(t *testing.T) {
	tgt := closingListener(t)
	opts := Options{}.withDefaults()
	opts.DialTimeout = 2 * time.Second

	probes := []struct {
		name string
		fn   ProbeFunc
	}{
		{"deprecated versions", deprecatedTLSProbe},
		{"weak ciphers", weakCipherProbe},
		{"poodle", poodleProbe},
		{"logjam", logjamProbe},
		{"heartbleed", heartbleedProbe},
		{"crime", crimeProbe},
		{"anon ciphers", anonCipherProbe},
		{"freak", freakProbe},
		{"drown", drownProbe},
		{"forward secrecy", forwardSecrecyProbe},
	}

	for _, tt := range probes {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.fn(context.Background(), tgt, opts)
			if res.Compliant {
				t.Fatal("expected non-compliant result when TLS is unreachable")
			}
			if res.Severity != SeverityHigh {
				t.Fatalf("expected high severity, got %v", res.Severity)
			}
			if !strings.Contains(res.Remark, "could not be established") {
				t.Fatalf("expected connectivity remark, got %q", res.Remark)
			}
		})
	}
}

func TestHandshakeWithConfigRejectsDeadEndpoint(t *testing.T) {
	tgt := closingListener(t)
	opts := Options{}.withDefaults()
	opts.DialTimeout = 2 * time.Second

	if _, ok := handshakeWithConfig(context.Background(), tgt, opts, 0, 0, nil); ok {
		t.Fatal("expected handshake to fail against closing listener")
	}
}

func TestForwardSecrecyVerdict(t *testing.T) {
	tests := []struct {
		name      string
		state     tls.ConnectionState
		compliant bool
	}{
		{"TLS 1.3 always ephemeral", tls.ConnectionState{Version: tls.VersionTLS13, CipherSuite: tls.TLS_AES_128_GCM_SHA256}, true},
		{"ECDHE suite on TLS 1.2", tls.ConnectionState{Version: tls.VersionTLS12, CipherSuite: tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256}, true},
		{"static RSA key exchange", tls.ConnectionState{Version: tls.VersionTLS12, CipherSuite: tls.TLS_RSA_WITH_AES_128_GCM_SHA256}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := forwardSecrecyVerdict("tls.forward-secrecy", tc.state)
			if res.Compliant != tc.compliant {
				t.Fatalf("compliant = %v, want %v (%q)", res.Compliant, tc.compliant, res.Remark)
			}
			if !tc.compliant && res.Severity != SeverityHigh {
				t.Errorf("severity = %s, want high", res.Severity)
			}
		})
	}
}
