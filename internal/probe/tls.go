package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"strings"
)

// controlHandshake performs a normal, certificate-verified TLS handshake.
// The TLS probes run it first so that a dead or non-TLS endpoint surfaces
// as a connectivity finding instead of silently passing every legacy test.
func controlHandshake(ctx context.Context, tgt *Target, opts Options) (tls.ConnectionState, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: opts.DialTimeout},
		Config:    &tls.Config{ServerName: tgt.Host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", tgt.TLSAddr())
	if err != nil {
		return tls.ConnectionState{}, err
	}
	defer conn.Close()
	return conn.(*tls.Conn).ConnectionState(), nil
}

// handshakeWithConfig reports whether a TLS handshake succeeds with the
// given version pin and optional cipher restriction. Verification is
// disabled: the question is what the server negotiates, not whether its
// certificate chains.
func handshakeWithConfig(ctx context.Context, tgt *Target, opts Options, minVer, maxVer uint16, ciphers []uint16) (tls.ConnectionState, bool) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: opts.DialTimeout},
		Config: &tls.Config{
			ServerName:         tgt.Host,
			InsecureSkipVerify: true,
			MinVersion:         minVer,
			MaxVersion:         maxVer,
			CipherSuites:       ciphers,
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", tgt.TLSAddr())
	if err != nil {
		return tls.ConnectionState{}, false
	}
	defer conn.Close()
	return conn.(*tls.Conn).ConnectionState(), true
}

func connectivityFailure(id string, catalogID int, err error) Result {
	return failure(id, catalogID, "TLS connection to the target could not be established.", err)
}

// deprecatedTLSProbe reports which retired protocol versions the server
// still accepts. SSLv3 is tested with a raw hello; TLS 1.0 and 1.1 with
// version-pinned stdlib handshakes.
func deprecatedTLSProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.deprecated-versions"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 16, err)
	}

	var accepted []string
	if out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionSSL30, legacyProtocolCiphers, nil, opts.DialTimeout); err == nil && out.Accepted {
		accepted = append(accepted, "SSLv3")
	}
	if _, ok := handshakeWithConfig(ctx, tgt, opts, tls.VersionTLS10, tls.VersionTLS10, nil); ok {
		accepted = append(accepted, "TLSv1.0")
	}
	if _, ok := handshakeWithConfig(ctx, tgt, opts, tls.VersionTLS11, tls.VersionTLS11, nil); ok {
		accepted = append(accepted, "TLSv1.1")
	}

	if len(accepted) > 0 {
		return Result{
			ProbeID:   id,
			CatalogID: 16,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    fmt.Sprintf("Server accepts deprecated protocol versions: %s.", strings.Join(accepted, ", ")),
			Evidence:  map[string]any{"accepted_versions": accepted},
		}
	}
	return compliant(id, 16, "Deprecated SSL/TLS protocol versions are rejected.")
}

// Stdlib-known weak suites, probed with a real handshake so the result
// reflects an actual negotiation rather than a bare hello.
var stdlibWeakCiphers = []uint16{
	tls.TLS_RSA_WITH_RC4_128_SHA,
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA,
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA,
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA,
}

var weakCipherNames = map[uint16]string{
	tls.TLS_RSA_WITH_RC4_128_SHA:            "RC4-SHA",
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA:      "ECDHE-RSA-RC4-SHA",
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA:    "ECDHE-ECDSA-RC4-SHA",
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:       "DES-CBC3-SHA",
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA: "ECDHE-RSA-DES-CBC3-SHA",
	0x0001:                                  "NULL-MD5",
	0x0002:                                  "NULL-SHA",
	0x0004:                                  "RC4-MD5",
	0x0009:                                  "DES-CBC-SHA",
}

// weakCipherProbe hunts RC4, 3DES, single DES and NULL suites.
func weakCipherProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.weak-ciphers"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 17, err)
	}

	found := map[string]bool{}
	if state, ok := handshakeWithConfig(ctx, tgt, opts, tls.VersionTLS10, tls.VersionTLS12, stdlibWeakCiphers); ok {
		if name, known := weakCipherNames[state.CipherSuite]; known {
			found[name] = true
		} else {
			found[cipherIDString(state.CipherSuite)] = true
		}
	}
	if out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionTLS10, weakLegacyCiphers, nil, opts.DialTimeout); err == nil && out.Accepted {
		if name, known := weakCipherNames[out.Cipher]; known {
			found[name] = true
		} else {
			found[cipherIDString(out.Cipher)] = true
		}
	}

	if len(found) > 0 {
		names := make([]string, 0, len(found))
		for name := range found {
			names = append(names, name)
		}
		sort.Strings(names)
		return Result{
			ProbeID:   id,
			CatalogID: 17,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    fmt.Sprintf("Server negotiates weak cipher suites: %s.", strings.Join(names, ", ")),
			Evidence:  map[string]any{"weak_ciphers": names},
		}
	}
	return compliant(id, 17, "No weak cipher suites are accepted.")
}

// poodleProbe tests SSLv3 acceptance, the precondition for POODLE.
func poodleProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.poodle"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 18, err)
	}

	out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionSSL30, legacyProtocolCiphers, nil, opts.DialTimeout)
	if err == nil && out.Accepted {
		return Result{
			ProbeID:   id,
			CatalogID: 18,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    "Server accepts SSLv3 and is vulnerable to the POODLE attack.",
		}
	}
	return compliant(id, 18, "SSLv3 is disabled; not vulnerable to POODLE.")
}

// logjamProbe offers only export-grade DHE suites.
func logjamProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.logjam"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 19, err)
	}

	out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionTLS10, exportDHCiphers, nil, opts.DialTimeout)
	if err == nil && out.Accepted {
		return Result{
			ProbeID:   id,
			CatalogID: 19,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    fmt.Sprintf("Server accepts export-grade DHE cipher %s and is vulnerable to Logjam.", cipherIDString(out.Cipher)),
		}
	}
	return compliant(id, 19, "Export-grade DHE ciphers are rejected; not vulnerable to Logjam.")
}

// crimeProbe offers DEFLATE compression; a server that selects it is
// exposed to the CRIME attack.
func crimeProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.crime"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 21, err)
	}

	out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionTLS12, legacyProtocolCiphers, []byte{0x01, 0x00}, opts.DialTimeout)
	if err == nil && out.Accepted && out.Compression == 0x01 {
		return Result{
			ProbeID:   id,
			CatalogID: 21,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    "Server negotiated TLS DEFLATE compression and is vulnerable to CRIME.",
		}
	}
	return compliant(id, 21, "TLS compression is disabled; not vulnerable to CRIME.")
}

// anonCipherProbe offers only unauthenticated DH/ECDH suites.
func anonCipherProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.anonymous-ciphers"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 23, err)
	}

	out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionTLS10, anonCiphers, nil, opts.DialTimeout)
	if err == nil && out.Accepted {
		return Result{
			ProbeID:   id,
			CatalogID: 23,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    fmt.Sprintf("Server accepts anonymous cipher %s, allowing unauthenticated key exchange.", cipherIDString(out.Cipher)),
		}
	}
	return compliant(id, 23, "Anonymous cipher suites are rejected.")
}

// freakProbe offers only export-grade RSA suites.
func freakProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.freak"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 24, err)
	}

	out, err := sendClientHello(ctx, tgt.TLSAddr(), tgt.Host, versionTLS10, exportRSACiphers, nil, opts.DialTimeout)
	if err == nil && out.Accepted {
		return Result{
			ProbeID:   id,
			CatalogID: 24,
			Compliant: false,
			Severity:  SeverityHigh,
			Remark:    fmt.Sprintf("Server accepts export-grade RSA cipher %s and is vulnerable to FREAK.", cipherIDString(out.Cipher)),
		}
	}
	return compliant(id, 24, "Export-grade RSA ciphers are rejected; not vulnerable to FREAK.")
}

// drownProbe speaks SSLv2 directly.
func drownProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.drown"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 25, err)
	}

	accepted, err := sendSSLv2Hello(ctx, tgt.TLSAddr(), opts.DialTimeout)
	if err == nil && accepted {
		return Result{
			ProbeID:   id,
			CatalogID: 25,
			Compliant: false,
			Severity:  SeverityCritical,
			Remark:    "Server accepts SSLv2 connections and is vulnerable to DROWN.",
		}
	}
	return compliant(id, 25, "SSLv2 is disabled; not vulnerable to DROWN.")
}

// forwardSecrecyProbe inspects the default negotiation. TLS 1.3 always has
// forward secrecy; for 1.2 and below the key exchange must be ephemeral.
func forwardSecrecyProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.forward-secrecy"
	state, err := controlHandshake(ctx, tgt, opts)
	if err != nil {
		return connectivityFailure(id, 26, err)
	}
	return forwardSecrecyVerdict(id, state)
}

func forwardSecrecyVerdict(id string, state tls.ConnectionState) Result {
	suite := tls.CipherSuiteName(state.CipherSuite)
	if state.Version >= tls.VersionTLS13 ||
		strings.Contains(suite, "ECDHE") || strings.Contains(suite, "DHE") {
		return compliant(id, 26, fmt.Sprintf("Negotiated suite %s provides forward secrecy.", suite))
	}
	return Result{
		ProbeID:   id,
		CatalogID: 26,
		Compliant: false,
		Severity:  SeverityHigh,
		Remark:    fmt.Sprintf("Negotiated suite %s does not provide forward secrecy.", suite),
		Evidence:  map[string]any{"cipher_suite": suite},
	}
}
