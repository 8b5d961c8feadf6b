package probe

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// The modern crypto/tls stack cannot offer SSLv2/SSLv3, export-grade,
// anonymous or NULL cipher suites, so the probes that test for them build
// their own ClientHello records and inspect the first server response. The
// goal is a yes/no on whether the server is willing to negotiate, not a
// full handshake.

// TLS record and handshake constants.
const (
	recordTypeAlert     = 0x15
	recordTypeHandshake = 0x16
	recordTypeHeartbeat = 0x18

	handshakeTypeServerHello = 0x02

	versionSSL30 uint16 = 0x0300
	versionTLS10 uint16 = 0x0301
	versionTLS11 uint16 = 0x0302
	versionTLS12 uint16 = 0x0303
)

// Legacy cipher suite IDs from the TLS registry, grouped by what the probe
// is hunting for. None of these exist in crypto/tls.
var (
	// NULL encryption, single DES, RC4-MD5, MD5-MAC suites.
	weakLegacyCiphers = []uint16{
		0x0001, // TLS_RSA_WITH_NULL_MD5
		0x0002, // TLS_RSA_WITH_NULL_SHA
		0x0004, // TLS_RSA_WITH_RC4_128_MD5
		0x0009, // TLS_RSA_WITH_DES_CBC_SHA
	}

	// Export-grade RSA suites (FREAK).
	exportRSACiphers = []uint16{
		0x0003, // TLS_RSA_EXPORT_WITH_RC4_40_MD5
		0x0006, // TLS_RSA_EXPORT_WITH_RC2_CBC_40_MD5
		0x0008, // TLS_RSA_EXPORT_WITH_DES40_CBC_SHA
	}

	// Export-grade ephemeral DH suites (Logjam).
	exportDHCiphers = []uint16{
		0x0011, // TLS_DHE_DSS_EXPORT_WITH_DES40_CBC_SHA
		0x0014, // TLS_DHE_RSA_EXPORT_WITH_DES40_CBC_SHA
	}

	// Anonymous (unauthenticated) DH and ECDH suites.
	anonCiphers = []uint16{
		0x0017, // TLS_DH_anon_EXPORT_WITH_RC4_40_MD5
		0x0018, // TLS_DH_anon_WITH_RC4_128_MD5
		0x001A, // TLS_DH_anon_WITH_DES_CBC_SHA
		0x001B, // TLS_DH_anon_WITH_3DES_EDE_CBC_SHA
		0xC015, // TLS_ECDH_anon_WITH_NULL_SHA
		0xC016, // TLS_ECDH_anon_WITH_RC4_128_SHA
		0xC017, // TLS_ECDH_anon_WITH_3DES_EDE_CBC_SHA
		0xC018, // TLS_ECDH_anon_WITH_AES_128_CBC_SHA
		0xC019, // TLS_ECDH_anon_WITH_AES_256_CBC_SHA
	}

	// Broad SSLv3-era set used when probing whether a legacy protocol
	// version is accepted at all.
	legacyProtocolCiphers = []uint16{
		0x0004, 0x0005, 0x000A, // RC4-MD5, RC4-SHA, 3DES
		0x002F, 0x0035, // AES128/256-CBC-SHA
		0xC013, 0xC014, // ECDHE-RSA AES-CBC-SHA
	}
)

// helloOutcome captures what the server answered to a crafted ClientHello.
type helloOutcome struct {
	Accepted    bool   // server answered with a ServerHello
	Version     uint16 // negotiated protocol version
	Cipher      uint16 // selected cipher suite
	Compression byte   // selected compression method
}

// sendClientHello dials addr, writes a single ClientHello for the given
// protocol version offering the listed cipher suites and compression
// methods, and classifies the first record that comes back. A TLS alert,
// connection reset or timeout all count as rejection.
func sendClientHello(ctx context.Context, addr, serverName string, version uint16, ciphers []uint16, compressions []byte, timeout time.Duration) (helloOutcome, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return helloOutcome{}, err
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	hello := buildClientHello(serverName, version, ciphers, compressions, false)
	if _, err := conn.Write(hello); err != nil {
		return helloOutcome{}, err
	}

	return readServerHello(conn)
}

// buildClientHello assembles a TLS record containing one ClientHello
// handshake message. withHeartbeat adds the RFC 6520 heartbeat extension.
func buildClientHello(serverName string, version uint16, ciphers []uint16, compressions []byte, withHeartbeat bool) []byte {
	if len(compressions) == 0 {
		compressions = []byte{0x00}
	}

	random := make([]byte, 32)
	_, _ = rand.Read(random)

	var body []byte
	body = binary.BigEndian.AppendUint16(body, version)
	body = append(body, random...)
	body = append(body, 0x00) // empty session id

	body = binary.BigEndian.AppendUint16(body, uint16(len(ciphers)*2))
	for _, c := range ciphers {
		body = binary.BigEndian.AppendUint16(body, c)
	}

	body = append(body, byte(len(compressions)))
	body = append(body, compressions...)

	// Extensions: SNI for name-based virtual hosts (TLS 1.0+ only; SSLv3
	// predates the extension mechanism), optionally heartbeat.
	var exts []byte
	if version >= versionTLS10 && serverName != "" {
		exts = append(exts, buildSNIExtension(serverName)...)
	}
	if withHeartbeat {
		exts = append(exts, 0x00, 0x0F, 0x00, 0x01, 0x01) // heartbeat, peer_allowed_to_send
	}
	if len(exts) > 0 {
		body = binary.BigEndian.AppendUint16(body, uint16(len(exts)))
		body = append(body, exts...)
	}

	// Handshake header: type 1 (ClientHello) + 24-bit length.
	handshake := []byte{0x01, byte(len(body) >> 16), byte(len(body) >> 8), byte(len(body))}
	handshake = append(handshake, body...)

	// Record header. The record-layer version is the offered version for
	// SSLv3 and TLS 1.0 for everything newer, matching common client
	// behaviour.
	recordVersion := version
	if recordVersion > versionTLS10 {
		recordVersion = versionTLS10
	}
	record := []byte{recordTypeHandshake, byte(recordVersion >> 8), byte(recordVersion)}
	record = binary.BigEndian.AppendUint16(record, uint16(len(handshake)))
	return append(record, handshake...)
}

func buildSNIExtension(serverName string) []byte {
	name := []byte(serverName)
	var ext []byte
	ext = binary.BigEndian.AppendUint16(ext, 0x0000)              // extension type: server_name
	ext = binary.BigEndian.AppendUint16(ext, uint16(len(name)+5)) // extension length
	ext = binary.BigEndian.AppendUint16(ext, uint16(len(name)+3)) // server name list length
	ext = append(ext, 0x00)                                       // name type: host_name
	ext = binary.BigEndian.AppendUint16(ext, uint16(len(name)))
	return append(ext, name...)
}

// readServerHello reads exactly one TLS record and, when it is a handshake
// record, extracts the ServerHello parameters.
func readServerHello(conn net.Conn) (helloOutcome, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(conn, header); err != nil {
		// Dropped connection: the server refused to negotiate.
		return helloOutcome{}, nil
	}

	recordLen := int(binary.BigEndian.Uint16(header[3:5]))
	if header[0] == recordTypeAlert || recordLen <= 0 || recordLen > 1<<14+2048 {
		return helloOutcome{}, nil
	}
	if header[0] != recordTypeHandshake {
		return helloOutcome{}, nil
	}

	payload := make([]byte, recordLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return helloOutcome{}, nil
	}

	// ServerHello: type(1) len(3) version(2) random(32) sid_len(1) sid
	// cipher(2) compression(1)
	if len(payload) < 4 || payload[0] != handshakeTypeServerHello {
		return helloOutcome{}, nil
	}
	body := payload[4:]
	if len(body) < 35 {
		return helloOutcome{}, nil
	}
	sidLen := int(body[34])
	if len(body) < 35+sidLen+3 {
		return helloOutcome{}, nil
	}

	return helloOutcome{
		Accepted:    true,
		Version:     binary.BigEndian.Uint16(body[0:2]),
		Cipher:      binary.BigEndian.Uint16(body[35+sidLen : 35+sidLen+2]),
		Compression: body[35+sidLen+2],
	}, nil
}

// sendSSLv2Hello speaks the pre-standard SSLv2 record format, which differs
// entirely from TLS. A server that answers with an SSLv2 ServerHello (message
// type 4) still supports the protocol DROWN exploits.
func sendSSLv2Hello(ctx context.Context, addr string, timeout time.Duration) (bool, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	challenge := make([]byte, 16)
	_, _ = rand.Read(challenge)

	// SSLv2 cipher kinds are 3 bytes each.
	cipherSpecs := []byte{
		0x01, 0x00, 0x80, // SSL2_RC4_128_WITH_MD5
		0x02, 0x00, 0x80, // SSL2_RC4_128_EXPORT40_WITH_MD5
		0x04, 0x00, 0x80, // SSL2_RC2_128_CBC_WITH_MD5
		0x07, 0x00, 0xC0, // SSL2_DES_192_EDE3_CBC_WITH_MD5
	}

	var msg []byte
	msg = append(msg, 0x01)       // SSLv2 ClientHello
	msg = append(msg, 0x00, 0x02) // version SSL 2.0
	msg = binary.BigEndian.AppendUint16(msg, uint16(len(cipherSpecs)))
	msg = binary.BigEndian.AppendUint16(msg, 0) // session id length
	msg = binary.BigEndian.AppendUint16(msg, uint16(len(challenge)))
	msg = append(msg, cipherSpecs...)
	msg = append(msg, challenge...)

	// Two-byte SSLv2 record header with the high bit set.
	record := []byte{byte(0x80 | (len(msg) >> 8)), byte(len(msg))}
	record = append(record, msg...)

	if _, err := conn.Write(record); err != nil {
		return false, nil
	}

	resp := make([]byte, 3)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return false, nil
	}

	// SSLv2 response: high bit on the length, then ServerHello type 0x04.
	return resp[0]&0x80 != 0 && resp[2] == 0x04, nil
}

func cipherIDString(id uint16) string {
	return fmt.Sprintf("0x%04X", id)
}
