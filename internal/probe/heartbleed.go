package probe

import (
	"context"
	"io"
	"net"
	"time"
)

// heartbleedProbe sends a TLS 1.2 ClientHello advertising the heartbeat
// extension and then a malformed heartbeat request claiming a payload the
// probe never sent. A patched server drops the connection or stays silent;
// a vulnerable one answers with a heartbeat record echoing memory.
func heartbleedProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id = "tls.heartbleed"
	if _, err := controlHandshake(ctx, tgt, opts); err != nil {
		return connectivityFailure(id, 20, err)
	}

	vulnerable, err := heartbeatLeaks(ctx, tgt, opts.DialTimeout)
	if err != nil {
		return failure(id, 20, "Heartbeat probe could not complete.", err)
	}
	if vulnerable {
		return Result{
			ProbeID:   id,
			CatalogID: 20,
			Compliant: false,
			Severity:  SeverityCritical,
			Remark:    "Server responded to a malformed heartbeat request; vulnerable to Heartbleed (CVE-2014-0160).",
		}
	}
	return compliant(id, 20, "Server ignores malformed heartbeat requests; not vulnerable to Heartbleed.")
}

func heartbeatLeaks(ctx context.Context, tgt *Target, timeout time.Duration) (bool, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", tgt.TLSAddr())
	if err != nil {
		return false, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	hello := buildClientHello(tgt.Host, versionTLS12, legacyProtocolCiphers, nil, true)
	if _, err := conn.Write(hello); err != nil {
		return false, err
	}

	// Consume handshake records until the ServerHelloDone, then fire the
	// heartbeat before finishing the handshake, as the original exploit did.
	if !drainHandshake(conn) {
		return false, nil
	}

	// Heartbeat request: type 1, claimed payload length 0x4000, no payload.
	heartbeat := []byte{recordTypeHeartbeat, 0x03, 0x03, 0x00, 0x03, 0x01, 0x40, 0x00}
	if _, err := conn.Write(heartbeat); err != nil {
		return false, nil
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(conn, header); err != nil {
		// No answer means the server discarded the malformed request.
		return false, nil
	}
	return header[0] == recordTypeHeartbeat, nil
}

// drainHandshake reads server handshake records until ServerHelloDone
// (handshake type 14) or an error. Alerts and non-handshake records abort.
func drainHandshake(conn net.Conn) bool {
	header := make([]byte, 5)
	for i := 0; i < 8; i++ {
		if _, err := io.ReadFull(conn, header); err != nil {
			return false
		}
		if header[0] != recordTypeHandshake {
			return false
		}
		length := int(header[3])<<8 | int(header[4])
		if length <= 0 || length > 1<<14+2048 {
			return false
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return false
		}
		// One record can carry several handshake messages.
		for off := 0; off+4 <= len(payload); {
			msgLen := int(payload[off+1])<<16 | int(payload[off+2])<<8 | int(payload[off+3])
			if payload[off] == 0x0E { // ServerHelloDone
				return true
			}
			off += 4 + msgLen
		}
	}
	return false
}
