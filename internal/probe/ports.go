package probe

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
)

// defaultPorts is the candidate set scanned when the caller does not supply
// one. It mixes standard web ports with services that should never face the
// internet on a web host.
var defaultPorts = []int{
	21, 22, 23, 25, 53, 80, 110, 139, 143, 443, 445,
	465, 587, 993, 995, 1433, 3306, 3389, 5432, 5900,
	6379, 8000, 8080, 8443, 9200, 27017,
}

// Tiering for open ports outside the expected {80, 443} set.
var (
	criticalPorts = map[int]bool{21: true, 23: true, 139: true, 445: true, 3389: true}
	altWebPorts   = map[int]bool{8000: true, 8080: true, 8443: true}
)

// openPortsProbe connect-scans the candidate set with a bounded worker pool
// and flags everything open outside the standard web ports.
func openPortsProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "network.open-ports", 1

	ports := opts.Ports
	if len(ports) == 0 {
		ports = defaultPorts
	}

	open := scanPorts(ctx, tgt.Host, ports, opts)
	if len(open) == 0 && ctx.Err() != nil {
		return failure(id, catalogID, "Port scan did not complete before the deadline.", ctx.Err())
	}

	var critical, warning, flagged []int
	for _, port := range open {
		switch {
		case port == 80 || port == 443:
		case criticalPorts[port]:
			critical = append(critical, port)
		case altWebPorts[port]:
			warning = append(warning, port)
		default:
			flagged = append(flagged, port)
		}
	}

	evidence := map[string]any{"open_ports": open}
	switch {
	case len(critical) > 0:
		all := append(append(critical, flagged...), warning...)
		sort.Ints(all)
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: false, Severity: SeverityCritical,
			Remark:   fmt.Sprintf("Historically dangerous port(s) exposed: %s. Close or firewall them immediately.", joinPorts(critical)),
			Evidence: evidence,
		}
	case len(flagged) > 0:
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: false, Severity: SeverityHigh,
			Remark:   fmt.Sprintf("Non-web port(s) open to the internet: %s. Restrict them to trusted networks.", joinPorts(flagged)),
			Evidence: evidence,
		}
	case len(warning) > 0:
		return Result{
			ProbeID: id, CatalogID: catalogID, Compliant: false, Severity: SeverityWarning,
			Remark:   fmt.Sprintf("Alternate web port(s) open: %s. Serve traffic on 80/443 only.", joinPorts(warning)),
			Evidence: evidence,
		}
	default:
		return compliant(id, catalogID, "No open ports detected outside the standard web ports 80/443.")
	}
}

// scanPorts runs the connect scan with a fixed worker pool, the same shape
// the port checker uses for subdomain fan-out.
func scanPorts(ctx context.Context, host string, ports []int, opts Options) []int {
	portCh := make(chan int, len(ports))
	openCh := make(chan int, len(ports))

	var wg sync.WaitGroup
	for i := 0; i < opts.PortWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dialer := net.Dialer{Timeout: opts.PortTimeout}
			for port := range portCh {
				if ctx.Err() != nil {
					continue
				}
				conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
				if err != nil {
					continue
				}
				conn.Close()
				openCh <- port
			}
		}()
	}

	for _, port := range ports {
		portCh <- port
	}
	close(portCh)

	wg.Wait()
	close(openCh)

	var open []int
	for port := range openCh {
		open = append(open, port)
	}
	sort.Ints(open)
	return open
}

func joinPorts(ports []int) string {
	sort.Ints(ports)
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
