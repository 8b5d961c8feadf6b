package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

type caaRecord struct {
	Tag   string
	Value string
}

// caaLookup resolves the CAA records for a domain. The indirection exists
// so tests can substitute canned answers for live DNS.
type caaLookup func(ctx context.Context, domain string) ([]caaRecord, error)

// resolveCAA queries the system resolver for CAA records.
func resolveCAA(ctx context.Context, domain string) ([]caaRecord, error) {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		conf = &dns.ClientConfig{Servers: []string{"8.8.8.8"}, Port: "53"}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeCAA)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: 5 * time.Second}
	var lastErr error
	for _, server := range conf.Servers {
		reply, _, err := client.ExchangeContext(ctx, msg, fmt.Sprintf("%s:%s", server, conf.Port))
		if err != nil {
			lastErr = err
			continue
		}
		var records []caaRecord
		for _, rr := range reply.Answer {
			if caa, ok := rr.(*dns.CAA); ok {
				records = append(records, caaRecord{Tag: caa.Tag, Value: caa.Value})
			}
		}
		return records, nil
	}
	return nil, lastErr
}

// caaProbeWith builds the CAA probe around a lookup function. When the host
// itself has no CAA records, parent domains are consulted the way a CA
// would per RFC 8659.
func caaProbeWith(lookup caaLookup) ProbeFunc {
	return func(ctx context.Context, tgt *Target, opts Options) Result {
		const id = "dns.caa"

		labels := strings.Split(strings.TrimSuffix(tgt.Host, "."), ".")
		for i := 0; i < len(labels)-1; i++ {
			domain := strings.Join(labels[i:], ".")
			records, err := lookup(ctx, domain)
			if err != nil {
				return failure(id, 28, "DNS CAA lookup failed.", err)
			}
			if len(records) > 0 {
				issuers := make([]string, 0, len(records))
				for _, rec := range records {
					if rec.Tag == "issue" || rec.Tag == "issuewild" {
						issuers = append(issuers, rec.Value)
					}
				}
				remark := fmt.Sprintf("CAA records found on %s.", domain)
				if len(issuers) > 0 {
					remark = fmt.Sprintf("CAA records on %s restrict issuance to: %s.", domain, strings.Join(issuers, ", "))
				}
				return compliant(id, 28, remark)
			}
		}

		return Result{
			ProbeID:   id,
			CatalogID: 28,
			Compliant: false,
			Severity:  SeverityLow,
			Remark:    "No DNS CAA records found; any certificate authority may issue for this domain.",
		}
	}
}

// caaProbe is the production CAA probe.
var caaProbe = caaProbeWith(resolveCAA)
