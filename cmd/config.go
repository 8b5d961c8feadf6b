package cmd

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultHTTPTimeoutSeconds  = 10
	defaultDialTimeoutSeconds  = 5
	defaultPortScanTimeoutSecs = 2
	defaultPortScanWorkers     = 10
	defaultProbeTimeoutSecs    = 30
	defaultScanTimeoutSecs     = 300
	defaultConcurrency         = 8
	defaultRateLimit           = 10
)

// ScanRuntimeConfig consolidates flag- and config-driven settings for the
// scan command.
type ScanRuntimeConfig struct {
	Concurrency      int
	RateLimit        int
	ProbeTimeoutSecs int
	ScanTimeoutSecs  int
	HTTPTimeoutSecs  int
	DialTimeoutSecs  int
	PortTimeoutSecs  int
	PortWorkers      int
	Ports            []int
	UserAgent        string
}

func newScanRuntimeConfig() *ScanRuntimeConfig {
	return &ScanRuntimeConfig{
		Concurrency:      defaultConcurrency,
		RateLimit:        defaultRateLimit,
		ProbeTimeoutSecs: defaultProbeTimeoutSecs,
		ScanTimeoutSecs:  defaultScanTimeoutSecs,
		HTTPTimeoutSecs:  defaultHTTPTimeoutSeconds,
		DialTimeoutSecs:  defaultDialTimeoutSeconds,
		PortTimeoutSecs:  defaultPortScanTimeoutSecs,
		PortWorkers:      defaultPortScanWorkers,
	}
}

// applyViper overlays config-file values onto defaults. Flags set
// explicitly on the command line win over both.
func (c *ScanRuntimeConfig) applyViper(flags *pflag.FlagSet) {
	overlay := func(flag, key string, dst *int) {
		if !flags.Changed(flag) && viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	overlay("concurrency", "scan.concurrency", &c.Concurrency)
	overlay("rate-limit", "scan.rate_limit", &c.RateLimit)
	overlay("probe-timeout", "scan.probe_timeout", &c.ProbeTimeoutSecs)
	overlay("scan-timeout", "scan.scan_timeout", &c.ScanTimeoutSecs)
	overlay("http-timeout", "scan.http_timeout", &c.HTTPTimeoutSecs)
	overlay("dial-timeout", "scan.dial_timeout", &c.DialTimeoutSecs)
	overlay("port-timeout", "scan.port_timeout", &c.PortTimeoutSecs)
	overlay("port-workers", "scan.port_workers", &c.PortWorkers)

	if !flags.Changed("ports") && viper.IsSet("scan.ports") {
		c.Ports = viper.GetIntSlice("scan.ports")
	}
	if c.UserAgent == "" && viper.IsSet("scan.user_agent") {
		c.UserAgent = viper.GetString("scan.user_agent")
	}
}

func (c *ScanRuntimeConfig) probeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSecs) * time.Second
}

func (c *ScanRuntimeConfig) scanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutSecs) * time.Second
}
