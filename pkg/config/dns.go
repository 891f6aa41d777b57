package config

import "time"

// DNSConfig configures MX lookups made during registration.
type DNSConfig struct {
	// Server is host:port of the resolver; empty means the system resolv.conf
	Server  string
	Timeout time.Duration
}

func loadDNSConfig() DNSConfig {
	return DNSConfig{
		Server:  getEnv("DNS_SERVER", ""),
		Timeout: getEnvDuration("DNS_TIMEOUT", 5*time.Second),
	}
}
