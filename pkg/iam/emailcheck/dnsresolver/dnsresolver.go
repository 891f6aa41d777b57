// Package dnsresolver queries MX records over the DNS wire protocol.
package dnsresolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/Abraxas-365/nimbus/pkg/iam/emailcheck"
)

const (
	resolvConf = "/etc/resolv.conf"
	// udpSize is the EDNS0 buffer size advertised on UDP queries.
	udpSize = 4096
)

// Resolver implements emailcheck.Resolver against a fixed list of nameservers,
// asking each in turn until one gives a definitive answer.
// Truncated UDP answers are retried over TCP.
type Resolver struct {
	udp     *dns.Client
	tcp     *dns.Client
	servers []string
}

// New creates a resolver. An empty server means the nameservers in /etc/resolv.conf.
func New(server string, timeout time.Duration) (*Resolver, error) {
	servers := []string{}
	if server != "" {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
		servers = append(servers, server)
	} else {
		cfg, err := dns.ClientConfigFromFile(resolvConf)
		if err != nil {
			return nil, fmt.Errorf("dnsresolver: read %s: %w", resolvConf, err)
		}
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	}
	if len(servers) == 0 {
		return nil, errors.New("dnsresolver: no nameservers configured")
	}

	return &Resolver{
		udp:     &dns.Client{Net: "udp", Timeout: timeout},
		tcp:     &dns.Client{Net: "tcp", Timeout: timeout},
		servers: servers,
	}, nil
}

// LookupMX implements emailcheck.Resolver.
func (r *Resolver) LookupMX(ctx context.Context, domain string) ([]emailcheck.MXRecord, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true
	msg.SetEdns0(udpSize, false)

	var lastErr error
	for _, server := range r.servers {
		in, err := r.exchange(ctx, msg, server)
		if err != nil {
			if isTimeout(err) {
				lastErr = fmt.Errorf("%w: %s: %v", emailcheck.ErrTimeout, server, err)
			} else {
				lastErr = fmt.Errorf("dnsresolver: query %s: %w", server, err)
			}
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return mxRecords(in.Answer), nil
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%w: %s", emailcheck.ErrNXDomain, domain)
		default:
			lastErr = fmt.Errorf("dnsresolver: %s answered %s for %s", server, dns.RcodeToString[in.Rcode], domain)
		}
	}
	return nil, lastErr
}

func (r *Resolver) exchange(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error) {
	in, _, err := r.udp.ExchangeContext(ctx, msg, server)
	if err != nil || !in.Truncated {
		return in, err
	}
	in, _, err = r.tcp.ExchangeContext(ctx, msg, server)
	return in, err
}

func mxRecords(answer []dns.RR) []emailcheck.MXRecord {
	var records []emailcheck.MXRecord
	for _, rr := range answer {
		mx, ok := rr.(*dns.MX)
		if !ok {
			continue
		}
		records = append(records, emailcheck.MXRecord{
			Host:       strings.TrimSuffix(mx.Mx, "."),
			Preference: mx.Preference,
		})
	}
	return records
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
