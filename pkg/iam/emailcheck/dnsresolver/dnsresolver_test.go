package dnsresolver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nimbus/pkg/iam/emailcheck"
	"github.com/Abraxas-365/nimbus/pkg/iam/emailcheck/dnsresolver"
)

func serveZone(w dns.ResponseWriter, r *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(r)

	switch r.Question[0].Name {
	case "example.com.":
		for _, line := range []string{
			"example.com. 300 IN MX 20 backup.example.com.",
			"example.com. 300 IN MX 10 mail.example.com.",
		} {
			rr, err := dns.NewRR(line)
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		}
	case "missing.test.":
		m.Rcode = dns.RcodeNameError
	case "refused.test.":
		m.Rcode = dns.RcodeRefused
	case "slow.test.":
		return
	case "big.test.":
		if _, udp := w.RemoteAddr().(*net.UDPAddr); udp {
			m.Truncated = true
			break
		}
		rr, err := dns.NewRR("big.test. 300 IN MX 10 mail.big.test.")
		if err == nil {
			m.Answer = append(m.Answer, rr)
		}
	case "edns.test.":
		opt := r.IsEdns0()
		if opt == nil || opt.UDPSize() < 4096 {
			m.Rcode = dns.RcodeRefused
			break
		}
		rr, err := dns.NewRR("edns.test. 300 IN MX 10 mail.edns.test.")
		if err == nil {
			m.Answer = append(m.Answer, rr)
		}
	}

	_ = w.WriteMsg(m)
}

func startServer(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           dns.HandlerFunc(serveZone),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started

	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

// startDualServer serves the zone over UDP and TCP on the same port.
func startDualServer(t *testing.T) string {
	t.Helper()

	addr := startServer(t)
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		Listener:          ln,
		Handler:           dns.HandlerFunc(serveZone),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started

	t.Cleanup(func() { _ = srv.Shutdown() })
	return addr
}

func newResolver(t *testing.T) *dnsresolver.Resolver {
	t.Helper()
	r, err := dnsresolver.New(startServer(t), 300*time.Millisecond)
	require.NoError(t, err)
	return r
}

func TestLookupMX_Records(t *testing.T) {
	r := newResolver(t)

	records, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []emailcheck.MXRecord{
		{Host: "backup.example.com", Preference: 20},
		{Host: "mail.example.com", Preference: 10},
	}, records)
}

func TestLookupMX_NoRecords(t *testing.T) {
	r := newResolver(t)

	records, err := r.LookupMX(context.Background(), "nomx.test")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLookupMX_NXDomain(t *testing.T) {
	r := newResolver(t)

	_, err := r.LookupMX(context.Background(), "missing.test")
	assert.ErrorIs(t, err, emailcheck.ErrNXDomain)
}

func TestLookupMX_Timeout(t *testing.T) {
	r := newResolver(t)

	_, err := r.LookupMX(context.Background(), "slow.test")
	assert.ErrorIs(t, err, emailcheck.ErrTimeout)
}

func TestLookupMX_OtherRcodeIsUntyped(t *testing.T) {
	r := newResolver(t)

	_, err := r.LookupMX(context.Background(), "refused.test")
	require.Error(t, err)
	assert.NotErrorIs(t, err, emailcheck.ErrNXDomain)
	assert.NotErrorIs(t, err, emailcheck.ErrTimeout)
}

func TestLookupMX_TruncatedRetriesOverTCP(t *testing.T) {
	r, err := dnsresolver.New(startDualServer(t), 300*time.Millisecond)
	require.NoError(t, err)

	records, err := r.LookupMX(context.Background(), "big.test")
	require.NoError(t, err)
	assert.Equal(t, []emailcheck.MXRecord{{Host: "mail.big.test", Preference: 10}}, records)
}

func TestLookupMX_AdvertisesEDNS0(t *testing.T) {
	r := newResolver(t)

	records, err := r.LookupMX(context.Background(), "edns.test")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNew_AddsDefaultPort(t *testing.T) {
	_, err := dnsresolver.New("127.0.0.1", time.Second)
	assert.NoError(t, err)
}
