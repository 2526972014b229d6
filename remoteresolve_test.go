package resolver

import (
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/nbio/st"
)

// startFakeServer runs a minimal UDP DNS responder on an ephemeral loopback
// port, grounded on classmarkets-go-dns-resolver's server_test.go
// (net.ListenPacket + a handler closure), simplified since miekg/dns's own
// dns.Server targets a fixed port and these tests need a fresh one each run.
func startFakeServer(t *testing.T, handle func(*dns.Msg) *dns.Msg) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, 4096)
		for {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			q := new(dns.Msg)
			if err := q.Unpack(buf[:n]); err != nil {
				continue
			}
			resp := handle(q)
			if resp == nil {
				continue
			}
			data, err := resp.Pack()
			if err != nil {
				continue
			}
			pc.WriteTo(data, addr)
		}
	}()

	_, port, err := net.SplitHostPort(pc.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	return port
}

func answerAHandler(ip string) func(*dns.Msg) *dns.Msg {
	return func(q *dns.Msg) *dns.Msg {
		m := new(dns.Msg)
		m.SetReply(q)
		m.Answer = append(m.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
			A:   net.ParseIP(ip),
		})
		return m
	}
}

func mismatchedIDHandler(q *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetReply(q)
	m.Id = q.Id + 1
	return m
}

func TestExchangeOneSuccess(t *testing.T) {
	port := startFakeServer(t, answerAHandler("203.0.113.77"))
	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(time.Second))
	r.dnsPort = port

	msg, err := r.exchangeOne("127.0.0.1", "example.com", TypeA)
	st.Expect(t, err, nil)
	st.Expect(t, len(msg.AN), 1)
	st.Expect(t, msg.AN[0].Data, "203.0.113.77")
}

func TestExchangeOneTransactionIDMismatch(t *testing.T) {
	port := startFakeServer(t, mismatchedIDHandler)
	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(500*time.Millisecond))
	r.dnsPort = port

	_, err := r.exchangeOne("127.0.0.1", "example.com", TypeA)
	st.Expect(t, err, errTxIDMismatch)
}

func TestResolveRemoteDirectAnswerAndCaches(t *testing.T) {
	port := startFakeServer(t, answerAHandler("203.0.113.77"))
	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(time.Second))
	r.dnsPort = port
	r.cache.Add(Record{Name: "", Type: TypeNS, Data: "fake-ns.invalid", TTL: 60})
	r.cache.Add(Record{Name: "fake-ns.invalid", Type: TypeA, Data: "127.0.0.1", TTL: 60})

	msg := newMessage("example.com", TypeA, true)
	ok := r.resolveRemote(msg, "example.com", TypeA)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.AN), 1)
	st.Expect(t, msg.AN[0].Data, "203.0.113.77")

	st.Expect(t, len(r.cache.Query("example.com", TypeA)), 1)
}

func TestNextHopServersPrefersGlue(t *testing.T) {
	r := NewResolver()
	resp := &Message{
		NS: []Record{{Name: "example.com", Type: TypeNS, Data: "ns2.example.com"}},
		AR: []Record{{Name: "ns2.example.com", Type: TypeA, Data: "198.51.100.9"}},
	}
	addrs := r.nextHopServers(resp)
	st.Expect(t, len(addrs), 1)
	st.Expect(t, addrs[0], "198.51.100.9")
}

func TestCandidateServersFallsBackToRootHints(t *testing.T) {
	r := NewResolver()
	addrs := r.candidateServers("nonexistent.example")
	st.Expect(t, len(addrs) > 0, true)
}

func TestCandidateServersFixedUpstreams(t *testing.T) {
	r := NewProxyResolver([]string{"9.9.9.9"})
	addrs := r.candidateServers("example.com")
	st.Expect(t, len(addrs), 1)
	st.Expect(t, addrs[0], "9.9.9.9")
}

// cnameOnlyHandler answers every query with a single CNAME record and no
// A/AAAA, the shape an ANY query's chase must not mistake for a terminal
// answer.
func cnameOnlyHandler(target string) func(*dns.Msg) *dns.Msg {
	return func(q *dns.Msg) *dns.Msg {
		m := new(dns.Msg)
		m.SetReply(q)
		m.Answer = append(m.Answer, &dns.CNAME{
			Hdr:    dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeCNAME, Class: dns.ClassINET, Ttl: 60},
			Target: dns.Fqdn(target),
		})
		return m
	}
}

func TestResolveRemoteANYFollowsCNAMEInsteadOfStopping(t *testing.T) {
	// The alias server answers a CNAME-only response for alias.example.com
	// and an A response for target.example.com, so the same nameserver
	// serves both hops of the chase.
	port := startFakeServer(t, func(q *dns.Msg) *dns.Msg {
		if q.Question[0].Name == dns.Fqdn("alias.example.com") {
			return cnameOnlyHandler("target.example.com")(q)
		}
		return answerAHandler("203.0.113.50")(q)
	})

	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(time.Second))
	r.dnsPort = port
	r.cache.Add(Record{Name: "", Type: TypeNS, Data: "fake-ns.invalid", TTL: 60})
	r.cache.Add(Record{Name: "fake-ns.invalid", Type: TypeA, Data: "127.0.0.1", TTL: 60})

	msg := newMessage("alias.example.com", TypeANY, true)
	ok := r.resolveRemote(msg, "alias.example.com", TypeANY)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.AN), 2)
	st.Expect(t, msg.AN[0].Type, TypeCNAME)
	st.Expect(t, msg.AN[1].Type, TypeA)
	st.Expect(t, msg.AN[1].Data, "203.0.113.50")
}

// soaHandler answers with an empty answer section and a negative-caching SOA
// in authority, the NOERROR/NODATA shape spec.md §4.4 step 7 treats as
// terminal rather than a delegation to chase.
func soaHandler(q *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetReply(q)
	m.Ns = append(m.Ns, &dns.SOA{
		Hdr:     dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 60},
		Ns:      "ns1.example.com.",
		Mbox:    "hostmaster.example.com.",
		Serial:  1,
		Refresh: 60,
		Retry:   60,
		Expire:  60,
		Minttl:  60,
	})
	return m
}

func TestResolveRemoteNegativeCachingSOAIsTerminal(t *testing.T) {
	port := startFakeServer(t, soaHandler)
	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(time.Second))
	r.dnsPort = port
	r.cache.Add(Record{Name: "", Type: TypeNS, Data: "fake-ns.invalid", TTL: 60})
	r.cache.Add(Record{Name: "fake-ns.invalid", Type: TypeA, Data: "127.0.0.1", TTL: 60})

	msg := newMessage("nodata.example.com", TypeA, true)
	ok := r.resolveRemote(msg, "nodata.example.com", TypeA)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.AN), 0)
	st.Expect(t, len(msg.NS), 1)
	st.Expect(t, msg.NS[0].Type, TypeSOA)
}

func TestResolveRemoteMaxRecursionSurfacesErrMaxRecursion(t *testing.T) {
	loopPort := startFakeServer(t, cnameOnlyHandler("loop.example.com"))

	r := NewResolver(WithDialTimeout(time.Second), WithReadTimeout(time.Second))
	r.dnsPort = loopPort
	r.cache.Add(Record{Name: "", Type: TypeNS, Data: "loop-ns.invalid", TTL: 60})
	r.cache.Add(Record{Name: "loop-ns.invalid", Type: TypeA, Data: "127.0.0.1", TTL: 60})

	msg := newMessage("loop.example.com", TypeA, true)
	ok := r.resolveRemote(msg, "loop.example.com", TypeA)
	st.Expect(t, ok, false)
	st.Expect(t, msg.recursionExceeded, true)
	st.Expect(t, resultError(msg), ErrMaxRecursion)
}
