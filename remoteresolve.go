package resolver

import (
	"errors"
	"net"
	"strings"
	"time"
)

// maxCNAMEChase bounds the CNAME-following loop in resolveRemote, resolving
// the open question spec.md §9 leaves unspecified ("a hard cap, suggested
// 16, is recommended").
const maxCNAMEChase = 16

// resolveRemote implements spec.md §4.4: an iterative nameserver walk,
// starting from the best-matching delegation already held in the cache
// (initially the root hints), following referrals and CNAMEs until an
// answer, a name error, or maxCNAMEChase is reached. Grounded on
// domainr-dnsr's dnsr.go resolve loop and classmarkets-go-dns-resolver's
// ns.go glue handling, adapted to raw per-attempt UDP so the 1s/3s
// connect/read split of spec.md §4.4 is reachable (dns.Client.Exchange
// does not expose that split).
func (r *Resolver) resolveRemote(msg *Message, fqdn string, qtype Type) bool {
	name := fqdn
	servers := r.candidateServers(name)
	if len(servers) == 0 {
		return false
	}

	for hop := 0; hop < maxCNAMEChase; hop++ {
		resp, server, ok := r.exchangeAny(servers, name, qtype)
		if !ok {
			return false
		}
		r.cacheExchangeRecords(resp)

		if resp.Rcode == RcodeName {
			msg.Rcode = RcodeName
			return true
		}

		gotAnswer := false
		cnameTarget := ""
		queriedName := normalizeName(name)
		for _, rec := range resp.AN {
			msg.AN = append(msg.AN, rec)
			if rec.Type == TypeCNAME && qtype != TypeCNAME {
				cnameTarget = rec.Data
			}
			if rec.Name == queriedName && (qtype == TypeCNAME || rec.Type != TypeCNAME) {
				gotAnswer = true
			}
		}
		if gotAnswer {
			msg.AA = resp.AA
			return true
		}
		if cnameTarget != "" {
			logCNAME(r.log, name, cnameTarget)
			name = cnameTarget
			next := r.candidateServers(name)
			if len(next) == 0 {
				return false
			}
			servers = next
			continue
		}

		// A negative-caching SOA in the authority section (NOERROR/NODATA),
		// or an NS query answered through the authority section, is a
		// terminal answer, not a referral to chase.
		for _, rec := range resp.NS {
			if rec.Type == TypeSOA || qtype == TypeNS {
				msg.NS = append(msg.NS, rec)
				gotAnswer = true
			}
		}
		if gotAnswer {
			msg.AA = resp.AA
			return true
		}

		// No answer, no CNAME: a delegation, or a dead end.
		if len(resp.NS) == 0 {
			return false
		}
		msg.NS = resp.NS
		msg.AR = resp.AR
		next := r.nextHopServers(resp)
		if len(next) == 0 {
			return false
		}
		servers = next
	}

	logMaxRecursion(r.log, fqdn, qtype)
	msg.recursionExceeded = true
	return false
}

// cacheExchangeRecords inserts every learned (TTL > 0) record from a
// response into the cache, excluding SOA and MX records whose tuple
// payload carries no address to glue against and isn't useful for future
// nameserver discovery.
func (r *Resolver) cacheExchangeRecords(resp *Message) {
	for _, sec := range [][]Record{resp.AN, resp.NS, resp.AR} {
		for _, rec := range sec {
			if rec.TTL <= 0 || rec.Type == TypeSOA || rec.Type == TypeMX {
				continue
			}
			r.cache.Add(rec)
		}
	}
}

// candidateServers returns the addresses of the best-known nameservers for
// fqdn: the fixed upstream list for a proxy resolver, or otherwise the
// glue addresses of the longest cached NS delegation matching fqdn's
// ancestor suffixes, falling back to the root hints.
func (r *Resolver) candidateServers(fqdn string) []string {
	if len(r.fixedUpstreams) > 0 {
		return r.fixedUpstreams
	}

	name := normalizeName(fqdn)
	labels := strings.Split(name, ".")
	for i := range labels {
		suffix := strings.Join(labels[i:], ".")
		if addrs := r.glueAddrs(r.cache.Query(suffix, TypeNS)); len(addrs) > 0 {
			return addrs
		}
	}
	return r.glueAddrs(r.cache.Query("", TypeNS))
}

// glueAddrs resolves a set of NS records to IP addresses, using cached
// address glue where present and otherwise recursing into the top-level
// Query to resolve the nameserver's own hostname.
func (r *Resolver) glueAddrs(ns []Record) []string {
	var addrs []string
	for _, rec := range ns {
		glue := r.cache.QuerySet(rec.Data, []Type{TypeA, TypeAAAA})
		if len(glue) > 0 {
			for _, g := range glue {
				addrs = append(addrs, g.Data)
			}
			continue
		}
		res, err := r.Query(rec.Data, TypeA)
		if err != nil || res == nil {
			continue
		}
		for _, a := range res.AN {
			if a.Type == TypeA {
				addrs = append(addrs, a.Data)
			}
		}
	}
	return addrs
}

// nextHopServers resolves the nameservers named in a referral's authority
// section to addresses, preferring additional-section glue over a fresh
// recursive lookup.
func (r *Resolver) nextHopServers(resp *Message) []string {
	glueByName := make(map[string][]string)
	for _, rec := range resp.AR {
		if rec.Type == TypeA || rec.Type == TypeAAAA {
			glueByName[rec.Name] = append(glueByName[rec.Name], rec.Data)
		}
	}

	var addrs []string
	for _, ns := range resp.NS {
		if ns.Type != TypeNS {
			continue
		}
		if g, ok := glueByName[ns.Data]; ok {
			addrs = append(addrs, g...)
			continue
		}
		res, err := r.Query(ns.Data, TypeA)
		if err != nil || res == nil {
			continue
		}
		for _, a := range res.AN {
			if a.Type == TypeA {
				addrs = append(addrs, a.Data)
			}
		}
	}
	return addrs
}

// exchangeAny tries each candidate server in order, returning the first
// that answers successfully within the per-attempt timeouts.
func (r *Resolver) exchangeAny(servers []string, fqdn string, qtype Type) (*Message, string, bool) {
	for _, addr := range servers {
		start := time.Now()
		resp, err := r.exchangeOne(addr, fqdn, qtype)
		logExchange(r.log, addr, fqdn, qtype, start, err)
		if err == nil {
			return resp, addr, true
		}
	}
	return nil, "", false
}

var errTxIDMismatch = errors.New("resolver: transaction id mismatch")

// exchangeOne performs a single UDP request/response exchange against
// addr, with the 1s connect / 3s read timeout split spec.md §4.4 mandates.
func (r *Resolver) exchangeOne(addr string, fqdn string, qtype Type) (*Message, error) {
	data, txID, err := encodeRequest(fqdn, qtype)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("udp", net.JoinHostPort(addr, r.dnsPort), r.dialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(time.Now().Add(r.readTimeout)); err != nil {
		return nil, err
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	if n < 2 || buf[0] != byte(txID>>8) || buf[1] != byte(txID) {
		return nil, errTxIDMismatch
	}
	return decodeMessage(buf[:n])
}
