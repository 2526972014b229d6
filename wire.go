package resolver

import "github.com/miekg/dns"

// wire.go adapts github.com/miekg/dns to the narrow wire codec contract
// spec.md §6 requires of an external DNS message library:
//
//	encode_request(question: Record) -> bytes, where bytes[0:2] is the
//	  transaction id
//	decode(bytes) -> Message with fields r, an, ns, ar
//
// Grounded on domainr-dnsr's direct dns.Msg construction in dnsr.go
// (SetQuestion/Exchange) and classmarkets-go-dns-resolver's dns.Msg
// question-list construction in resolver.go, collapsed to these two
// functions.

var dnsTypeOf = map[Type]uint16{
	TypeA:     dns.TypeA,
	TypeNS:    dns.TypeNS,
	TypeCNAME: dns.TypeCNAME,
	TypeSOA:   dns.TypeSOA,
	TypePTR:   dns.TypePTR,
	TypeMX:    dns.TypeMX,
	TypeAAAA:  dns.TypeAAAA,
	TypeANY:   dns.TypeANY,
}

var typeOfDNS = map[uint16]Type{
	dns.TypeA:     TypeA,
	dns.TypeNS:    TypeNS,
	dns.TypeCNAME: TypeCNAME,
	dns.TypeSOA:   TypeSOA,
	dns.TypePTR:   TypePTR,
	dns.TypeMX:    TypeMX,
	dns.TypeAAAA:  TypeAAAA,
	dns.TypeANY:   TypeANY,
}

// encodeRequest packs a single-question DNS query for fqdn/qtype, with
// recursion desired turned off (this resolver performs its own iteration;
// spec.md §4.4's exchange is always non-recursive, matching domainr-dnsr's
// qmsg.MsgHdr.RecursionDesired = false). It returns the packed bytes and the
// 16-bit transaction id occupying bytes[0:2], for the caller to match
// against the response.
func encodeRequest(fqdn string, qtype Type) (data []byte, txID uint16, err error) {
	m := new(dns.Msg)
	m.Id = dns.Id()
	m.RecursionDesired = false
	dt, ok := dnsTypeOf[qtype]
	if !ok {
		dt = dns.TypeA
	}
	m.SetQuestion(dns.Fqdn(fqdn), dt)

	data, err = m.Pack()
	if err != nil {
		return nil, 0, err
	}
	return data, m.Id, nil
}

// decodeMessage unpacks a raw DNS response into a Message carrying the
// fields spec.md §6 names (r, an, ns, ar) plus the AA flag; the question
// section is not round-tripped since callers already know what they asked.
func decodeMessage(data []byte) (*Message, error) {
	m := new(dns.Msg)
	if err := m.Unpack(data); err != nil {
		return nil, err
	}
	msg := &Message{Rcode: m.Rcode, AA: m.Authoritative}
	msg.AN = convertRRs(m.Answer)
	msg.NS = convertRRs(m.Ns)
	msg.AR = convertRRs(m.Extra)
	return msg, nil
}

func convertRRs(rrs []dns.RR) []Record {
	out := make([]Record, 0, len(rrs))
	for _, rr := range rrs {
		if rec, ok := convertRR(rr); ok {
			out = append(out, rec)
		}
	}
	return out
}

// convertRR converts a dns.RR into a Record, following the teacher's
// convertRR switch (domainr-dnsr/rr.go) but filling the tagged SOA/MX
// payload fields instead of flattening everything to a string.
func convertRR(drr dns.RR) (Record, bool) {
	hdr := drr.Header()
	name := normalizeName(hdr.Name)
	ttl := int32(hdr.Ttl)

	switch t := drr.(type) {
	case *dns.A:
		return Record{Name: name, Type: TypeA, Data: t.A.String(), TTL: ttl}, true
	case *dns.AAAA:
		return Record{Name: name, Type: TypeAAAA, Data: t.AAAA.String(), TTL: ttl}, true
	case *dns.CNAME:
		return Record{Name: name, Type: TypeCNAME, Data: normalizeName(t.Target), TTL: ttl}, true
	case *dns.NS:
		return Record{Name: name, Type: TypeNS, Data: normalizeName(t.Ns), TTL: ttl}, true
	case *dns.PTR:
		return Record{Name: name, Type: TypePTR, Data: normalizeName(t.Ptr), TTL: ttl}, true
	case *dns.SOA:
		return Record{Name: name, Type: TypeSOA, TTL: ttl, SOA: &SOAData{
			Ns:      normalizeName(t.Ns),
			Mbox:    normalizeName(t.Mbox),
			Serial:  t.Serial,
			Refresh: t.Refresh,
			Retry:   t.Retry,
			Expire:  t.Expire,
			Minttl:  t.Minttl,
		}}, true
	case *dns.MX:
		return Record{Name: name, Type: TypeMX, TTL: ttl, MX: &MXData{
			Preference: t.Preference,
			Host:       normalizeName(t.Mx),
		}}, true
	default:
		return Record{}, false
	}
}
