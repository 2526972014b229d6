package resolver

import "strings"

// resolveFromCache implements spec.md §4.3. It performs no network I/O
// itself; it returns true iff the cache (plus, for CNAME chasing, the
// top-level Query re-entering the whole pipeline, which may go remote) or
// local-zone synthesis was sufficient to serve fqdn/qtype. Grounded line-for-line on
// original_source/pydns/aresolver.py's query_cache, resolving the open
// question (spec.md §9) that its NS branch's `r` is `rec`.
func (r *Resolver) resolveFromCache(msg *Message, fqdn string, qtype Type) bool {
	// 1. CNAME expansion.
	cnames := r.cache.Query(fqdn, TypeCNAME)
	if len(cnames) > 0 {
		msg.AN = append(msg.AN, cnames...)
		if !r.recursionAvailable || qtype == TypeCNAME {
			return true
		}
		for _, rec := range cnames {
			logCNAME(r.log, fqdn, rec.Data)
			cres, err := r.Query(rec.Data, qtype)
			if err != nil || cres == nil || cres.Rcode > 0 {
				continue
			}
			msg.AN = append(msg.AN, cres.AN...)
			msg.NS = cres.NS
			msg.AR = cres.AR
		}
		return true
	}

	// 2. Direct match.
	n := 0
	for _, rec := range r.cache.Query(fqdn, qtype) {
		if rec.Type == TypeNS {
			glue := r.cache.QuerySet(rec.Data, []Type{TypeA, TypeAAAA})
			if len(glue) == 0 {
				continue
			}
			msg.AR = append(msg.AR, glue...)
			msg.NS = append(msg.NS, rec)
			if qtype == TypeNS {
				n++
			}
			continue
		}
		msg.AN = append(msg.AN, rec.withName(fqdn))
		if qtype == TypeCNAME || rec.Type != TypeCNAME {
			n++
		}
	}

	// 3. Local authority.
	if r.authoritativeSuffix(fqdn) {
		msg.AA = true
		msg.NS = append(msg.NS, Record{Name: normalizeName(fqdn), Type: TypeNS, Data: "localhost", TTL: Permanent})
		msg.AR = append(msg.AR, Record{Name: normalizeName(fqdn), Type: TypeA, Data: "127.0.0.1", TTL: Permanent})
		if n == 0 {
			msg.Rcode = RcodeName
			n = 1
		}
	}

	return n > 0
}

// authoritativeSuffix reports whether fqdn falls under one of the
// resolver's configured local zones (spec.md §4.3 step 3, §6).
func (r *Resolver) authoritativeSuffix(fqdn string) bool {
	name := normalizeName(fqdn)
	for _, suffix := range r.authoritativeSuffixes {
		suffix = strings.TrimPrefix(normalizeName(suffix), ".")
		if suffix == "" {
			continue
		}
		if name == suffix || strings.HasSuffix(name, "."+suffix) {
			return true
		}
	}
	return false
}
