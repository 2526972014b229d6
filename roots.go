package resolver

import (
	_ "embed"
	"strings"

	"github.com/miekg/dns"
)

// named.root is a static embedded snapshot of the root hints file format
// spec.md §6 describes. Fetching/parsing a live copy is the out-of-scope
// "root-hint file fetch/parse" external collaborator named in spec.md §1;
// this resolver only ever consumes the already-parsed seed records.
//
//go:embed named.root
var namedRoot string

// parseRootHints parses the embedded root hints zone data into permanent
// seed Records, grounded on domainr-dnsr's root.go/root_cache.go
// (dns.NewZoneParser(strings.NewReader(root), "", "")).
func parseRootHints() []Record {
	zp := dns.NewZoneParser(strings.NewReader(namedRoot), "", "named.root")
	zp.SetIncludeAllowed(false)

	seeds := make([]Record, 0, 32)
	for drr, ok := zp.Next(); ok; drr, ok = zp.Next() {
		rec, ok := convertRR(drr)
		if !ok {
			continue
		}
		rec.TTL = Permanent
		seeds = append(seeds, rec)
	}
	return seeds
}

// loopbackPTRSeed builds the PTR record for 1.0.0.127.in-addr.arpa that
// spec.md §3/§8 property 2 requires every resolver to seed at construction,
// grounded on original_source's
// `self.add_item('1.0.0.127.in-addr.arpa', types.PTR, self.name)`.
func loopbackPTRSeed(serverName string) Record {
	return Record{
		Name: normalizeName("1.0.0.127.in-addr.arpa"),
		Type: TypePTR,
		Data: serverName,
		TTL:  Permanent,
	}
}
