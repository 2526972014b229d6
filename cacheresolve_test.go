package resolver

import (
	"testing"

	"github.com/nbio/st"
)

func newTestResolver(opts ...Option) *Resolver {
	base := []Option{WithRecursionAvailable(true)}
	return NewResolver(append(base, opts...)...)
}

func TestResolveFromCacheDirectMatch(t *testing.T) {
	r := newTestResolver()
	r.cache.Add(Record{Name: "host.example.com", Type: TypeA, Data: "203.0.113.5", TTL: 60})

	msg := newMessage("host.example.com", TypeA, true)
	ok := r.resolveFromCache(msg, "host.example.com", TypeA)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.AN), 1)
	st.Expect(t, msg.AN[0].Data, "203.0.113.5")
}

func TestResolveFromCacheNoMatchReturnsFalse(t *testing.T) {
	r := newTestResolver()
	msg := newMessage("nowhere.example.com", TypeA, true)
	ok := r.resolveFromCache(msg, "nowhere.example.com", TypeA)
	st.Expect(t, ok, false)
}

func TestResolveFromCacheCNAMEWithoutFollow(t *testing.T) {
	r := newTestResolver(WithRecursionAvailable(false))
	r.cache.Add(Record{Name: "alias.example.com", Type: TypeCNAME, Data: "canonical.example.com", TTL: 60})

	msg := newMessage("alias.example.com", TypeA, false)
	ok := r.resolveFromCache(msg, "alias.example.com", TypeA)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.AN), 1)
	st.Expect(t, msg.AN[0].Type, TypeCNAME)
}

func TestResolveFromCacheCNAMEFollowsThroughQuery(t *testing.T) {
	r := newTestResolver()
	r.cache.Add(Record{Name: "alias.example.com", Type: TypeCNAME, Data: "canonical.example.com", TTL: 60})
	r.cache.Add(Record{Name: "canonical.example.com", Type: TypeA, Data: "203.0.113.9", TTL: 60})

	msg := newMessage("alias.example.com", TypeA, true)
	ok := r.resolveFromCache(msg, "alias.example.com", TypeA)
	st.Expect(t, ok, true)

	var sawCNAME, sawA bool
	for _, rec := range msg.AN {
		if rec.Type == TypeCNAME {
			sawCNAME = true
		}
		if rec.Type == TypeA && rec.Data == "203.0.113.9" {
			sawA = true
		}
	}
	st.Expect(t, sawCNAME, true)
	st.Expect(t, sawA, true)
}

func TestResolveFromCacheNSWithoutGlueSkipped(t *testing.T) {
	r := newTestResolver()
	r.cache.Add(Record{Name: "example.com", Type: TypeNS, Data: "ns1.example.com", TTL: 60})

	msg := newMessage("example.com", TypeNS, true)
	ok := r.resolveFromCache(msg, "example.com", TypeNS)
	st.Expect(t, ok, false)
}

func TestResolveFromCacheNSWithGlue(t *testing.T) {
	r := newTestResolver()
	r.cache.Add(Record{Name: "example.com", Type: TypeNS, Data: "ns1.example.com", TTL: 60})
	r.cache.Add(Record{Name: "ns1.example.com", Type: TypeA, Data: "203.0.113.53", TTL: 60})

	msg := newMessage("example.com", TypeNS, true)
	ok := r.resolveFromCache(msg, "example.com", TypeNS)
	st.Expect(t, ok, true)
	st.Expect(t, len(msg.NS), 1)
	st.Expect(t, len(msg.AR), 1)
}

func TestResolveFromCacheLocalAuthority(t *testing.T) {
	r := newTestResolver(WithAuthoritativeSuffixes("lan"))

	msg := newMessage("printer.lan", TypeA, true)
	ok := r.resolveFromCache(msg, "printer.lan", TypeA)
	st.Expect(t, ok, true)
	st.Expect(t, msg.AA, true)
	st.Expect(t, msg.Rcode, RcodeName)
	st.Expect(t, len(msg.NS), 1)
	st.Expect(t, len(msg.AR), 1)
	st.Expect(t, msg.AR[0].Data, "127.0.0.1")
}

func TestAuthoritativeSuffixMatching(t *testing.T) {
	r := newTestResolver(WithAuthoritativeSuffixes(".lan"))
	st.Expect(t, r.authoritativeSuffix("host.lan"), true)
	st.Expect(t, r.authoritativeSuffix("lan"), true)
	st.Expect(t, r.authoritativeSuffix("vlan.com"), false)
	st.Expect(t, r.authoritativeSuffix("example.com"), false)
}
