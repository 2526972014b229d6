package resolver

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the learned-record tier of the Cache. Permanent
// (TTL == -1) records live outside this bound entirely, per spec.md §3's
// invariant that they are never evicted.
const DefaultCacheSize = 10000

// Cache is the resolver's in-memory, keyed record store: a mapping from
// normalised name to the records held under that name (spec.md §3/§4.1).
//
// Storage is split into two tiers, grounded on domainr-dnsr's two cache.go
// variants: an unbounded `permanent` map for seed data that must survive
// forever, and a bounded LRU for records learned from upstream responses,
// which are allowed to be evicted under memory pressure without violating
// any invariant (they'd simply be re-resolved on next query).
type Cache struct {
	mu        sync.RWMutex
	permanent map[string][]Record
	learned   *lru.Cache[string, []Record]
}

// NewCache builds an empty Cache. size <= 0 selects DefaultCacheSize for the
// learned-record tier, mirroring domainr-dnsr's New(size)/newCache(capacity)
// "defaults if size <= 0" convention.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	learned, _ := lru.New[string, []Record](size)
	return &Cache{
		permanent: make(map[string][]Record),
		learned:   learned,
	}
}

// Add inserts a record under its normalised name. Duplicates within the
// same (name, type, data) are permitted; spec.md §4.1 makes dedup the
// caller's responsibility.
func (c *Cache) Add(rr Record) {
	rr.Name = normalizeName(rr.Name)
	if rr.TTL > 0 {
		rr.ExpiresAt = time.Now().Add(time.Duration(rr.TTL) * time.Second)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rr.IsPermanent() {
		c.permanent[rr.Name] = append(c.permanent[rr.Name], rr)
		return
	}
	existing, _ := c.learned.Get(rr.Name)
	c.learned.Add(rr.Name, append(existing, rr))
}

// SeedRoots bulk-inserts root hints (or any other seed data) with
// TTL = Permanent, per spec.md §4.1's seed_roots contract.
func (c *Cache) SeedRoots(seeds []Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rr := range seeds {
		rr.Name = normalizeName(rr.Name)
		rr.TTL = Permanent
		c.permanent[rr.Name] = append(c.permanent[rr.Name], rr)
	}
}

// Query returns every non-expired record at name whose type matches qtype
// (TypeANY matches all), per spec.md §3/§4.1.
func (c *Cache) Query(name string, qtype Type) []Record {
	return c.query(name, func(t Type) bool { return typeMatches(t, qtype) })
}

// QuerySet returns every non-expired record at name whose type is a member
// of set (e.g. {TypeA, TypeAAAA} for address-record glue lookups).
func (c *Cache) QuerySet(name string, set []Type) []Record {
	return c.query(name, func(t Type) bool { return typeInSet(t, set) })
}

func (c *Cache) query(name string, match func(Type) bool) []Record {
	name = normalizeName(name)
	now := time.Now()

	c.mu.RLock()
	perm := c.permanent[name]
	learned, _ := c.learned.Get(name)
	c.mu.RUnlock()

	out := make([]Record, 0, len(perm)+len(learned))
	for _, rr := range perm {
		if match(rr.Type) {
			out = append(out, rr)
		}
	}
	for _, rr := range learned {
		if rr.Expired(now) {
			continue
		}
		if match(rr.Type) {
			out = append(out, rr)
		}
	}
	return out
}

// Len reports the total number of distinct names held in either tier,
// primarily for tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{}, len(c.permanent)+c.learned.Len())
	for name := range c.permanent {
		seen[name] = struct{}{}
	}
	for _, name := range c.learned.Keys() {
		seen[name] = struct{}{}
	}
	return len(seen)
}
