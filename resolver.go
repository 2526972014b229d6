package resolver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Default timing parameters, per spec.md §4.4/§4.6.
const (
	defaultDialTimeout  = 1 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultQueryTimeout = 3 * time.Second
	defaultQueueSize    = 256
)

// Resolver is an asynchronous recursive DNS resolver: a cache, a
// single-flight work queue, and the dispatcher goroutine that drains it.
// Grounded on the functional-options construction domainr-dnsr's
// resolver_test.go implies (NewResolver(...Option)), generalised to
// SPEC_FULL §3's configuration surface.
type Resolver struct {
	cache *Cache
	sf    *singleFlight
	log   *logrus.Entry

	serverName            string
	authoritativeSuffixes []string
	recursionAvailable    bool

	dialTimeout   time.Duration
	readTimeout   time.Duration
	queryDeadline time.Duration

	// dnsPort is the UDP port exchangeOne dials. It is always "53" outside
	// of tests, which override it (same package) to point at an ephemeral
	// mock server.
	dnsPort string

	// fixedUpstreams, when non-empty, makes this a proxy resolver
	// (proxy.go): nameserver discovery (the first hop and each CNAME hop)
	// returns these addresses instead of walking the nameserver hierarchy
	// from the cache. Referrals in their responses are still followed.
	fixedUpstreams []string
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithCacheSize bounds the learned-record tier of the resolver's cache.
func WithCacheSize(size int) Option {
	return func(r *Resolver) { r.cache = NewCache(size) }
}

// WithServerName sets the name this resolver answers loopback PTR queries
// as: the data of the 1.0.0.127.in-addr.arpa PTR record seeded at
// construction. It is used nowhere else.
func WithServerName(name string) Option {
	return func(r *Resolver) { r.serverName = name }
}

// WithAuthoritativeSuffixes registers local zones this resolver answers for
// directly (spec.md §4.3 step 3), without a matching cache entry required.
func WithAuthoritativeSuffixes(suffixes ...string) Option {
	return func(r *Resolver) { r.authoritativeSuffixes = append(r.authoritativeSuffixes, suffixes...) }
}

// WithLogger overrides the default logrus logger.
func WithLogger(log *logrus.Logger) Option {
	return func(r *Resolver) { r.log = logrus.NewEntry(log) }
}

// WithDialTimeout overrides the per-attempt UDP connect timeout (default 1s).
func WithDialTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.dialTimeout = d }
}

// WithReadTimeout overrides the per-attempt UDP read timeout (default 3s).
func WithReadTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.readTimeout = d }
}

// WithQueryDeadline overrides the overall per-query deadline Query applies
// (default 3s, spec.md §4.6).
func WithQueryDeadline(d time.Duration) Option {
	return func(r *Resolver) { r.queryDeadline = d }
}

// WithQueueSize overrides the dispatcher's work queue buffer size.
func WithQueueSize(size int) Option {
	return func(r *Resolver) { r.sf = newSingleFlight(size) }
}

// WithRecursionAvailable overrides whether this resolver advertises RA in
// its responses and whether the cache resolver follows cached CNAMEs
// (default true). The remote resolver follows CNAMEs either way.
func WithRecursionAvailable(available bool) Option {
	return func(r *Resolver) { r.recursionAvailable = available }
}

func withFixedUpstreams(upstreams []string) Option {
	return func(r *Resolver) { r.fixedUpstreams = upstreams }
}

// NewResolver builds a Resolver seeded with the embedded root hints and a
// loopback PTR record, and starts its dispatcher goroutine. Grounded on
// domainr-dnsr's New()'s root-cache seeding, split across the
// cache/singleflight/dispatcher components SPEC_FULL §2 names.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		serverName:         "resolv",
		recursionAvailable: true,
		dialTimeout:        defaultDialTimeout,
		readTimeout:        defaultReadTimeout,
		queryDeadline:      defaultQueryTimeout,
		dnsPort:            "53",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache(0)
	}
	if r.sf == nil {
		r.sf = newSingleFlight(defaultQueueSize)
	}
	if r.log == nil {
		r.log = logrus.NewEntry(defaultLogger())
	}

	r.cache.SeedRoots(parseRootHints())
	r.cache.Add(loopbackPTRSeed(r.serverName))

	go r.dispatchLoop()
	return r
}

// Query resolves fqdn/qtype against the overall query deadline configured
// for r (default 3s), per spec.md §4.6.
func (r *Resolver) Query(fqdn string, qtype Type) (*Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryDeadline)
	defer cancel()
	return r.QueryContext(ctx, fqdn, qtype)
}

// QueryContext resolves fqdn/qtype, coalescing with any identical in-flight
// query (spec.md §4.2) and returning when ctx is done if no result has
// arrived by then.
func (r *Resolver) QueryContext(ctx context.Context, fqdn string, qtype Type) (*Message, error) {
	fqdn = normalizeName(fqdn)
	start := time.Now()
	logResolveStart(r.log, fqdn, qtype)

	w := r.sf.queryFuture(key{Name: fqdn, QType: qtype})
	select {
	case <-w.done:
		err := resultError(w.msg)
		logResolveEnd(r.log, fqdn, qtype, start, w.msg, err)
		return w.msg, err
	case <-ctx.Done():
		logResolveEnd(r.log, fqdn, qtype, start, nil, ErrTimeout)
		return nil, ErrTimeout
	}
}

// resultError maps a completed Message's Rcode to the sentinel errors
// spec.md §4.6/§8 distinguishes: ErrMaxRecursion when the chase cap was
// exhausted, nil on success, ErrNXDomain on an authoritative name error,
// ErrServfail otherwise.
func resultError(msg *Message) error {
	if msg == nil {
		return ErrServfail
	}
	if msg.recursionExceeded {
		return ErrMaxRecursion
	}
	switch msg.Rcode {
	case RcodeOK:
		return nil
	case RcodeName:
		return ErrNXDomain
	default:
		return ErrServfail
	}
}
