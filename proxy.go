package resolver

// NewProxyResolver builds a Resolver that sends each question (the first
// hop and each CNAME hop) to a fixed set of upstream servers instead of
// walking the nameserver hierarchy from the cache, restoring the original
// source's AsyncProxyResolver behaviour as strategy injection rather than
// subclassing: candidateServers (remoteresolve.go) short-circuits to
// upstreams whenever fixedUpstreams is set, so the cache resolver, CNAME
// chase, referral following and single-flight dedup all behave exactly as
// in the recursive Resolver.
func NewProxyResolver(upstreams []string, opts ...Option) *Resolver {
	opts = append(append([]Option{}, opts...), withFixedUpstreams(upstreams))
	return NewResolver(opts...)
}
