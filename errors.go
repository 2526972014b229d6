package resolver

import "errors"

// ErrNXDomain indicates the resolver produced an authoritative name-error
// response (Rcode == RcodeName) for a query — distinct from a soft timeout.
var ErrNXDomain = errors.New("resolver: NXDOMAIN")

// ErrServfail indicates both the cache resolver and the remote resolver
// failed to produce a countable answer (Rcode == RcodeFail).
var ErrServfail = errors.New("resolver: SERVFAIL")

// ErrTimeout is returned by Query/QueryContext when the overall 3s query
// deadline (spec.md §4.6) elapses before a result is delivered.
var ErrTimeout = errors.New("resolver: query deadline exceeded")

// ErrMaxRecursion guards the CNAME-chase iteration cap (spec.md §4.4,
// "suggested cap: 16") from degenerating into an unbounded loop.
var ErrMaxRecursion = errors.New("resolver: max CNAME recursion exceeded")
