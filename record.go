package resolver

import (
	"strconv"
	"strings"
	"time"
)

// Type is a DNS resource record type code, matching the IANA DNS type
// registry values named in spec.md §6.
type Type uint16

const (
	TypeA     Type = 1
	TypeNS    Type = 2
	TypeCNAME Type = 5
	TypeSOA   Type = 6
	TypePTR   Type = 12
	TypeMX    Type = 15
	TypeAAAA  Type = 28
	TypeANY   Type = 255
)

var typeNames = map[Type]string{
	TypeA:     "A",
	TypeNS:    "NS",
	TypeCNAME: "CNAME",
	TypeSOA:   "SOA",
	TypePTR:   "PTR",
	TypeMX:    "MX",
	TypeAAAA:  "AAAA",
	TypeANY:   "ANY",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "TYPE" + strconv.Itoa(int(t))
}

// SOAData holds the tuple payload of an SOA record.
type SOAData struct {
	Ns      string
	Mbox    string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minttl  uint32
}

// MXData holds the tuple payload of an MX record.
type MXData struct {
	Preference uint16
	Host       string
}

// Permanent marks a record that must never expire or be evicted (root
// hints, local-zone seeds, the loopback PTR seed).
const Permanent int32 = -1

// Record is the unit of DNS data held in the cache and assembled into
// Messages. Unlike the Python source's duck-typed `data` field, the
// type-specific payload is carried in dedicated, nil-unless-applicable
// fields (SOA, MX) instead of an untyped string for every record kind.
type Record struct {
	Name string // normalised: lowercase, no trailing dot
	Type Type
	Data string // IP address (A/AAAA) or domain name (CNAME/NS/PTR) payload
	SOA  *SOAData
	MX   *MXData
	TTL  int32 // seconds; Permanent (-1) means "never expires"

	// ExpiresAt is set at insertion time for records with TTL > 0 and
	// compared against time.Now() on read, per spec.md §9's recommendation
	// to track insertion time rather than decrement TTL on every read.
	ExpiresAt time.Time
}

// IsPermanent reports whether rr must never be evicted or overwritten.
func (rr Record) IsPermanent() bool {
	return rr.TTL == Permanent
}

// Expired reports whether rr's TTL has elapsed relative to now.
func (rr Record) Expired(now time.Time) bool {
	if rr.IsPermanent() {
		return false
	}
	return !rr.ExpiresAt.IsZero() && now.After(rr.ExpiresAt)
}

// withName returns a copy of rr rebranded under name, used when the cache
// resolver re-serves a record under the name it was originally queried for
// (spec.md §4.3 step 2: "append a copy of the record (rebranded with
// name = fqdn)").
func (rr Record) withName(name string) Record {
	rr.Name = normalizeName(name)
	return rr
}

// String renders rr in zone-file-ish format, matching the teacher's RR.String.
func (rr Record) String() string {
	ttl := rr.TTL
	if ttl < 0 {
		ttl = 0
	}
	return rr.Name + "\t" + strconv.Itoa(int(ttl)) + "\tIN\t" + rr.Type.String() + "\t" + rr.dataString()
}

func (rr Record) dataString() string {
	switch {
	case rr.SOA != nil:
		return rr.SOA.Ns + " " + rr.SOA.Mbox
	case rr.MX != nil:
		return rr.MX.Host
	default:
		return rr.Data
	}
}

// normalizeName lowercases name and strips a trailing dot, per spec.md §3's
// invariant that names are stored without a trailing dot and compared
// case-insensitively.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	return strings.TrimSuffix(name, ".")
}

// typeMatches reports whether rr's type satisfies a query for want, where
// want == TypeANY matches everything (spec.md §3's cache query contract).
func typeMatches(rrType, want Type) bool {
	return want == TypeANY || rrType == want
}

// typeInSet reports whether rr's type is a member of a wildcard set, e.g.
// {TypeA, TypeAAAA} for address-record glue lookups.
func typeInSet(rrType Type, set []Type) bool {
	for _, t := range set {
		if t == rrType {
			return true
		}
	}
	return false
}
