package resolver

// Response codes, per spec.md §3: 0=ok, 2=server failure, 3=name error.
const (
	RcodeOK   = 0
	RcodeFail = 2
	RcodeName = 3
)

// Message is a DNS response being assembled: the question plus the three
// record sections, and the flags spec.md §3 names. It corresponds directly
// to the original source's utils.DNSMessage (res.qd/an/ns/ar, res.ra,
// res.aa, res.r) — domainr-dnsr's flatter []*RR API has no equivalent, so
// this type is modelled on the original rather than the teacher.
type Message struct {
	QD []Record // question
	AN []Record // answer
	NS []Record // authority
	AR []Record // additional

	RA    bool // recursion available
	AA    bool // authoritative answer
	Rcode int  // 0 ok, 2 server failure, 3 name error

	// recursionExceeded marks a failure caused by exhausting maxCNAMEChase,
	// so resultError can surface ErrMaxRecursion instead of ErrServfail.
	recursionExceeded bool
}

// newMessage builds a fresh response for a query, with the question section
// populated and RA set according to the resolver's recursion policy.
func newMessage(fqdn string, qtype Type, recursionAvailable bool) *Message {
	return &Message{
		QD: []Record{{Name: normalizeName(fqdn), Type: qtype}},
		RA: recursionAvailable,
	}
}
