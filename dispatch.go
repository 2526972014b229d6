package resolver

// dispatchLoop is the resolver's single long-running dispatcher goroutine.
// It drains the single-flight work queue and spawns one resolution
// goroutine per (name, qtype) key, per spec.md §4.2's decoupled
// queue-plus-dispatcher architecture (the reason a hand-rolled single
// flight was chosen over golang.org/x/sync/singleflight, which couples
// the waiting caller's own goroutine to the work instead of a shared
// dispatcher).
func (r *Resolver) dispatchLoop() {
	for k := range r.sf.queue {
		go r.resolveKey(k)
	}
}

// resolveKey runs the full cache-then-remote pipeline (spec.md §4.1) for a
// single dequeued key and delivers the result to every waiter registered
// under it.
func (r *Resolver) resolveKey(k key) {
	r.sf.mu.Lock()
	w := r.sf.pending[k]
	r.sf.mu.Unlock()
	if w == nil {
		return
	}

	msg := newMessage(k.Name, k.QType, r.recursionAvailable)
	ok := r.resolveFromCache(msg, k.Name, k.QType)
	if !ok {
		ok = r.resolveRemote(msg, k.Name, k.QType)
	}
	if !ok && msg.Rcode == RcodeOK {
		msg.Rcode = RcodeFail
	}

	r.sf.complete(k, w, msg)
}
