package engine

import "sync"

// Feed holds the latest snapshot of one live view and fans it out to
// listeners. Listeners run on the engine goroutine that produced the
// snapshot, one emission at a time; they must not call back into the engine
// synchronously.
type Feed struct {
	name string

	// deliver serializes publish so listeners observe emissions in order.
	deliver sync.Mutex

	mu        sync.RWMutex
	seq       uint64
	current   []Contact
	query     string
	err       error
	listeners []func([]Contact)
}

func newFeed(name string) *Feed {
	return &Feed{name: name}
}

// Name identifies the view in logs.
func (f *Feed) Name() string {
	return f.name
}

// Snapshot returns a copy of the latest emitted list.
func (f *Feed) Snapshot() []Contact {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Contact, len(f.current))
	copy(out, f.current)
	return out
}

// Query returns the input the latest list was computed for: the dialer
// digits for suggestions, the search text for the main list. Called from a
// listener it matches the list being delivered.
func (f *Feed) Query() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.query
}

// Err returns the error of the most recent failed upstream emission, or nil
// once a later emission succeeded.
func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// AddListener registers fn to be called with every new list.
func (f *Feed) AddListener(fn func([]Contact)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// publish emits contacts, computed for query, unless a newer sequence
// number was already published. Equal sequence numbers are re-emissions of the same request
// (store changes) and go through. Reports whether the list was emitted.
func (f *Feed) publish(seq uint64, query string, contacts []Contact) bool {
	f.deliver.Lock()
	defer f.deliver.Unlock()

	f.mu.Lock()
	if seq < f.seq {
		f.mu.Unlock()
		return false
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	f.seq = seq
	f.current = contacts
	f.query = query
	f.err = nil
	listeners := make([]func([]Contact), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		out := make([]Contact, len(contacts))
		copy(out, contacts)
		fn(out)
	}
	return true
}

// advance rejects every later publish with a sequence number below seq,
// without emitting anything.
func (f *Feed) advance(seq uint64) {
	f.mu.Lock()
	if seq > f.seq {
		f.seq = seq
	}
	f.mu.Unlock()
}

// fail records err and keeps the last good list.
func (f *Feed) fail(seq uint64, err error) {
	f.mu.Lock()
	if seq >= f.seq {
		f.err = err
	}
	f.mu.Unlock()
}
