package storage

import "sync"

// Notifier broadcasts "categories changed" events to registered observers.
// Broadcasts happen after a successful commit and are not part of the
// transactional contract; observer callbacks must not block for long.
type Notifier struct {
	mu   sync.RWMutex
	subs []func()
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a callback invoked after any mutation that may shift
// category totals.
func (n *Notifier) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// broadcast invokes every subscriber. Callbacks receive no payload; they are
// expected to re-query whatever aggregate view they maintain.
func (n *Notifier) broadcast() {
	n.mu.RLock()
	subs := make([]func(), len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}
