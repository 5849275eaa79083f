package store

import "sync"

// broadcaster implements the subscribe/notify contract every store exposes.
// Listeners run synchronously, after the store has released its own lock,
// so a listener may read the store that notified it.
type broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// Subscribe registers fn to run after every committed mutation and
// returns the matching unsubscribe function.
func (b *broadcaster) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *broadcaster) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
