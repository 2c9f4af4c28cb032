package cart

import "sync"

// lineLocks serializes operations sharing a key. Entries are dropped once no
// caller holds or waits on them.
type lineLocks struct {
	mu sync.Mutex
	m  map[string]*lineLock
}

type lineLock struct {
	sync.Mutex
	refs int
}

func newLineLocks() *lineLocks {
	return &lineLocks{m: map[string]*lineLock{}}
}

func (l *lineLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	ll, ok := l.m[key]
	if !ok {
		ll = &lineLock{}
		l.m[key] = ll
	}
	ll.refs++
	l.mu.Unlock()

	ll.Lock()
	return func() {
		ll.Unlock()
		l.mu.Lock()
		ll.refs--
		if ll.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
