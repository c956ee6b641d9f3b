// Package lockmap provides exclusive locks keyed by an arbitrary comparable
// value. Entries are reference counted and dropped once no goroutine holds or
// waits on them, so the map does not grow with every key ever seen.
package lockmap

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type Map[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

func New[K comparable]() *Map[K] {
	return &Map[K]{locks: make(map[K]*entry)}
}

// Lock blocks until the key is free and returns the matching unlock func.
func (m *Map[K]) Lock(key K) (unlock func()) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.release(key, e)
		})
	}
}

// TryLock acquires the key only if nobody else holds it.
func (m *Map[K]) TryLock(key K) (unlock func(), ok bool) {
	m.mu.Lock()
	e, exists := m.locks[key]
	if !exists {
		e = &entry{}
		m.locks[key] = e
	}
	if !e.mu.TryLock() {
		if !exists {
			delete(m.locks, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	e.refs++
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.release(key, e)
		})
	}, true
}

// WithLock runs fn while holding the key.
func (m *Map[K]) WithLock(key K, fn func() error) error {
	unlock := m.Lock(key)
	defer unlock()
	return fn()
}

func (m *Map[K]) release(key K, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (m *Map[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
