// Package admin holds the moderation views: users, listings, booking
// payments and support tickets.
package admin

import "sync"

// List is an in-memory collection keyed by id. Views patch it only after the
// server has acknowledged an action.
type List[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	key    func(T) string
}

// NewList creates a list using key to identify items
func NewList[T any](key func(T) string) *List[T] {
	return &List[T]{key: key}
}

// Replace swaps in a freshly loaded collection
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	l.items = append([]T(nil), items...)
	l.loaded = true
	l.mu.Unlock()
}

// Loaded reports whether Replace has run
func (l *List[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Items returns a copy of every item
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T{}, l.items...)
}

// Len returns the number of items
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns the item with id
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if l.key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Patch applies fn to the item with id and reports whether it was found
func (l *List[T]) Patch(id string, fn func(*T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.key(l.items[i]) == id {
			fn(&l.items[i])
			return true
		}
	}
	return false
}

// Remove drops the item with id and reports whether it was found
func (l *List[T]) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.key(l.items[i]) == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Filter returns the items keep accepts, in order
func (l *List[T]) Filter(keep func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, 0, len(l.items))
	for _, it := range l.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
