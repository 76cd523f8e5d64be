package utils

import "sync"

// CircularBuffer keeps the most recent size items. It is safe for concurrent use.
type CircularBuffer[T any] struct {
	items []T
	size  int
	head  int
	count int
	mutex sync.RWMutex
}

// NewCircularBuffer creates a buffer holding at most size items (minimum 1).
func NewCircularBuffer[T any](size int) *CircularBuffer[T] {
	if size < 1 {
		size = 1
	}
	return &CircularBuffer[T]{
		items: make([]T, size),
		size:  size,
	}
}

// Add stores item, overwriting the oldest one when full.
func (cb *CircularBuffer[T]) Add(item T) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.items[cb.head] = item
	cb.head = (cb.head + 1) % cb.size

	if cb.count < cb.size {
		cb.count++
	}
}

// Recent returns up to limit items, newest first. limit <= 0 returns all.
func (cb *CircularBuffer[T]) Recent(limit int) []T {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	n := cb.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		idx := (cb.head - 1 - i + cb.size) % cb.size
		out = append(out, cb.items[idx])
	}
	return out
}

// Find returns the newest item matching match.
func (cb *CircularBuffer[T]) Find(match func(T) bool) (T, bool) {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	for i := 0; i < cb.count; i++ {
		idx := (cb.head - 1 - i + cb.size) % cb.size
		if match(cb.items[idx]) {
			return cb.items[idx], true
		}
	}
	var zero T
	return zero, false
}

func (cb *CircularBuffer[T]) Len() int {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.count
}

// Clear drops every item.
func (cb *CircularBuffer[T]) Clear() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	var zero T
	for i := range cb.items {
		cb.items[i] = zero
	}
	cb.count = 0
	cb.head = 0
}
