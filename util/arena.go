// util/arena.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"sync"
)

var ErrArenaFull = errors.New("Arena capacity exhausted")

// Arena is a bounded, append-only store of values. Each stored value is
// identified by an integer handle that stays valid for the lifetime of
// the arena; handles are allocated sequentially starting at zero.
type Arena[T any] struct {
	pool     []T
	capacity int
	mu       sync.RWMutex
}

// NewArena returns an arena that holds at most capacity values.
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		pool:     make([]T, 0, min(capacity, 1024)),
		capacity: capacity,
	}
}

// Alloc stores v in the arena and returns its handle. When the arena is
// already holding its full capacity of values, v is not stored and
// ErrArenaFull is returned.
func (a *Arena[T]) Alloc(v T) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pool) >= a.capacity {
		return -1, ErrArenaFull
	}
	a.pool = append(a.pool, v)
	return len(a.pool) - 1, nil
}

// Get returns the value with the given handle.
func (a *Arena[T]) Get(h int) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if h < 0 || h >= len(a.pool) {
		var t T
		return t, false
	}
	return a.pool[h], true
}

// Gather returns the values for the given handles, in order, skipping any
// invalid handles.
func (a *Arena[T]) Gather(handles []int) []T {
	a.mu.RLock()
	defer a.mu.RUnlock()

	r := make([]T, 0, len(handles))
	for _, h := range handles {
		if h >= 0 && h < len(a.pool) {
			r = append(r, a.pool[h])
		}
	}
	return r
}

func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.pool)
}

func (a *Arena[T]) Cap() int {
	return a.capacity
}
