// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import "sync"

// ObjectPool is the recycling contract for hot-path scratch objects, such
// as the dispatch firing path's batch slabs.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool adapts sync.Pool to a typed pool. Callers reset recycled
// objects themselves; Put stores whatever state the object was left in.
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a SyncPool backed by the given creator.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

// Get returns a recycled object, or a fresh one from the creator.
func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

// Put recycles obj for a later Get.
func (sp *SyncPool[T]) Put(obj T) {
	sp.pool.Put(obj)
}
