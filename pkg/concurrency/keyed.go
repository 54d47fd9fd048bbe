// Package concurrency provides per-key locking.
package concurrency

import (
	"sync"
)

// KeyedMutex hands out one mutex per key. Entries are reference counted and
// dropped once no goroutine holds or waits on them, so keys derived from
// unbounded input (token hashes, database paths) do not accumulate.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyedEntry),
	}
}

// Lock blocks until the lock for key is acquired.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the lock for key. As with sync.Mutex, the lock is not tied
// to a goroutine: only the caller that locked key may unlock it, and an extra
// Unlock while anyone else holds or waits on key releases their lock. With no
// holders or waiters Unlock is a no-op.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.locks[key]
	if !ok {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(k.locks, key)
	}
	entry.mu.Unlock()
}

// WithLock runs fn while holding the lock for key.
func (k *KeyedMutex) WithLock(key string, fn func()) {
	k.Lock(key)
	defer k.Unlock(key)
	fn()
}

// Len reports how many keys currently have holders or waiters.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
