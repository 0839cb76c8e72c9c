package services

import (
	"log/slog"
	"sync"
	"time"
)

// LockManager hands out one RWMutex per key so that writes to different
// owners' carts and wishlists never contend
type LockManager struct {
	locks    map[string]*sync.RWMutex
	locksMux sync.RWMutex
}

func NewLockManager() *LockManager {
	return &LockManager{
		locks: make(map[string]*sync.RWMutex),
	}
}

// GetLock returns the mutex for key, creating it on first use
func (lm *LockManager) GetLock(key string) *sync.RWMutex {
	lm.locksMux.RLock()
	if lock, exists := lm.locks[key]; exists {
		lm.locksMux.RUnlock()
		return lock
	}
	lm.locksMux.RUnlock()

	lm.locksMux.Lock()
	defer lm.locksMux.Unlock()

	// Double-check in case another goroutine created it
	if lock, exists := lm.locks[key]; exists {
		return lock
	}

	lock := &sync.RWMutex{}
	lm.locks[key] = lock
	slog.Debug("Created new owner lock", "key", key)
	return lock
}

// WithWriteLock runs fn while holding key's write lock
func (lm *LockManager) WithWriteLock(key string, fn func()) {
	start := time.Now()
	lock := lm.GetLock(key)
	lock.Lock()
	defer lock.Unlock()

	fn()

	slog.Debug("Write operation completed", "key", key, "duration", time.Since(start).String())
}

// WithReadLock runs fn while holding key's read lock
func (lm *LockManager) WithReadLock(key string, fn func()) {
	lock := lm.GetLock(key)
	lock.RLock()
	defer lock.RUnlock()

	fn()
}

// Len is the number of keys that have a lock
func (lm *LockManager) Len() int {
	lm.locksMux.RLock()
	defer lm.locksMux.RUnlock()
	return len(lm.locks)
}
