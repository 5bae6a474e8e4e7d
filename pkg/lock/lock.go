// Package lock serializes work per key.
package lock

import (
	"context"
	"sync"
)

// Locker runs fn while holding the lock for key. Callers queue behind the
// current holder until ctx is done.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type slot struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker that also reports which keys have work
// queued or running.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (k *KeyedMutex) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	s := k.ref(key)
	defer k.unref(key, s)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.ch }()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Pending reports whether any call for key is waiting or running.
func (k *KeyedMutex) Pending(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.slots[key]
	return ok
}

func (k *KeyedMutex) ref(key string) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	return s
}

func (k *KeyedMutex) unref(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

// Chain holds every locker in order, outermost first.
type Chain []Locker

func (c Chain) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if len(c) == 0 {
		return fn(ctx)
	}
	return c[0].WithLock(ctx, key, func(ctx context.Context) error {
		return c[1:].WithLock(ctx, key, fn)
	})
}
