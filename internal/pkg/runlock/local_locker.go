package runlock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker serialises runs inside one process. It is the fallback when
// Redis is unavailable; it does not protect against a second replica.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, _ time.Duration) (Lease, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, ErrLocked
	}
	return &localLease{m: m}, nil
}

type localLease struct {
	once sync.Once
	m    *sync.Mutex
}

func (l *localLease) Release(context.Context) error {
	l.once.Do(l.m.Unlock)
	return nil
}
