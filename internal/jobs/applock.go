package jobs

import "sync"

// AppLocks serializes golden-record assembly per application. Concurrent
// formatting attempts for the same application take turns; different
// applications never contend.
type AppLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAppLocks() *AppLocks {
	return &AppLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the application's lock is held and returns the unlock
// function.
func (a *AppLocks) Lock(applicationID string) func() {
	a.mu.Lock()
	m, ok := a.locks[applicationID]
	if !ok {
		m = &sync.Mutex{}
		a.locks[applicationID] = m
	}
	a.mu.Unlock()
	m.Lock()
	return m.Unlock
}
