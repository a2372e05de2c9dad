package engine

import "sync"

// lockRegistry hands out per-game exclusive sections with an explicit
// lifecycle: created on first access, removed once the game has ended
// and the last holder releases. Requests for the same game queue;
// different games proceed fully in parallel.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu      sync.Mutex
	refs    int
	defunct bool
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*gameLock)}
}

// acquire blocks until the caller holds the game's exclusive section
// and returns the release function. Release is idempotent.
func (r *lockRegistry) acquire(gameID string) func() {
	r.mu.Lock()
	l, ok := r.locks[gameID]
	if !ok {
		l = &gameLock{}
		r.locks[gameID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			r.mu.Lock()
			l.refs--
			if l.refs == 0 && l.defunct {
				delete(r.locks, gameID)
			}
			r.mu.Unlock()
		})
	}
}

// retire marks a game's lock for removal once all current holders and
// waiters have drained. Called when the game ends.
func (r *lockRegistry) retire(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[gameID]
	if !ok {
		return
	}
	l.defunct = true
	if l.refs == 0 {
		delete(r.locks, gameID)
	}
}

// size reports how many games currently hold a registered lock.
func (r *lockRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
