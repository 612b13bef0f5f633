package chat

import (
	"sync"

	"chatapp/logger"
)

// Registry is the authoritative in-memory presence map: user id -> the one
// live connection. It is an injectable instance, not package state, so
// tests can run many of them side by side.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]Conn)}
}

// Bind records c as the user's current connection and returns the handle it
// superseded, if any. The registry does not close the old handle; whether
// to kick the duplicate session is the caller's policy.
func (r *Registry) Bind(userID string, c Conn) (prev Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.byUser[userID]
	r.byUser[userID] = c
	return prev
}

// Unbind removes the entry only if c is still the registered handle.
// A disconnect signal from a connection that has already been superseded
// by a newer Bind is a no-op; the return value reports whether the entry
// was actually removed.
func (r *Registry) Unbind(userID string, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[userID]
	if !ok || cur != c {
		return false
	}
	delete(r.byUser, userID)
	return true
}

func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Push transmits data on the user's current connection. Returns false when
// the user is offline (normal, not an error). A transmission failure is
// logged and swallowed; the dead connection gets reaped by its own
// disconnect path.
func (r *Registry) Push(userID string, data []byte) bool {
	c, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	if err := c.Send(data); err != nil {
		logger.Infof("[registry] push failed user=%s conn=%s err=%v", userID, c.ID(), err)
	}
	return true
}

// Broadcast sends data to every bound connection. Per-connection failures
// never abort delivery to the rest.
func (r *Registry) Broadcast(data []byte) {
	r.mu.RLock()
	conns := make(map[string]Conn, len(r.byUser))
	for u, c := range r.byUser {
		conns[u] = c
	}
	r.mu.RUnlock()

	for u, c := range conns {
		if err := c.Send(data); err != nil {
			logger.Infof("[registry] broadcast failed user=%s conn=%s err=%v", u, c.ID(), err)
		}
	}
}

// Online lists currently bound user ids (ops/debugging).
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	return out
}

// CloseAll tears down every connection; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for u, c := range r.byUser {
		_ = c.Close()
		delete(r.byUser, u)
	}
}
