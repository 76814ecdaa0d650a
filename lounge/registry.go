package lounge

import "sync"

// workspaceKey identifies one exclusive admission slot, keyed by
// (role, workspace-name).
type workspaceKey struct {
	role string
	name string
}

// Registry is the process-wide table of workspace locks: at most one
// lounge may hold a given (role, name) pair at a time. The lock is
// exclusive and non-reentrant, and is released on any termination
// path, including a panic unwinding through a deferred release.
type Registry struct {
	mu   sync.Mutex
	held map[workspaceKey]bool
}

// NewRegistry returns an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{held: make(map[workspaceKey]bool)}
}

// TryLock attempts to acquire the (role, name) slot, returning a
// release function and true on success, or false if another
// connection already holds it.
func (r *Registry) TryLock(role, name string) (release func(), ok bool) {
	key := workspaceKey{role: role, name: name}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[key] {
		return nil, false
	}
	r.held[key] = true

	var once sync.Once
	release = func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.held, key)
			r.mu.Unlock()
		})
	}
	return release, true
}
