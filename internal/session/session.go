// Package session holds the currently logged-in user for one front end.
package session

import (
	"sync"

	"quiz-rewards-engine/internal/domain"
)

// Principal identifies the logged-in user.
type Principal struct {
	Username string
	Role     domain.Role
}

// Holder is an explicit replacement for a process-wide current-user pointer.
// The zero value is logged out.
type Holder struct {
	mu      sync.RWMutex
	current *Principal
}

func New() *Holder {
	return &Holder{}
}

func (h *Holder) Login(username string, role domain.Role) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = &Principal{Username: username, Role: role}
}

func (h *Holder) Logout() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil
}

func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current != nil
}

// Current returns the logged-in principal, if any.
func (h *Holder) Current() (Principal, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Principal{}, false
	}
	return *h.current, true
}
