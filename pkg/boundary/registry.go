package boundary

import (
	"math"

	"github.com/luthersystems/yalp/pkg/yalp"
	"github.com/pkg/errors"
)

// Handle is an opaque reference to a session held by the host.  The zero
// Handle is never valid and signals failure across the boundary.
type Handle uint32

// Registry maps live handles to their sessions.  Handles are handed out in
// increasing order starting at 1 and are never reused, so a freed handle
// stays invalid.
type Registry struct {
	last     Handle
	sessions map[Handle]*yalp.Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[Handle]*yalp.Session),
	}
}

// Add registers s and returns its new handle.
func (r *Registry) Add(s *yalp.Session) (Handle, error) {
	if s == nil {
		return 0, errors.New("nil session")
	}
	if r.last == math.MaxUint32 {
		return 0, errors.New("session handles exhausted")
	}
	r.last++
	r.sessions[r.last] = s
	return r.last, nil
}

// Get returns the session for h.
func (r *Registry) Get(h Handle) (*yalp.Session, error) {
	s, ok := r.sessions[h]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHandle, "handle %d", h)
	}
	return s, nil
}

// Remove drops the session for h.  Removing an unknown or already removed
// handle is an error.
func (r *Registry) Remove(h Handle) error {
	if _, ok := r.sessions[h]; !ok {
		return errors.Wrapf(ErrInvalidHandle, "handle %d", h)
	}
	delete(r.sessions, h)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
