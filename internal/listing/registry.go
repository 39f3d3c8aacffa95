package listing

import (
	"sync"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

type key struct {
	session string
	kind    model.Kind
}

// Registry keeps one Controller per (session, kind).
type Registry struct {
	mu          sync.Mutex
	controllers map[key]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[key]*Controller)}
}

func (r *Registry) For(sessionID string, kind model.Kind) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{sessionID, kind}
	c, ok := r.controllers[k]
	if !ok {
		c = NewController(kind)
		r.controllers[k] = c
	}
	return c
}

// Forget drops every controller of a session, e.g. on logout.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.controllers {
		if k.session == sessionID {
			delete(r.controllers, k)
		}
	}
}

// Sessions returns the ids of sessions that have at least one controller.
func (r *Registry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	ids := make([]string, 0, len(r.controllers))
	for k := range r.controllers {
		if !seen[k.session] {
			seen[k.session] = true
			ids = append(ids, k.session)
		}
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}
