package repo

import (
	"context"
	"sync"
	"time"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

// MemorySessionRepo is used when neither redis nor postgres is configured.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]model.Session)}
}

func (r *MemorySessionRepo) Save(ctx context.Context, s model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *MemorySessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, ErrorNotFound
	}
	return s, nil
}

func (r *MemorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
