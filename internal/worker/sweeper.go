package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/metrics"
	"github.com/BuzzLyutic/planner-web/internal/repo"
)

// SessionIndex is per-session state kept outside the repository, e.g. list views.
type SessionIndex interface {
	Sessions() []string
	Forget(sessionID string)
}

// Sweeper periodically deletes expired sessions. Expiry is also detected lazily
// on the next guarded request; the sweeper only keeps the store from growing.
// Sessions removed without a logout (sweep, redis TTL) are also dropped from the
// watched indexes.
type Sweeper struct {
	repo     repo.SessionRepository
	indexes  []SessionIndex
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewSweeper(sessions repo.SessionRepository, logger *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     sessions,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Watch registers an index to prune on every tick. Call before Start.
func (s *Sweeper) Watch(idx SessionIndex) {
	s.indexes = append(s.indexes, idx)
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting session sweeper", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	s.logger.Info("Stopping session sweeper...")
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.logger.Info("Session sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.sweep(ctx); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
			s.prune(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.SessionsSwept.Add(float64(n))
		s.logger.Info("Expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}

// prune drops index entries whose session is gone or expired.
func (s *Sweeper) prune(ctx context.Context) int {
	now := s.now()
	pruned := 0
	for _, idx := range s.indexes {
		for _, id := range idx.Sessions() {
			sess, err := s.repo.Get(ctx, id)
			switch {
			case errors.Is(err, repo.ErrorNotFound):
			case err != nil:
				s.logger.Warn("session lookup failed during prune", zap.Error(err))
				continue
			case !sess.Expired(now):
				continue
			}
			idx.Forget(id)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Info("Stale session state dropped", zap.Int("count", pruned))
	}
	return pruned
}
