package repo

import (
	"context"
	"errors"
	"time"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
)

// SessionRepository хранит сессии браузера вместе с токеном бэкенда
type SessionRepository interface {
	Save(ctx context.Context, s model.Session) error
	Get(ctx context.Context, id string) (model.Session, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
