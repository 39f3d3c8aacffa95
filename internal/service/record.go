package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/model"
)

var (
	ErrValidation = errors.New("validation error")
)

const DefaultPageSize = 200

type RecordService struct {
	api      backend.API
	pageSize int
	logger   *zap.Logger
}

func NewRecordService(api backend.API, pageSize int, logger *zap.Logger) *RecordService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &RecordService{api: api, pageSize: pageSize, logger: logger}
}

// List загружает первую страницу размером pageSize и считает ее полным набором
func (s *RecordService) List(ctx context.Context, sess model.Session, kind model.Kind) ([]model.Record, error) {
	res, err := s.api.List(ctx, sess.Token, kind, 1, s.pageSize)
	if err != nil {
		return nil, err
	}

	if res.TotalItems > len(res.Items) {
		s.logger.Warn("list truncated to a single page",
			zap.String("kind", string(kind)),
			zap.Int("total", res.TotalItems),
			zap.Int("returned", len(res.Items)),
		)
	}
	return res.Items, nil
}

func (s *RecordService) Create(ctx context.Context, sess model.Session, kind model.Kind, f model.Fields) (model.Record, error) {
	if f.Title == nil {
		return model.Record{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := s.validate(f); err != nil {
		return model.Record{}, err
	}

	// Владелец записи всегда текущий пользователь
	owner := sess.User.ID
	f.User = &owner

	return s.api.Create(ctx, sess.Token, kind, f)
}

func (s *RecordService) Update(ctx context.Context, sess model.Session, kind model.Kind, id string, f model.Fields) (model.Record, error) {
	if strings.TrimSpace(id) == "" {
		return model.Record{}, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := s.validate(f); err != nil {
		return model.Record{}, err
	}

	// Владельца не меняем
	f.User = nil

	return s.api.Update(ctx, sess.Token, kind, id, f)
}

func (s *RecordService) validate(f model.Fields) error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", ErrValidation)
	}
	return nil
}
