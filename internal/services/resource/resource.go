// Package resource реализует общую логику CRUD для сущностей каталога
// (товары, журналы, публикации, отзывы) поверх репозитория и кэша.
package resource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
)

// cacheTTL время жизни закэшированной сущности.
const cacheTTL = 5 * time.Minute

// Repo описывает контракт репозитория сущности.
type Repo[T any] interface {
	Create(ctx context.Context, item *T) (string, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, item *T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ListFilter) ([]*T, int, error)
}

// Cache описывает контракт кэша сущностей.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует CRUD с кэшем чтения по идентификатору.
// Списки не кэшируются: комбинаций фильтров слишком много.
type Service[T any] struct {
	repo  Repo[T]
	cache Cache
	kind  string
	log   *slog.Logger
}

// New создает сервис ресурса. kind используется как префикс ключей кэша.
func New[T any](repo Repo[T], cache Cache, kind string, log *slog.Logger) *Service[T] {
	return &Service[T]{
		repo:  repo,
		cache: cache,
		kind:  kind,
		log:   log,
	}
}

// Create сохраняет новую сущность и возвращает её идентификатор.
func (s *Service[T]) Create(ctx context.Context, item *T) (string, error) {
	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return "", err
	}
	s.log.Info("resource created", slog.String("kind", s.kind), slog.String("id", id))
	return id, nil
}

// Get возвращает сущность по идентификатору, сначала заглядывая в кэш.
// Ошибки кэша не фатальны, запрос уходит в репозиторий.
func (s *Service[T]) Get(ctx context.Context, id string) (*T, error) {
	key := s.cacheKey(id)

	var cached T
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
	}
	if found && err == nil {
		return &cached, nil
	}

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, item, cacheTTL); err != nil {
		s.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
	return item, nil
}

// Update перезаписывает сущность и сбрасывает её кэш.
func (s *Service[T]) Update(ctx context.Context, id string, item *T) error {
	if err := s.repo.Update(ctx, id, item); err != nil {
		return err
	}
	s.invalidate(id)
	s.log.Info("resource updated", slog.String("kind", s.kind), slog.String("id", id))
	return nil
}

// Delete удаляет сущность и сбрасывает её кэш.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	s.log.Info("resource deleted", slog.String("kind", s.kind), slog.String("id", id))
	return nil
}

// List возвращает страницу сущностей и общее количество по фильтру.
func (s *Service[T]) List(ctx context.Context, filter models.ListFilter) ([]*T, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service[T]) invalidate(id string) {
	key := s.cacheKey(id)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("cache invalidation failed", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service[T]) cacheKey(id string) string {
	return fmt.Sprintf("%s:%s", s.kind, id)
}
