// internal/openings/service.go
package openings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"careers-backend/internal/common/database"
	apperrors "careers-backend/internal/common/errors"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/models"
)

const (
	cacheKeyAll    = "openings:all"
	cacheKeyPrefix = "openings:id:"
)

// Service fronts the openings store with an optional read-through cache.
// Cache misses and cache errors both fall back to the database; a broken
// cache never breaks reads.
type Service struct {
	store  *Store
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewService builds the service. cache may be nil to run uncached.
func NewService(store *Store, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{store: store, cache: cache, ttl: ttl, logger: log}
}

func (s *Service) List(ctx context.Context) ([]models.JobOpening, error) {
	if cached, ok := s.fromCache(ctx, cacheKeyAll); ok {
		var out []models.JobOpening
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}

	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.toCache(ctx, cacheKeyAll, out)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.JobOpening, error) {
	key := fmt.Sprintf("%s%d", cacheKeyPrefix, id)
	if cached, ok := s.fromCache(ctx, key); ok {
		var out models.JobOpening
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
	}

	opening, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.JobOpening{}, apperrors.NewOpeningNotFound(id)
		}
		return models.JobOpening{}, apperrors.NewInternalError(err)
	}
	s.toCache(ctx, key, opening)
	return opening, nil
}

func (s *Service) Create(ctx context.Context, opening models.JobOpening) (models.JobOpening, error) {
	if err := validateOpening(opening); err != nil {
		return models.JobOpening{}, err
	}
	created, err := s.store.Create(ctx, opening)
	if err != nil {
		return models.JobOpening{}, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx, created.ID)
	s.logger.Info("opening created", map[string]interface{}{"id": created.ID, "titre": created.Title})
	return created, nil
}

func (s *Service) Update(ctx context.Context, opening models.JobOpening) (models.JobOpening, error) {
	if err := validateOpening(opening); err != nil {
		return models.JobOpening{}, err
	}
	updated, err := s.store.Update(ctx, opening)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.JobOpening{}, apperrors.NewOpeningNotFound(opening.ID)
		}
		return models.JobOpening{}, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx, updated.ID)
	return updated, nil
}

// Delete removes an opening and reports how many applications it detached.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	detached, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NewOpeningNotFound(id)
		}
		return 0, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx, id)
	s.logger.Info("opening deleted", map[string]interface{}{"id": id, "detached": detached})
	return detached, nil
}

func validateOpening(o models.JobOpening) error {
	if o.Title == "" || o.Description == "" || o.Location == "" || o.ExpiresAt.IsZero() {
		return apperrors.NewValidationError("titre, description, localisation et date_expiration sont obligatoires")
	}
	return nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Warn("openings cache read failed", map[string]interface{}{"key": key})
		}
		return nil, false
	}
	return []byte(val), true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.WithError(err).Warn("openings cache write failed", map[string]interface{}{"key": key})
	}
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	keys := []string{cacheKeyAll, fmt.Sprintf("%s%d", cacheKeyPrefix, id)}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("openings cache invalidation failed", map[string]interface{}{"id": id})
	}
}
