package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

const categoryCacheKey = "grievance:categories"

// CategoryService serves static reference data through a read-through redis
// cache. A cache miss or an unreachable redis falls back to the database.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      *redis.Client
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCategoryService builds the service. cache may be nil.
func NewCategoryService(categories repository.CategoryRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, categoryCacheKey).Bytes(); err == nil {
			var cached []domain.Category
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cache != nil && s.ttl > 0 {
		if data, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(ctx, categoryCacheKey, data, s.ttl).Err(); err != nil {
				s.logger.Warn("category cache write failed", zap.Error(err))
			}
		}
	}
	return categories, nil
}
