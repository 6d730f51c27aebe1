package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/repository"
	"github.com/yhsong/finbell/pkg/database"
)

const marketCacheTTL = 5 * time.Minute

// CompanyPage is one page of companies plus the total match count.
type CompanyPage struct {
	Items []*domain.Company `json:"items"`
	Total int               `json:"total"`
}

// IndicatorPage is one page of indicators plus the total count.
type IndicatorPage struct {
	Items []*domain.EconomicIndicator `json:"items"`
	Total int                         `json:"total"`
}

// MarketService serves company and indicator browsing with a Redis cache in
// front of the list queries.
type MarketService struct {
	companies  repository.CompanyRepository
	indicators repository.IndicatorRepository
	cache      *database.Redis
	logger     *zap.Logger
}

// NewMarketService creates a new market service
func NewMarketService(
	companies repository.CompanyRepository,
	indicators repository.IndicatorRepository,
	cache *database.Redis,
	logger *zap.Logger,
) *MarketService {
	return &MarketService{
		companies:  companies,
		indicators: indicators,
		cache:      cache,
		logger:     logger,
	}
}

// ListCompanies returns a page of companies, cache-aside on the full page.
func (s *MarketService) ListCompanies(ctx context.Context, search string, limit, offset int) (*CompanyPage, error) {
	key := fmt.Sprintf("companies:%s:%d:%d", search, limit, offset)

	var cached CompanyPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.companies.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &CompanyPage{Items: items, Total: total}
	s.cacheSet(ctx, key, page)
	return page, nil
}

// GetCompany returns one company by id.
func (s *MarketService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ListIndicators returns a page of economic indicators, cache-aside.
func (s *MarketService) ListIndicators(ctx context.Context, limit, offset int) (*IndicatorPage, error) {
	key := fmt.Sprintf("indicators:%d:%d", limit, offset)

	var cached IndicatorPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.indicators.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &IndicatorPage{Items: items, Total: total}
	s.cacheSet(ctx, key, page)
	return page, nil
}

// GetIndicator returns one economic indicator by id.
func (s *MarketService) GetIndicator(ctx context.Context, id string) (*domain.EconomicIndicator, error) {
	indicator, err := s.indicators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return indicator, nil
}

// cacheGet reads a cached page. Cache failures only log; the database remains
// the source of truth.
func (s *MarketService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *MarketService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, marketCacheTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
