package service

import (
	"context"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/cache"
	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/repository"
	"github.com/rs/zerolog/log"
)

type PerformanceService struct {
	repo  repository.PerformanceRepository
	cache cache.PerformanceCache
}

func NewPerformanceService(repo repository.PerformanceRepository, cacheImpl cache.PerformanceCache) *PerformanceService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPerformanceCache()
	}
	return &PerformanceService{repo: repo, cache: cacheImpl}
}

// GetRecords returns one page of unified records in priority order.
// An empty filter date means all dates; callers usually pin it to the
// latest available date first.
func (s *PerformanceService) GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, error) {
	if records, total, ok, err := s.cache.GetRecords(ctx, filter); err == nil && ok {
		return records, total, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("performance: cache get records failed")
	}

	records, total, err := s.repo.GetRecords(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.SetRecords(ctx, filter, records, total); err != nil {
		log.Warn().Err(err).Msg("performance: cache set records failed")
	}

	return records, total, nil
}

func (s *PerformanceService) GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, date); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("performance: cache get summary failed")
	}

	summary, err := s.repo.GetSummary(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, date, summary); err != nil {
		log.Warn().Err(err).Msg("performance: cache set summary failed")
	}

	return summary, nil
}

func (s *PerformanceService) GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	return s.repo.GetAvailableDates(ctx, limit)
}

// DeleteDate pulls one output partition and drops every cached read built
// on top of it.
func (s *PerformanceService) DeleteDate(ctx context.Context, date string) (int64, error) {
	deleted, err := s.repo.DeleteDate(ctx, date)
	if err != nil {
		return 0, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("performance: cache invalidation failed after delete")
	}

	return deleted, nil
}
