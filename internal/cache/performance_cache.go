package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/config"
	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	performanceSummaryKeyPrefix = "performance:summary"
	performanceScanBatchSize    = 100
)

type PerformanceCache interface {
	GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, bool, error)
	SetSummary(ctx context.Context, date string, summary *domain.PerformanceSummary) error
	GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, bool, error)
	SetRecords(ctx context.Context, filter domain.PerformanceFilter, records []domain.UnifiedPerformanceRecord, total int) error
	InvalidateAll(ctx context.Context) error
}

type redisPerformanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPerformanceCache struct{}

func NewPerformanceCache(cfg config.CacheConfig) (PerformanceCache, error) {
	if !cfg.Enabled {
		return &noopPerformanceCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPerformanceCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPerformanceCache() PerformanceCache {
	return &noopPerformanceCache{}
}

func (c *redisPerformanceCache) GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, bool, error) {
	key := fmt.Sprintf("%s:%s", performanceSummaryKeyPrefix, strings.TrimSpace(date))

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.PerformanceSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode performance summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisPerformanceCache) SetSummary(ctx context.Context, date string, summary *domain.PerformanceSummary) error {
	key := fmt.Sprintf("%s:%s", performanceSummaryKeyPrefix, strings.TrimSpace(date))
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode performance summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

type cachedRecordPage struct {
	Records []domain.UnifiedPerformanceRecord `json:"records"`
	Total   int                               `json:"total"`
}

func (c *redisPerformanceCache) GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, bool, error) {
	key := buildRecordsKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get failed: %w", err)
	}

	var page cachedRecordPage
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, 0, false, fmt.Errorf("decode performance records cache: %w", err)
	}

	return page.Records, page.Total, true, nil
}

func (c *redisPerformanceCache) SetRecords(ctx context.Context, filter domain.PerformanceFilter, records []domain.UnifiedPerformanceRecord, total int) error {
	key := buildRecordsKey(filter)
	payload, err := json.Marshal(cachedRecordPage{Records: records, Total: total})
	if err != nil {
		return fmt.Errorf("encode performance records cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPerformanceCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, "performance:", performanceScanBatchSize)
}

func (n *noopPerformanceCache) GetSummary(ctx context.Context, date string) (*domain.PerformanceSummary, bool, error) {
	return nil, false, nil
}

func (n *noopPerformanceCache) SetSummary(ctx context.Context, date string, summary *domain.PerformanceSummary) error {
	return nil
}

func (n *noopPerformanceCache) GetRecords(ctx context.Context, filter domain.PerformanceFilter) ([]domain.UnifiedPerformanceRecord, int, bool, error) {
	return nil, 0, false, nil
}

func (n *noopPerformanceCache) SetRecords(ctx context.Context, filter domain.PerformanceFilter, records []domain.UnifiedPerformanceRecord, total int) error {
	return nil
}

func (n *noopPerformanceCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRecordsKey(filter domain.PerformanceFilter) string {
	return fmt.Sprintf("performance:records:%s", filterHash(filter))
}

func filterHash(filter domain.PerformanceFilter) string {
	parts := []string{}

	if filter.Date != "" {
		parts = append(parts, "date="+strings.TrimSpace(filter.Date))
	}
	if filter.Urgency != "" {
		parts = append(parts, "urgency="+strings.ToUpper(strings.TrimSpace(filter.Urgency)))
	}
	if len(filter.Categories) > 0 {
		parts = append(parts, "categories="+joinStrings(filter.Categories))
	}
	if len(filter.SKUs) > 0 {
		parts = append(parts, "skus="+joinStrings(filter.SKUs))
	}
	if filter.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", filter.Page))
	}
	if filter.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", filter.PageSize))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
