package cache

import (
	"context"
	"sync"
	"time"

	"weather-bot/datasource"
	"weather-bot/models"

	"go.uber.org/zap"
)

// CachedForecastSource wraps a ForecastSource and adds caching functionality
type CachedForecastSource struct {
	source         datasource.ForecastSource
	cache          map[string]forecastCacheEntry // key is the city's coordinates
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	logger         *zap.SugaredLogger
	now            func() time.Time
}

// forecastCacheEntry represents a cached forecast with its timestamp
type forecastCacheEntry struct {
	Data      models.ForecastData
	Timestamp time.Time
}

// NewCachedForecastSource creates a new cached wrapper around a forecast source
func NewCachedForecastSource(source datasource.ForecastSource, cacheDuration time.Duration, logger *zap.SugaredLogger) *CachedForecastSource {
	return &CachedForecastSource{
		source:        source,
		cache:         make(map[string]forecastCacheEntry),
		cacheDuration: cacheDuration,
		logger:        logger,
		now:           time.Now,
	}
}

// Name returns the name of the underlying forecast source with [Cached] suffix
func (c *CachedForecastSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// FetchForecast fetches forecast data, using cache when available.
// Errors are never cached.
func (c *CachedForecastSource) FetchForecast(ctx context.Context, city models.City) (models.ForecastData, error) {
	key := city.Key()

	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if found {
		age := c.now().Sub(entry.Timestamp)
		if age < c.cacheDuration {
			c.mutex.Lock()
			c.cacheHitCount++
			c.mutex.Unlock()

			c.logger.Debugw("forecast cache hit", "city", city.Name, "source", c.source.Name(), "age", age.Round(time.Second))
			return entry.Data, nil
		}
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	c.logger.Debugw("forecast cache miss", "city", city.Name, "source", c.source.Name())

	forecast, err := c.source.FetchForecast(ctx, city)
	if err != nil {
		return models.ForecastData{}, err
	}

	c.mutex.Lock()
	c.cache[key] = forecastCacheEntry{
		Data:      forecast,
		Timestamp: c.now(),
	}
	c.mutex.Unlock()

	return forecast, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedForecastSource) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedForecastSource implements ForecastSource
var _ datasource.ForecastSource = (*CachedForecastSource)(nil)
