package sheets

import (
	"context"
	"encoding/json"

	"github.com/2beens/gymplan/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const cacheSize = 8 * 1024 * 1024

// CachedClient keeps full-sheet reads of selected sheets in memory for
// ttlSeconds. Appending to a cached sheet drops its entry.
type CachedClient struct {
	next           Client
	cache          *freecache.Cache
	ttlSeconds     int
	cachedSheets   map[string]bool
	metricsManager *metrics.Manager
}

func NewCachedClient(
	next Client,
	ttlSeconds int,
	metricsManager *metrics.Manager,
	sheetNames ...string,
) *CachedClient {
	cachedSheets := make(map[string]bool, len(sheetNames))
	for _, name := range sheetNames {
		cachedSheets[name] = true
	}
	return &CachedClient{
		next:           next,
		cache:          freecache.NewCache(cacheSize),
		ttlSeconds:     ttlSeconds,
		cachedSheets:   cachedSheets,
		metricsManager: metricsManager,
	}
}

func (c *CachedClient) FetchSheet(ctx context.Context, name string) ([]Record, error) {
	if !c.cachedSheets[name] {
		return c.next.FetchSheet(ctx, name)
	}

	cacheKey := []byte(name)
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var records []Record
		if err := json.Unmarshal(cached, &records); err == nil {
			log.Tracef("sheet %s served from cache", name)
			if c.metricsManager != nil {
				c.metricsManager.CounterCatalogCacheHits.Inc()
			}
			return records, nil
		} else {
			log.Errorf("unmarshal cached sheet %s: %s", name, err)
		}
	}

	records, err := c.next.FetchSheet(ctx, name)
	if err != nil {
		return nil, err
	}

	recordsBytes, err := json.Marshal(records)
	if err != nil {
		log.Errorf("marshal sheet %s for cache: %s", name, err)
		return records, nil
	}
	if err := c.cache.Set(cacheKey, recordsBytes, c.ttlSeconds); err != nil {
		log.Errorf("set cache for sheet %s: %s", name, err)
	}

	return records, nil
}

func (c *CachedClient) AppendRecords(ctx context.Context, name string, records []Record) error {
	err := c.next.AppendRecords(ctx, name, records)
	if c.cachedSheets[name] {
		c.cache.Del([]byte(name))
	}
	return err
}
