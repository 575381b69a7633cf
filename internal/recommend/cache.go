package recommend

import (
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// CachedEngine wraps an Engine with a TTL cache. Cached values are cloned on
// every read so callers can never mutate what other callers see.
type CachedEngine struct {
	engine    *Engine
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

type matchResult struct {
	recommendations []models.Recommendation
	total           int
}

// NewCachedEngine creates a cached engine with the given entry lifetime
func NewCachedEngine(engine *Engine, ttl time.Duration) *CachedEngine {
	return &CachedEngine{
		engine: engine,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
	}
}

// Recommend returns cached recommendations, computing them on a miss.
// Lookups the cache cannot key are left to the engine to reject.
func (c *CachedEngine) Recommend(team string, marketIDs []string) (models.Recommendations, error) {
	key, err := c.teamKey(team, marketIDs)
	if err != nil {
		return c.engine.Recommend(team, marketIDs)
	}

	if v, found := c.cache.Get(key); found {
		c.record("team", true)
		return cloneRecommendations(v.(models.Recommendations)), nil
	}
	c.record("team", false)

	recs, err := c.engine.Recommend(team, marketIDs)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, cloneRecommendations(recs), c.ttl)
	return recs, nil
}

// RecommendForMatch returns cached match recommendations, computing them on a miss
func (c *CachedEngine) RecommendForMatch(teams []string, limit int) ([]models.Recommendation, int, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	key := "match|" + strconv.Itoa(limit) + "|" + strings.Join(teams, "|")

	if v, found := c.cache.Get(key); found {
		c.record("match", true)
		res := v.(matchResult)
		return slices.Clone(res.recommendations), res.total, nil
	}
	c.record("match", false)

	recs, total, err := c.engine.RecommendForMatch(teams, limit)
	if err != nil {
		return nil, 0, err
	}
	c.cache.Set(key, matchResult{recommendations: slices.Clone(recs), total: total}, c.ttl)
	return recs, total, nil
}

// Stats returns cache statistics
func (c *CachedEngine) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached entries
func (c *CachedEngine) ItemCount() int {
	return c.cache.ItemCount()
}

// Clear flushes the cache and resets statistics
func (c *CachedEngine) Clear() {
	c.cache.Flush()
	c.hitCount.Store(0)
	c.missCount.Store(0)
}

// teamKey normalizes the market set so that ["10+ Runs"] and ["runs_10_plus"]
// share an entry
func (c *CachedEngine) teamKey(team string, marketIDs []string) (string, error) {
	markets, err := ResolveMarkets(c.engine.table.Catalog(), marketIDs)
	if err != nil {
		return "", err
	}

	keys := make([]string, len(markets))
	for i, m := range markets {
		keys[i] = m.Key
	}
	slices.Sort(keys)
	return "team|" + team + "|" + strings.Join(keys, ","), nil
}

// record updates hit statistics. Misses are counted as requests by the
// engine they fall through to.
func (c *CachedEngine) record(kind string, hit bool) {
	if hit {
		c.hitCount.Add(1)
		metrics.RecordRecommendation(kind, true)
	} else {
		c.missCount.Add(1)
	}
	_, _, ratio := c.Stats()
	metrics.UpdateCacheHitRatio(ratio)
}

func cloneRecommendations(in models.Recommendations) models.Recommendations {
	out := make(models.Recommendations, len(in))
	for market, recs := range in {
		out[market] = slices.Clone(recs)
	}
	return out
}
