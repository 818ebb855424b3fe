package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/okian/punchclock/internal/domain/period"
	"github.com/okian/punchclock/pkg/metrics"
)

const defaultCacheTTL = 5 * time.Minute

// Key identifies a rendered report. Snapshot version changes on every
// refresh, so cached documents never outlive the data they show.
type Key struct {
	Version uuid.UUID
	Period  period.Period
	Month   string
	Users   []string
}

func (k Key) String() string {
	return k.Version.String() + "|" + k.Period.String() + "|" + k.Month + "|" + strings.Join(k.Users, ",")
}

// Cache keeps rendered documents for a short time.
type Cache struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewCache creates a cache whose entries expire after ttl and starts its
// expiry loop. Call Stop to release it.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go c.Start()
	return &Cache{cache: c}
}

// Get returns the cached document for k.
func (c *Cache) Get(k Key) ([]byte, bool) {
	item := c.cache.Get(k.String())
	if item == nil {
		metrics.RecordReportCache(false)
		return nil, false
	}
	metrics.RecordReportCache(true)
	return item.Value(), true
}

// Set stores a document under k.
func (c *Cache) Set(k Key, doc []byte) {
	c.cache.Set(k.String(), doc, ttlcache.DefaultTTL)
}

// Len returns the number of cached documents.
func (c *Cache) Len() int { return c.cache.Len() }

// Stop ends the expiry loop.
func (c *Cache) Stop() { c.cache.Stop() }
