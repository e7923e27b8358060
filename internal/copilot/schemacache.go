package copilot

import (
	"context"
	"sync"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const schemaCacheTTL = 5 * time.Minute

// schemaCache memoizes the rendered schema text of a source. Concurrent
// misses for the same source share a single fetch via singleflight.
type schemaCache struct {
	mu        sync.RWMutex
	text      string
	expiresAt time.Time
	sf        singleflight.Group
}

func (c *schemaCache) get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.text == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.text, true
}

func (c *schemaCache) set(text string) {
	c.mu.Lock()
	c.text = text
	c.expiresAt = time.Now().Add(schemaCacheTTL)
	c.mu.Unlock()
}

// load returns the cached schema text, fetching from src on a miss.
func (c *schemaCache) load(ctx context.Context, src datasource.Source) (string, error) {
	if text, ok := c.get(); ok {
		return text, nil
	}

	v, err, _ := c.sf.Do(src.Name(), func() (interface{}, error) {
		// Double-check inside singleflight in case another goroutine
		// populated the cache while we waited to enter.
		if text, ok := c.get(); ok {
			return text, nil
		}

		start := time.Now()
		text, err := src.Schema(ctx)
		if err != nil {
			return "", err
		}
		c.set(text)
		log.Debug().
			Str("source", src.Name()).
			Dur("fetch_ms", time.Since(start)).
			Msg("schema cached")
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *schemaCache) invalidate() {
	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
}
