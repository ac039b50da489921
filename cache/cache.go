package cache

import (
	"os"
	"sync"
	"time"

	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/snapshot"
)

// Cache holds the decoded snapshot in memory and reloads it when the file
// on disk changes (modification time or size). It is safe for concurrent
// use.
type Cache struct {
	mu      sync.RWMutex
	path    string
	records []models.CardRecord
	modTime time.Time
	size    int64
	loaded  bool
}

// New creates a Cache for the snapshot at path. Nothing is read until the
// first call to Records.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the snapshot location.
func (c *Cache) Path() string { return c.path }

// Records returns the current snapshot contents. The returned slice is
// shared; callers must not modify it.
func (c *Cache) Records() ([]models.CardRecord, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSnapshotRead, "cannot stat snapshot "+c.path, err)
	}

	c.mu.RLock()
	if c.loaded && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have reloaded while we waited for the lock.
	if c.loaded && info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return c.records, nil
	}

	records, err := snapshot.Load(c.path)
	if err != nil {
		return nil, err
	}
	c.records = records
	c.modTime = info.ModTime()
	c.size = info.Size()
	c.loaded = true
	return records, nil
}
