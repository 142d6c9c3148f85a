// Package cache stores compiled component output on disk so unchanged
// sources skip recompilation across builds and dev-server reloads.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a content-addressed store for generated JavaScript artifacts.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
}

// Index tracks all cached entries.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry represents one cached artifact.
type Entry struct {
	Key        string    `json:"key"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Source     string    `json:"source,omitempty"`
	Created    time.Time `json:"created"`
	LastAccess time.Time `json:"last_access"`
}

// Stats tracks cache performance for a single process.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	TotalSize  int64
	EntryCount int
}

// Config holds cache configuration.
type Config struct {
	Dir     string        // cache directory (default: $HOME/.cache/pulse)
	MaxSize int64         // maximum cache size in bytes (default: 256 MB)
	MaxAge  time.Duration // maximum entry age (default: 7 days)
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:     filepath.Join(homeDir, ".cache", "pulse"),
		MaxSize: 256 << 20,
		MaxAge:  7 * 24 * time.Hour,
	}
}

// New opens a cache at the configured directory, creating it as needed.
// Expired entries are pruned on open.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config = DefaultConfig()
	}

	if err := os.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		index: &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		},
	}

	if err := c.loadIndex(); err != nil {
		// missing or corrupted index: start fresh
		c.index = &Index{
			Version: "1",
			Entries: make(map[string]*Entry),
			Updated: time.Now(),
		}
	}

	c.pruneExpired()

	return c, nil
}

// Key derives a cache key from the given inputs.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached artifact.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, exists := c.index.Entries[key]
	c.mu.RUnlock()

	if !exists || c.expired(entry) {
		if exists {
			c.Delete(key)
		}
		c.miss()
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.Delete(key)
		c.miss()
		return nil, false
	}

	c.mu.Lock()
	entry.LastAccess = time.Now()
	c.stats.Hits++
	c.mu.Unlock()

	return data, true
}

// Put stores an artifact under key. The source path is recorded so the
// entry can be invalidated when that file changes.
func (c *Cache) Put(key string, data []byte, source string) error {
	size := int64(len(data))
	if err := c.ensureSpace(size); err != nil {
		return err
	}

	path := filepath.Join(c.dir, "artifacts", sanitizeKey(key))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	entry := &Entry{
		Key:        key,
		Path:       path,
		Size:       size,
		Source:     source,
		Created:    time.Now(),
		LastAccess: time.Now(),
	}

	c.mu.Lock()
	if old, ok := c.index.Entries[key]; ok {
		if old.Path != path {
			removeFile(old.Path)
		}
		c.stats.TotalSize -= old.Size
	}
	c.index.Entries[key] = entry
	c.index.Updated = time.Now()
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)
	c.mu.Unlock()

	return c.saveIndex()
}

// Delete removes an entry from the cache.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return nil
	}

	removeFile(entry.Path)
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = time.Now()

	return c.saveIndexLocked()
}

// InvalidateSource removes every entry recorded against the given source
// file and returns how many were dropped.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.index.Entries {
		if entry.Source == source {
			removeFile(entry.Path)
			delete(c.index.Entries, key)
			c.stats.TotalSize -= entry.Size
			count++
		}
	}

	if count > 0 {
		c.stats.EntryCount = len(c.index.Entries)
		c.index.Updated = time.Now()
		c.saveIndexLocked()
	}
	return count
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "artifacts")); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "artifacts"), 0755); err != nil {
		return err
	}

	c.index = &Index{
		Version: "1",
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
	c.stats = Stats{}

	return c.saveIndexLocked()
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Close persists the index.
func (c *Cache) Close() error {
	return c.saveIndex()
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}
	c.index = &index

	var totalSize int64
	for _, entry := range c.index.Entries {
		totalSize += entry.Size
	}
	c.stats.TotalSize = totalSize
	c.stats.EntryCount = len(c.index.Entries)

	return nil
}

func (c *Cache) saveIndex() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveIndexLocked()
}

// saveIndexLocked writes the index; the caller must hold at least a read lock.
func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) expired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

func (c *Cache) pruneExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := false
	for key, entry := range c.index.Entries {
		if c.expired(entry) {
			removeFile(entry.Path)
			delete(c.index.Entries, key)
			c.stats.TotalSize -= entry.Size
			pruned = true
		}
	}
	if pruned {
		c.stats.EntryCount = len(c.index.Entries)
		c.index.Updated = time.Now()
		c.saveIndexLocked()
	}
}

// ensureSpace evicts least-recently-used entries until the new artifact fits.
func (c *Cache) ensureSpace(needed int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return nil
	}

	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var evictKey string
		var evictEntry *Entry
		for key, entry := range c.index.Entries {
			if evictEntry == nil || entry.LastAccess.Before(evictEntry.LastAccess) {
				evictKey = key
				evictEntry = entry
			}
		}
		if evictEntry == nil {
			break
		}

		removeFile(evictEntry.Path)
		delete(c.index.Entries, evictKey)
		c.stats.TotalSize -= evictEntry.Size
		c.stats.Evictions++
	}

	c.stats.EntryCount = len(c.index.Entries)
	return nil
}

func (c *Cache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove cache file %s: %v\n", path, err)
	}
}

func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	sanitized := replacer.Replace(key)
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	return sanitized
}
