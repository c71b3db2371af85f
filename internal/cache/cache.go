package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/serveropenmc/openmc/internal/store"
)

const (
	// DefaultPrefix namespaces every key the cache writes.
	DefaultPrefix = "github_cache_"

	// DefaultTTL is used by Set when no validity window is given.
	DefaultTTL = 30 * time.Minute
)

const (
	reasonExpired = "expired"
	reasonCorrupt = "corrupt"
)

// Entry is the persisted form of a cached value.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresIn int64           `json:"expiresIn"`
}

// Expired reports whether the entry is outside its validity window at now.
// An entry is valid while now - timestamp <= expiresIn.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp > e.ExpiresIn
}

// Store is an expiring cache. It is safe for concurrent use as long as the
// underlying KV is.
type Store struct {
	kv         store.KV
	prefix     string
	defaultTTL time.Duration
	clock      clock.Clock
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithDefaultTTL overrides the validity window used when Set gets zero.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over kv.
func New(kv store.KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		prefix:     DefaultPrefix,
		defaultTTL: DefaultTTL,
		clock:      clock.New(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the name of the underlying KV backend.
func (s *Store) Backend() string {
	return s.kv.Name()
}

// Set stores data under key for expiresIn (DefaultTTL when zero or negative).
// Failures are logged and otherwise ignored.
func (s *Store) Set(ctx context.Context, key string, data any, expiresIn time.Duration) {
	if expiresIn <= 0 {
		expiresIn = s.defaultTTL
	}
	payload, err := json.Marshal(data)
	if err != nil {
		cacheWriteFailures.Inc()
		s.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	raw, err := json.Marshal(Entry{
		Data:      payload,
		Timestamp: s.clock.Now().UnixMilli(),
		ExpiresIn: expiresIn.Milliseconds(),
	})
	if err != nil {
		cacheWriteFailures.Inc()
		s.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.prefix+key, raw); err != nil {
		cacheWriteFailures.Inc()
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// GetRaw returns the JSON payload stored under key if it is still valid.
// Expired or unreadable entries are removed.
func (s *Store) GetRaw(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, ok := s.load(ctx, s.prefix+key)
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return entry.Data, true
}

// Get decodes the payload stored under key into dst. A payload that does
// not decode into dst is treated as corrupt and removed.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	data, ok := s.GetRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("cache entry does not match requested type", "key", key, "error", err)
		s.evict(ctx, s.prefix+key, reasonCorrupt)
		return false
	}
	return true
}

// Has reports whether Get would return a value. It runs the same validation
// and evicts invalid entries.
func (s *Store) Has(ctx context.Context, key string) bool {
	_, ok := s.GetRaw(ctx, key)
	return ok
}

// Remove deletes key. Failures are logged.
func (s *Store) Remove(ctx context.Context, key string) {
	s.delete(ctx, s.prefix+key)
}

// CleanupResult summarizes a Cleanup sweep.
type CleanupResult struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

// Cleanup removes every expired or unreadable entry in the namespace.
func (s *Store) Cleanup(ctx context.Context) CleanupResult {
	var res CleanupResult
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		s.logger.Warn("cache cleanup failed", "error", err)
		return res
	}
	for _, k := range keys {
		res.Scanned++
		if _, ok := s.load(ctx, k); ok {
			res.Kept++
		} else {
			res.Removed++
		}
	}
	s.logger.Debug("cache cleanup done", "scanned", res.Scanned, "removed", res.Removed)
	return res
}

// Clear removes every entry in the namespace.
func (s *Store) Clear(ctx context.Context) {
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		s.logger.Warn("cache clear failed", "error", err)
		return
	}
	for _, k := range keys {
		s.delete(ctx, k)
	}
}

// Stats describes the cache contents.
type Stats struct {
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
	Expired    int    `json:"expired"`
	TotalBytes int64  `json:"totalBytes"`
}

// Stats reports entry counts without evicting anything.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: s.kv.Name()}
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		return stats, err
	}
	now := s.clock.Now()
	for _, k := range keys {
		raw, err := s.kv.Get(ctx, k)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += int64(len(raw))
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil || e.Expired(now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// load reads and validates the entry at the full key, evicting it when it
// is expired or corrupt.
func (s *Store) load(ctx context.Context, fullKey string) (Entry, bool) {
	raw, err := s.kv.Get(ctx, fullKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("cache read failed", "key", fullKey, "error", err)
			s.evict(ctx, fullKey, reasonCorrupt)
		}
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		s.logger.Warn("cache entry corrupt", "key", fullKey, "error", err)
		s.evict(ctx, fullKey, reasonCorrupt)
		return Entry{}, false
	}
	if e.Expired(s.clock.Now()) {
		s.evict(ctx, fullKey, reasonExpired)
		return Entry{}, false
	}
	return e, true
}

func (s *Store) evict(ctx context.Context, fullKey, reason string) {
	cacheEvictions.WithLabelValues(reason).Inc()
	s.delete(ctx, fullKey)
}

func (s *Store) delete(ctx context.Context, fullKey string) {
	if err := s.kv.Delete(ctx, fullKey); err != nil {
		s.logger.Warn("cache remove failed", "key", fullKey, "error", err)
	}
}
