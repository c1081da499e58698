// Package logstore implements a persistent JSON key-value store backed by
// an append-only mutation log. Writes are batched in memory and flushed to
// the log as contiguous record batches; reads are served from an in-memory
// cache that stays consistent with every accepted write. After a configured
// number of flushes the log is compacted back to one record per live key.
package logstore

import (
	"encoding/json"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/driftkv/driftkv/common"
)

type Config struct {
	Path string

	// BatchSize is the number of buffered records that triggers a flush.
	BatchSize int

	// CompactEvery is the number of flushes between compactions.
	// Zero disables automatic compaction.
	CompactEvery int

	Logger logrus.FieldLogger
}

func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		BatchSize:    64,
		CompactEvery: 16,
	}
}

var _ common.Store = (*Store)(nil)

// Store coordinates the write buffer, read cache, append log and compactor
// under a single mutex. One Store instance must own its log file exclusively.
type Store struct {
	mu  sync.Mutex
	cfg Config

	log   *appendLog
	buf   *writeBuffer
	cache *readCache

	// ttl holds in-memory expiry deadlines; not persisted, so deadlines
	// do not survive a restart.
	ttl map[string]time.Time

	flushesSinceCompact int
	flushCount          int64
	compactCount        int64

	logger logrus.FieldLogger
	closed bool
}

// Open creates or reopens the store at cfg.Path, replaying the existing log
// into the read cache. A record that fails to decode aborts the open; the
// file is never modified by a failed replay.
func Open(cfg Config) (*Store, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig(cfg.Path).BatchSize
	}
	if cfg.CompactEvery < 0 {
		cfg.CompactEvery = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Store{
		cfg:    cfg,
		log:    newAppendLog(cfg.Path),
		buf:    newWriteBuffer(cfg.BatchSize),
		cache:  newReadCache(),
		ttl:    make(map[string]time.Time),
		logger: logger,
	}

	state := make(map[string]json.RawMessage)
	err := s.log.readAll(func(rec Record) error {
		if rec.Tombstone {
			delete(state, rec.Key)
			return nil
		}
		state[rec.Key] = rec.Value
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "replay log")
	}
	s.cache.replaceAll(state)

	logger.WithFields(logrus.Fields{
		"path": cfg.Path,
		"keys": s.cache.len(),
	}).Debug("log replayed")

	return s, nil
}

// Set associates value with key. The write is buffered; it becomes durable
// on the next flush, which Set itself triggers once BatchSize records are
// pending. The read cache reflects the write immediately.
func (s *Store) Set(key string, value any) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL is Set with an in-memory expiry: after ttl elapses the key
// reads as absent and is lazily removed. A ttl of zero means no expiry.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode value for key %q", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}

	s.buf.push(putRecord(key, raw))
	s.cache.put(key, raw)
	if ttl > 0 {
		s.ttl[key] = time.Now().Add(ttl)
	} else {
		delete(s.ttl, key)
	}

	if s.buf.len() >= s.cfg.BatchSize {
		return s.flushLocked()
	}
	return nil
}

// Get reads the current value for key into out. out may be nil to only
// test presence. Get is served entirely from the read cache.
func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, common.ErrClosed
	}
	if s.expireLocked(key) {
		return false, nil
	}

	raw, ok := s.cache.get(key)
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, errors.Wrapf(err, "decode value for key %q", key)
	}
	return true, nil
}

// GetRaw returns the stored JSON encoding of the value for key. The result
// is a copy; mutating it does not affect the cached value.
func (s *Store) GetRaw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.expireLocked(key) {
		return nil, false
	}

	raw, ok := s.cache.get(key)
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true
}

// Exists reports whether key is currently live.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.expireLocked(key) {
		return false
	}
	_, ok := s.cache.get(key)
	return ok
}

// Remove deletes a key. A tombstone is buffered even when the key is
// absent, matching the log-replay semantics of Set. The bool reports
// whether the key existed in the cache at call time.
func (s *Store) Remove(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, common.ErrClosed
	}

	existed := s.cache.remove(key)
	delete(s.ttl, key)
	s.buf.push(tombstone(key))

	if s.buf.len() >= s.cfg.BatchSize {
		return existed, s.flushLocked()
	}
	return existed, nil
}

// Keys returns all live keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.cache.keys()
}

// Purge drops every key: the log is atomically replaced with an empty file,
// then the write buffer and read cache are cleared. A failed replace leaves
// both the file and the in-memory state untouched.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}

	if err := s.log.replaceWith(nil); err != nil {
		return err
	}

	s.buf.drain()
	s.cache.replaceAll(nil)
	s.ttl = make(map[string]time.Time)
	s.flushesSinceCompact = 0
	return nil
}

// Flush force-drains the write buffer regardless of the batch threshold.
// On failure the buffer retains its records and the caller may retry.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}
	return s.flushLocked()
}

// Compact flushes pending writes and immediately runs a compaction cycle.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}
	if err := s.flushLocked(); err != nil {
		return err
	}
	s.compactLocked()
	return nil
}

// Close flushes pending writes and marks the store closed. Safe to defer
// right after Open so every exit path ends with a flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	err := s.flushLocked()
	s.closed = true
	return err
}

// Stats returns engine statistics.
func (s *Store) Stats() common.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return common.Stats{
		NumKeys:      int64(s.cache.len()),
		Buffered:     s.buf.len(),
		DiskBytes:    s.log.size(),
		FlushCount:   s.flushCount,
		CompactCount: s.compactCount,
	}
}

// flushLocked drains the buffer into one contiguous log append. The
// operation counter counts flushes, not drained records; reaching
// CompactEvery triggers a compaction cycle and resets the counter.
func (s *Store) flushLocked() error {
	if s.buf.len() == 0 {
		return nil
	}

	records := s.buf.drain()
	if err := s.log.appendBatch(records); err != nil {
		s.buf.restore(records)
		flushFailures.Inc()
		return err
	}

	s.flushCount++
	flushesTotal.Inc()
	recordsAppended.Add(float64(len(records)))

	if s.cfg.CompactEvery > 0 {
		s.flushesSinceCompact++
		if s.flushesSinceCompact >= s.cfg.CompactEvery {
			s.flushesSinceCompact = 0
			s.compactLocked()
		}
	}
	return nil
}

// expireLocked lazily removes key if its deadline has passed. The removal
// goes through the write buffer like any other deletion so the log stays
// the sole source of truth, and it honors the batch threshold so a
// read-only workload cannot grow the buffer without bound. A failed flush
// here leaves the tombstones buffered for the next attempt.
func (s *Store) expireLocked(key string) bool {
	deadline, ok := s.ttl[key]
	if !ok || time.Now().Before(deadline) {
		return false
	}

	delete(s.ttl, key)
	s.cache.remove(key)
	s.buf.push(tombstone(key))
	if s.buf.len() >= s.cfg.BatchSize {
		_ = s.flushLocked()
	}
	return true
}

func validateKey(key string) error {
	if key == "" {
		return common.ErrKeyEmpty
	}
	if key == TombstoneMarker {
		return common.ErrReservedKey
	}
	// json.Marshal replaces invalid byte sequences with U+FFFD, so a key
	// that is not valid UTF-8 would come back from replay as a different
	// key. Reject it before it reaches the buffer.
	if !utf8.ValidString(key) {
		return common.ErrKeyEncoding
	}
	return nil
}
