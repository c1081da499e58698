// Package snapshot implements the whole-file variant of the store: the
// entire key space is loaded into memory on open and rewritten as a single
// JSON document on every dump. Simple and compact, but each dump is O(data).
// For an append-friendly engine see package logstore.
package snapshot

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/driftkv/driftkv/common"
)

type Config struct {
	Path string

	// AutoDump rewrites the file after every mutation. When false, data
	// reaches disk only on Flush or Close.
	AutoDump bool

	Logger logrus.FieldLogger
}

var _ common.Store = (*Store)(nil)

// Store is a whole-file JSON key-value store with atomic replace-on-save.
type Store struct {
	mu  sync.Mutex
	cfg Config

	db  map[string]json.RawMessage
	ttl map[string]time.Time

	flushCount int64

	logger logrus.FieldLogger
	closed bool
}

// Open loads the JSON document at cfg.Path, or starts empty if the file is
// missing or zero-length. A file that fails to parse aborts the open.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Store{
		cfg:    cfg,
		db:     make(map[string]json.RawMessage),
		ttl:    make(map[string]time.Time),
		logger: logger,
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "read database file")
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.db); err != nil {
		return nil, errors.Wrap(err, "load database file")
	}

	logger.WithField("keys", len(s.db)).Debug("database loaded")
	return s, nil
}

func (s *Store) Set(key string, value any) error {
	return s.SetWithTTL(key, value, 0)
}

func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) error {
	if key == "" {
		return common.ErrKeyEmpty
	}
	if !utf8.ValidString(key) {
		return common.ErrKeyEncoding
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

	s.db[key] = raw
	if ttl > 0 {
		s.ttl[key] = time.Now().Add(ttl)
	} else {
		delete(s.ttl, key)
	}

	if s.cfg.AutoDump {
		return s.dumpLocked()
	}
	return nil
}

func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, common.ErrClosed
	}
	if s.expireLocked(key) {
		return false, nil
	}

	raw, ok := s.db[key]
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

// Exists reports whether key is currently live.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.expireLocked(key) {
		return false
	}
	_, ok := s.db[key]
	return ok
}

func (s *Store) Remove(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, common.ErrClosed
	}

	_, existed := s.db[key]
	delete(s.db, key)
	delete(s.ttl, key)

	if existed && s.cfg.AutoDump {
		return existed, s.dumpLocked()
	}
	return existed, nil
}

func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	keys := make([]string, 0, len(s.db))
	for key := range s.db {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}

	s.db = make(map[string]json.RawMessage)
	s.ttl = make(map[string]time.Time)
	return s.dumpLocked()
}

// Flush rewrites the backing file from the in-memory state.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrClosed
	}
	return s.dumpLocked()
}

// Close dumps the current state and marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	err := s.dumpLocked()
	s.closed = true
	return err
}

func (s *Store) Stats() common.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var size int64
	if info, err := os.Stat(s.cfg.Path); err == nil {
		size = info.Size()
	}

	return common.Stats{
		NumKeys:    int64(len(s.db)),
		DiskBytes:  size,
		FlushCount: s.flushCount,
	}
}

// dumpLocked writes the whole mapping to a sibling temp file, syncs it and
// renames it over the destination, so a reader never observes a half-written
// document.
func (s *Store) dumpLocked() error {
	data, err := json.Marshal(s.db)
	if err != nil {
		return errors.Wrap(err, "encode database")
	}

	tmp := s.cfg.Path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open temp file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "write temp file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "sync temp file")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp, s.cfg.Path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "replace database file")
	}

	s.flushCount++
	return nil
}

// expireLocked drops key if its in-memory deadline has passed.
func (s *Store) expireLocked(key string) bool {
	deadline, ok := s.ttl[key]
	if !ok || time.Now().Before(deadline) {
		return false
	}
	delete(s.ttl, key)
	delete(s.db, key)
	return true
}
