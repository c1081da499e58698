package logstore

import (
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
)

// compactLocked replays the whole log into a canonical mapping and rewrites
// it as exactly one Put per live key, discarding tombstones and superseded
// values, then re-anchors the read cache to the replayed state. It runs
// while the facade mutex is held so no writer can interleave with the
// replay.
//
// Compaction is best-effort housekeeping: any failure leaves the original
// log untouched and is reported through the logger and metrics only. A
// corrupt record aborts the cycle rather than being skipped, so compaction
// can never silently drop data that a full replay would see.
func (s *Store) compactLocked() {
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
		compactionFailures.Inc()
		s.logger.WithError(err).Warn("compaction skipped: log replay failed")
		return
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		records = append(records, putRecord(key, state[key]))
	}

	if err := s.log.replaceWith(records); err != nil {
		compactionFailures.Inc()
		s.logger.WithError(err).Warn("compaction skipped: log rewrite failed")
		return
	}

	s.cache.replaceAll(state)
	s.compactCount++
	compactionsTotal.Inc()

	s.logger.WithFields(logrus.Fields{
		"path":      s.cfg.Path,
		"live_keys": len(records),
	}).Debug("log compacted")
}
