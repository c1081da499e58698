package logstore

import (
	"encoding/json"
	"sort"
)

// readCache mirrors the combined buffer-over-log state so Get never has to
// touch the log file. Purely in-memory; mutated only under the facade mutex.
type readCache struct {
	entries map[string]json.RawMessage
}

func newReadCache() *readCache {
	return &readCache{entries: make(map[string]json.RawMessage)}
}

func (c *readCache) get(key string) (json.RawMessage, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *readCache) put(key string, value json.RawMessage) {
	c.entries[key] = value
}

func (c *readCache) remove(key string) bool {
	_, existed := c.entries[key]
	delete(c.entries, key)
	return existed
}

func (c *readCache) len() int {
	return len(c.entries)
}

func (c *readCache) keys() []string {
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// replaceAll re-anchors the cache to a freshly replayed canonical state.
// Used after compaction and purge.
func (c *readCache) replaceAll(state map[string]json.RawMessage) {
	if state == nil {
		state = make(map[string]json.RawMessage)
	}
	c.entries = state
}
