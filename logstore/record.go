package logstore

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/driftkv/driftkv/common"
)

// TombstoneMarker is the reserved field name that tags a deletion record
// on disk. Set and Remove reject it as a user key so a tombstone can never
// be confused with a live mutation.
const TombstoneMarker = "__remove__"

// Record is one immutable logged mutation: either a value for a key, or a
// tombstone marking the key deleted as of this point in the log.
type Record struct {
	Key       string
	Value     json.RawMessage // nil for a tombstone
	Tombstone bool
}

func putRecord(key string, value json.RawMessage) Record {
	return Record{Key: key, Value: value}
}

func tombstone(key string) Record {
	return Record{Key: key, Tombstone: true}
}

// encode renders the record as one self-delimited JSON line:
// {"<key>": <value>} for a mutation, {"__remove__": "<key>"} for a deletion.
func (r Record) encode() ([]byte, error) {
	var obj map[string]json.RawMessage
	if r.Tombstone {
		key, err := json.Marshal(r.Key)
		if err != nil {
			return nil, errors.Wrap(err, "encode tombstone key")
		}
		obj = map[string]json.RawMessage{TombstoneMarker: key}
	} else {
		obj = map[string]json.RawMessage{r.Key: r.Value}
	}

	line, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "encode record for key %q", r.Key)
	}
	return append(line, '\n'), nil
}

// decodeRecord is the exact inverse of encode. Malformed input is reported
// as common.ErrCorruptRecord; the caller decides whether to abort or skip.
func decodeRecord(line []byte) (Record, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(line, &obj); err != nil {
		return Record{}, errors.Wrapf(common.ErrCorruptRecord, "invalid JSON: %v", err)
	}
	if len(obj) != 1 {
		return Record{}, errors.Wrapf(common.ErrCorruptRecord, "expected a single field, got %d", len(obj))
	}

	for field, raw := range obj {
		if field == TombstoneMarker {
			var key string
			if err := json.Unmarshal(raw, &key); err != nil {
				return Record{}, errors.Wrapf(common.ErrCorruptRecord, "tombstone key is not a string: %v", err)
			}
			return tombstone(key), nil
		}
		return putRecord(field, raw), nil
	}

	// Unreachable: the single-field check above guarantees one iteration.
	return Record{}, errors.Wrap(common.ErrCorruptRecord, "empty record")
}
