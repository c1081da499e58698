package logstore

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftkv/driftkv/common"
	"github.com/driftkv/driftkv/common/testutil"
)

func readRecords(t *testing.T, l *appendLog) []Record {
	t.Helper()
	var records []Record
	err := l.readAll(func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	return records
}

func TestAppendLogBatchRoundTrip(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))

	batch := []Record{
		putRecord("a", json.RawMessage(`1`)),
		putRecord("b", json.RawMessage(`2`)),
		tombstone("a"),
	}
	require.NoError(t, l.appendBatch(batch))

	records := readRecords(t, l)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "b", records[1].Key)
	assert.True(t, records[2].Tombstone)
	assert.Equal(t, "a", records[2].Key)
}

func TestAppendLogMultipleBatchesPreserveOrder(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))

	require.NoError(t, l.appendBatch([]Record{putRecord("k", json.RawMessage(`1`))}))
	require.NoError(t, l.appendBatch([]Record{putRecord("k", json.RawMessage(`2`))}))

	records := readRecords(t, l)
	require.Len(t, records, 2)
	assert.JSONEq(t, `1`, string(records[0].Value))
	assert.JSONEq(t, `2`, string(records[1].Value))
}

func TestAppendLogEmptyBatchIsNoop(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))

	require.NoError(t, l.appendBatch(nil))
	assert.NoFileExists(t, l.path)
}

func TestAppendLogReadAllMissingFile(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "missing.jsonl"))
	assert.Empty(t, readRecords(t, l))
}

func TestAppendLogReadAllCorruptLine(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))
	require.NoError(t, l.appendBatch([]Record{putRecord("a", json.RawMessage(`1`))}))

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var seen []Record
	err = l.readAll(func(rec Record) error {
		seen = append(seen, rec)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCorruptRecord)
	// Records before the bad line were still delivered.
	require.Len(t, seen, 1)
	assert.Equal(t, "a", seen[0].Key)
}

func TestAppendLogReplaceWith(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))
	require.NoError(t, l.appendBatch([]Record{
		putRecord("a", json.RawMessage(`1`)),
		tombstone("a"),
		putRecord("b", json.RawMessage(`2`)),
	}))

	require.NoError(t, l.replaceWith([]Record{putRecord("b", json.RawMessage(`2`))}))

	records := readRecords(t, l)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].Key)
	assert.NoFileExists(t, l.path+".tmp")
}

func TestAppendLogReplaceWithEmpty(t *testing.T) {
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))
	require.NoError(t, l.appendBatch([]Record{putRecord("a", json.RawMessage(`1`))}))

	require.NoError(t, l.replaceWith(nil))

	assert.Empty(t, readRecords(t, l))
	assert.Zero(t, l.size())
}

func TestAppendLogStaleTempFileIgnored(t *testing.T) {
	// A crash after the temp file was written but before the rename must
	// leave the original log authoritative.
	l := newAppendLog(testutil.TempPath(t, "store.jsonl"))
	require.NoError(t, l.appendBatch([]Record{
		putRecord("a", json.RawMessage(`1`)),
		putRecord("b", json.RawMessage(`2`)),
	}))

	require.NoError(t, os.WriteFile(l.path+".tmp", []byte(`{"a":999}`+"\n"), 0644))

	records := readRecords(t, l)
	require.Len(t, records, 2)
	assert.JSONEq(t, `1`, string(records[0].Value))
	assert.JSONEq(t, `2`, string(records[1].Value))
}
