package snapshot

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftkv/driftkv/common"
	"github.com/driftkv/driftkv/common/testutil"
)

func openStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		cfg.Logger = logger
	}
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBasicOperations(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})

	require.NoError(t, s.Set("key", "value"))

	var got string
	found, err := s.Get("key", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "value", got)

	existed, err := s.Remove("key")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Remove("key")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestDumpAndReload(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")

	s, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", map[string]string{"nested": "yes"}))
	require.NoError(t, s.Close())

	reopened := openStore(t, Config{Path: path})
	var a int
	found, err := reopened.Get("a", &a)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, a)

	var b map[string]string
	found, err = reopened.Get("b", &b)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "yes", b["nested"])
	assert.Equal(t, []string{"a", "b"}, reopened.Keys())
}

func TestAutoDump(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path, AutoDump: true})

	require.NoError(t, s.Set("k", "v"))
	assert.FileExists(t, path)

	// Every mutation rewrote the file; a fresh open sees the last state.
	require.NoError(t, s.Set("k", "v2"))
	fresh := openStore(t, Config{Path: path})
	var got string
	found, err := fresh.Get("k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", got)
}

func TestUnflushedDataNotOnDisk(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})

	require.NoError(t, s.Set("k", "v"))
	assert.NoFileExists(t, path)

	require.NoError(t, s.Flush())
	assert.FileExists(t, path)
	assert.NoFileExists(t, path+".tmp")
}

func TestPurge(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))
	require.NoError(t, s.Purge())

	assert.Empty(t, s.Keys())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestCorruptFileAbortsOpen(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": bro`), 0644))

	_, err := Open(Config{Path: path})
	require.Error(t, err)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set("k", 1), common.ErrClosed)
	_, err := s.Get("k", nil)
	assert.ErrorIs(t, err, common.ErrClosed)
	assert.ErrorIs(t, s.Purge(), common.ErrClosed)
	assert.NoError(t, s.Close())
}

func TestTTLExpiry(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})

	require.NoError(t, s.SetWithTTL("temp", "v", 10*time.Millisecond))
	assert.True(t, s.Exists("temp"))

	time.Sleep(20 * time.Millisecond)
	found, err := s.Get("temp", nil)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, s.Exists("temp"))
}

func TestKeyValidation(t *testing.T) {
	path := testutil.TempPath(t, "snap.json")
	s := openStore(t, Config{Path: path})

	assert.ErrorIs(t, s.Set("", 1), common.ErrKeyEmpty)

	// An invalid UTF-8 key would be rewritten by the JSON encoder on dump
	// and come back as a different key on reload.
	assert.ErrorIs(t, s.Set("a\xff", 1), common.ErrKeyEncoding)
	assert.Empty(t, s.Keys())
}
