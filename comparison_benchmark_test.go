package driftkv_test

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/driftkv/driftkv/common"
	"github.com/driftkv/driftkv/logstore"
	"github.com/driftkv/driftkv/snapshot"
)

const (
	smallDataset  = 1000
	mediumDataset = 10000
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func openLogstore(b *testing.B) common.Store {
	b.Helper()
	cfg := logstore.DefaultConfig(filepath.Join(b.TempDir(), "bench.jsonl"))
	cfg.Logger = quietLogger()
	store, err := logstore.Open(cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { store.Close() })
	return store
}

func openSnapshot(b *testing.B) common.Store {
	b.Helper()
	store, err := snapshot.Open(snapshot.Config{
		Path:   filepath.Join(b.TempDir(), "bench.json"),
		Logger: quietLogger(),
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { store.Close() })
	return store
}

var engines = []struct {
	name string
	open func(b *testing.B) common.Store
}{
	{"Logstore", openLogstore},
	{"Snapshot", openSnapshot},
}

// BenchmarkWritePerformance compares write throughput across both engines.
func BenchmarkWritePerformance(b *testing.B) {
	datasets := []struct {
		name string
		size int
	}{
		{"Small_1K", smallDataset},
		{"Medium_10K", mediumDataset},
	}

	for _, engine := range engines {
		for _, ds := range datasets {
			b.Run(fmt.Sprintf("%s_%s", engine.name, ds.name), func(b *testing.B) {
				store := engine.open(b)
				value := randomValue(100)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					key := fmt.Sprintf("key%010d", i%ds.size)
					if err := store.Set(key, value); err != nil {
						b.Fatal(err)
					}
				}
				b.StopTimer()
				if err := store.Flush(); err != nil {
					b.Fatal(err)
				}
			})
		}
	}
}

// BenchmarkReadPerformance compares reads with pre-populated data.
func BenchmarkReadPerformance(b *testing.B) {
	for _, engine := range engines {
		b.Run(fmt.Sprintf("%s_Medium_10K", engine.name), func(b *testing.B) {
			store := engine.open(b)
			value := randomValue(100)
			for i := 0; i < mediumDataset; i++ {
				if err := store.Set(fmt.Sprintf("key%010d", i), value); err != nil {
					b.Fatal(err)
				}
			}
			if err := store.Flush(); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := fmt.Sprintf("key%010d", i%mediumDataset)
				if _, err := store.Get(key, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkMixedWorkload tests realistic read/write mixes.
func BenchmarkMixedWorkload(b *testing.B) {
	workloads := []struct {
		name      string
		readRatio float64
	}{
		{"Read_Heavy_90_10", 0.9},
		{"Balanced_50_50", 0.5},
		{"Write_Heavy_10_90", 0.1},
	}

	for _, engine := range engines {
		for _, wl := range workloads {
			b.Run(fmt.Sprintf("%s_%s", engine.name, wl.name), func(b *testing.B) {
				store := engine.open(b)
				value := randomValue(100)
				for i := 0; i < smallDataset; i++ {
					if err := store.Set(fmt.Sprintf("key%010d", i), value); err != nil {
						b.Fatal(err)
					}
				}
				rng := rand.New(rand.NewSource(12345))

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					key := fmt.Sprintf("key%010d", rng.Intn(smallDataset))
					if rng.Float64() < wl.readRatio {
						if _, err := store.Get(key, nil); err != nil {
							b.Fatal(err)
						}
					} else {
						if err := store.Set(key, value); err != nil {
							b.Fatal(err)
						}
					}
				}
			})
		}
	}
}

func randomValue(size int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	rng := rand.New(rand.NewSource(42))
	out := make([]byte, size)
	for i := range out {
		out[i] = letters[rng.Intn(len(letters))]
	}
	return string(out)
}
