package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/driftkv/driftkv/common"
	"github.com/driftkv/driftkv/common/benchmark"
	"github.com/driftkv/driftkv/logstore"
	"github.com/driftkv/driftkv/snapshot"
)

func main() {
	quick := flag.Bool("quick", false, "Run quick benchmarks (shorter duration)")
	workload := flag.String("workload", "all", "Workload to run (all, write-heavy-uniform, read-heavy-zipfian, balanced-uniform, write-only-sequential)")
	duration := flag.Duration("duration", 30*time.Second, "Duration for each benchmark")
	concurrency := flag.Int("concurrency", 4, "Number of concurrent workers")
	engine := flag.String("engine", "compare", "Engine to benchmark: logstore, snapshot, or compare")
	batchSize := flag.Int("batch-size", 64, "Logstore records per flush")
	compactEvery := flag.Int("compact-every", 16, "Logstore flushes per compaction")
	flag.Parse()

	fmt.Println("driftkv Benchmark Suite")
	fmt.Println("========================")
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Mode: %s\n\n", *engine)

	var configs []benchmark.Config
	if *quick {
		configs = benchmark.QuickWorkloads()
	} else {
		configs = benchmark.StandardWorkloads()
	}

	if flag.Lookup("duration").Value.String() != flag.Lookup("duration").DefValue {
		for i := range configs {
			configs[i].Duration = *duration
		}
	}
	if flag.Lookup("concurrency").Value.String() != flag.Lookup("concurrency").DefValue {
		for i := range configs {
			configs[i].Concurrency = *concurrency
		}
	}

	if *workload != "all" {
		filtered := make([]benchmark.Config, 0)
		for _, config := range configs {
			if config.Name == *workload {
				filtered = append(filtered, config)
			}
		}
		if len(filtered) == 0 {
			fmt.Printf("Unknown workload: %s\n", *workload)
			os.Exit(1)
		}
		configs = filtered
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	dir, err := os.MkdirTemp("", "driftkv-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	stores := make(map[string]common.Store)

	if *engine == "logstore" || *engine == "compare" {
		cfg := logstore.Config{
			Path:         filepath.Join(dir, "bench.jsonl"),
			BatchSize:    *batchSize,
			CompactEvery: *compactEvery,
			Logger:       logger,
		}
		store, err := logstore.Open(cfg)
		if err != nil {
			fmt.Printf("Failed to open logstore: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		stores["logstore"] = store
	}

	if *engine == "snapshot" || *engine == "compare" {
		store, err := snapshot.Open(snapshot.Config{
			Path:   filepath.Join(dir, "bench.json"),
			Logger: logger,
		})
		if err != nil {
			fmt.Printf("Failed to open snapshot store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		stores["snapshot"] = store
	}

	if len(stores) == 0 {
		fmt.Printf("Unknown engine: %s (must be logstore, snapshot, or compare)\n", *engine)
		os.Exit(1)
	}

	suite := benchmark.NewComparisonSuite()
	suite.SetWorkloads(configs)
	results := suite.RunComparison(stores)
	suite.PrintComparisonTable(results)
}
