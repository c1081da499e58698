package benchmark

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/driftkv/driftkv/common"
)

// ComparisonSuite runs benchmarks across multiple store engines
type ComparisonSuite struct {
	configs []Config
}

func NewComparisonSuite() *ComparisonSuite {
	return &ComparisonSuite{
		configs: StandardWorkloads(),
	}
}

// SetWorkloads sets custom workload configurations
func (cs *ComparisonSuite) SetWorkloads(configs []Config) {
	cs.configs = configs
}

// StandardWorkloads returns common benchmark scenarios
func StandardWorkloads() []Config {
	return []Config{
		{
			Name:            "write-heavy-uniform",
			WorkloadType:    WorkloadWriteHeavy,
			KeyDistribution: DistUniform,
			NumKeys:         100000,
			ValueSize:       100,
			Duration:        30 * time.Second,
			Concurrency:     4,
			PreloadKeys:     10000,
			Seed:            12345,
		},
		{
			Name:            "read-heavy-zipfian",
			WorkloadType:    WorkloadReadHeavy,
			KeyDistribution: DistZipfian,
			NumKeys:         100000,
			ValueSize:       100,
			Duration:        30 * time.Second,
			Concurrency:     4,
			PreloadKeys:     50000,
			Seed:            12345,
		},
		{
			Name:            "balanced-uniform",
			WorkloadType:    WorkloadBalanced,
			KeyDistribution: DistUniform,
			NumKeys:         100000,
			ValueSize:       100,
			Duration:        30 * time.Second,
			Concurrency:     4,
			PreloadKeys:     10000,
			Seed:            12345,
		},
		{
			Name:            "write-only-sequential",
			WorkloadType:    WorkloadWriteOnly,
			KeyDistribution: DistSequential,
			NumKeys:         100000,
			ValueSize:       1000, // Larger values
			Duration:        15 * time.Second,
			Concurrency:     1,
			PreloadKeys:     0,
			Seed:            12345,
		},
	}
}

// QuickWorkloads returns faster workloads for testing. Sized so the
// logstore crosses its batch threshold and compaction interval many times.
func QuickWorkloads() []Config {
	return []Config{
		{
			Name:            "quick-write-heavy",
			WorkloadType:    WorkloadWriteHeavy,
			KeyDistribution: DistUniform,
			NumKeys:         10000,
			ValueSize:       100,
			Duration:        5 * time.Second,
			Concurrency:     4,
			PreloadKeys:     1000,
			Seed:            12345,
		},
		{
			Name:            "quick-balanced",
			WorkloadType:    WorkloadBalanced,
			KeyDistribution: DistUniform,
			NumKeys:         10000,
			ValueSize:       100,
			Duration:        5 * time.Second,
			Concurrency:     4,
			PreloadKeys:     2000,
			Seed:            12345,
		},
		{
			Name:            "quick-read-heavy",
			WorkloadType:    WorkloadReadHeavy,
			KeyDistribution: DistZipfian, // Realistic: some keys accessed more
			NumKeys:         10000,
			ValueSize:       100,
			Duration:        5 * time.Second,
			Concurrency:     4,
			PreloadKeys:     5000,
			Seed:            12345,
		},
	}
}

// RunComparison runs all workloads against multiple engines
func (cs *ComparisonSuite) RunComparison(stores map[string]common.Store) map[string][]*Result {
	results := make(map[string][]*Result)

	for name, store := range stores {
		fmt.Printf("\n=== Benchmarking %s ===\n", name)
		storeResults := make([]*Result, 0)

		for _, config := range cs.configs {
			fmt.Printf("\nRunning: %s\n", config.Name)

			bench := NewBenchmark(store, config)
			result, err := bench.Run()
			if err != nil {
				fmt.Printf("ERROR: %v\n", err)
				continue
			}

			storeResults = append(storeResults, result)
			cs.printResult(result)
		}

		results[name] = storeResults
	}

	return results
}

func (cs *ComparisonSuite) printResult(r *Result) {
	fmt.Printf("\nResults for: %s\n", r.Config.Name)
	fmt.Printf("  Throughput: %.0f ops/sec\n", r.OpsPerSec)
	fmt.Printf("  Total Ops: %d (writes: %d, reads: %d)\n",
		r.TotalOps, r.WriteOps, r.ReadOps)

	if r.WriteOps > 0 {
		fmt.Printf("  Write Latency (μs):\n")
		fmt.Printf("    p50: %6d\n", r.WriteLatency.P50.Microseconds())
		fmt.Printf("    p95: %6d\n", r.WriteLatency.P95.Microseconds())
		fmt.Printf("    p99: %6d\n", r.WriteLatency.P99.Microseconds())
	}

	if r.ReadOps > 0 {
		fmt.Printf("  Read Latency (μs):\n")
		fmt.Printf("    p50: %6d\n", r.ReadLatency.P50.Microseconds())
		fmt.Printf("    p95: %6d\n", r.ReadLatency.P95.Microseconds())
		fmt.Printf("    p99: %6d\n", r.ReadLatency.P99.Microseconds())
	}

	fmt.Printf("  Flushes: %d, Compactions: %d\n", r.Flushes, r.Compactions)
	fmt.Printf("  Disk Usage: %.1f MB\n", r.DiskMB)
}

// PrintComparisonTable prints a comparison table
func (cs *ComparisonSuite) PrintComparisonTable(results map[string][]*Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "\n=== THROUGHPUT COMPARISON (ops/sec) ===")
	fmt.Fprintf(w, "Workload\t")
	for name := range results {
		fmt.Fprintf(w, "%s\t", name)
	}
	fmt.Fprintln(w)

	for i, config := range cs.configs {
		fmt.Fprintf(w, "%s\t", config.Name)
		for name := range results {
			if i < len(results[name]) {
				fmt.Fprintf(w, "%.0f\t", results[name][i].OpsPerSec)
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	fmt.Fprintln(w, "\n=== WRITE P99 LATENCY COMPARISON (μs) ===")
	fmt.Fprintf(w, "Workload\t")
	for name := range results {
		fmt.Fprintf(w, "%s\t", name)
	}
	fmt.Fprintln(w)

	for i, config := range cs.configs {
		fmt.Fprintf(w, "%s\t", config.Name)
		for name := range results {
			if i < len(results[name]) && results[name][i].WriteOps > 0 {
				fmt.Fprintf(w, "%d\t", results[name][i].WriteLatency.P99.Microseconds())
			} else {
				fmt.Fprintf(w, "N/A\t")
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	fmt.Fprintln(w, "\n=== DISK USAGE COMPARISON (MB) ===")
	fmt.Fprintf(w, "Workload\t")
	for name := range results {
		fmt.Fprintf(w, "%s\t", name)
	}
	fmt.Fprintln(w)

	for i, config := range cs.configs {
		fmt.Fprintf(w, "%s\t", config.Name)
		for name := range results {
			if i < len(results[name]) {
				fmt.Fprintf(w, "%.1f\t", results[name][i].DiskMB)
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
