// Package main provides a performance benchmarking tool for the asmstats CLI.
// It measures lookup times for several query workloads with and without the
// response cache, treating the first cached run as cold and averaging the rest
// as warm, and writes a CSV summary.
//
// Prerequisites:
// - asmstats binary installed and available in PATH
// - Network access to the NCBI Datasets API (or --api-base-url in .asmstats.yaml)
//
// Usage: go run benchmark/main.go [cache-dir]
//
//	cache-dir: Directory used as HOME so the SQLite cache does not touch the real one
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Workload    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// Workload is one query shape to benchmark.
type Workload struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CacheDir    string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Commands    []string
	Workloads   []Workload
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [cache-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CacheDir:    os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Commands:    []string{"table", "busco"},
		Workloads: []Workload{
			{"primates", []string{"GCF_000001405.40", "GCF_028858775.2", "GCF_029281585.2"}},
			{"zebrafish", []string{"--taxon", "Danio rerio"}},
			{"mammals", []string{"--taxon", "Mammalia", "--limit", "200"}},
			{"mixed", []string{"GCF_000001635.27", "--taxon", "Rodentia", "--limit", "50"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the asmstats binary and the cache directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("asmstats"); err != nil {
		return fmt.Errorf("asmstats binary not found in PATH")
	}
	if info, err := os.Stat(config.CacheDir); err != nil || !info.IsDir() {
		return fmt.Errorf("cache directory %s does not exist", config.CacheDir)
	}
	return nil
}

// runBenchmarks executes every command against every workload
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workloads, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Workloads), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, workload := range config.Workloads {
		fmt.Printf("Benchmarking %s\n", workload.Name)
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, workload, command))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, workload Workload, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, workload.Name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, workload, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs from an empty cache
	clearCache(config)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Workload:    workload.Name,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// clearCache empties the SQLite response cache under the benchmark HOME
func clearCache(config BenchmarkConfig) {
	cmd := asmstatsCommand(config, "cache", "clear")
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

func asmstatsCommand(config BenchmarkConfig, args ...string) *exec.Cmd {
	cmd := exec.Command("asmstats", args...)
	cmd.Env = append(os.Environ(), "HOME="+config.CacheDir, "ASMSTATS_COLOR=no")
	return cmd
}

// runBenchmark executes an asmstats command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, workload Workload, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, "--cache-backend", cacheBackend}, workload.Args...)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := asmstatsCommand(config, args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Query completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/asmstats_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"workload", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Workload, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-10s: No-cache: %s, Cold: %s, Warm: %s\n", result.Workload, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
