package ffi_fixtures

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/statsig-io/ffi-fixtures/abi"
)

const DefaultBenchIterations = 10000

type BenchmarkResult struct {
	BenchmarkName string  `json:"benchmarkName"`
	P99           float64 `json:"p99"`
	Max           float64 `json:"max"`
	Min           float64 `json:"min"`
	Median        float64 `json:"median"`
	Avg           float64 `json:"avg"`
	Iterations    int     `json:"iterations"`
	LibraryPath   string  `json:"libraryPath"`
}

// Bench times each export of lib. Durations are in milliseconds.
func Bench(lib *Library, iterations int, out io.Writer) ([]BenchmarkResult, error) {
	if iterations <= 0 {
		iterations = DefaultBenchIterations
	}

	var results []BenchmarkResult
	var callErr error

	benchmark(&results, abi.SymbolMessage, lib.Path(), iterations, out, func() {
		if _, err := lib.Message(); err != nil && callErr == nil {
			callErr = err
		}
	})

	if lib.ExportsFoo() {
		benchmark(&results, abi.SymbolFoo, lib.Path(), iterations, out, func() {
			if _, err := lib.Foo(); err != nil && callErr == nil {
				callErr = err
			}
		})
	}

	return results, callErr
}

func benchmark(results *[]BenchmarkResult, benchmarkName, libPath string, iterations int, out io.Writer, fn func()) {
	durations := make([]float64, iterations)

	for i := 0; i < iterations; i++ {
		start := time.Now()
		fn()
		duration := time.Since(start)
		durations[i] = float64(duration.Nanoseconds()) / 1e6
	}

	sort.Float64s(durations)

	result := BenchmarkResult{
		BenchmarkName: benchmarkName,
		LibraryPath:   libPath,
		Iterations:    iterations,
		P99:           durations[len(durations)*99/100],
		Max:           durations[len(durations)-1],
		Min:           durations[0],
		Median:        durations[len(durations)/2],
		Avg:           calculateAverage(durations),
	}

	if out != nil {
		fmt.Fprintf(out, "%-30s p99(ms): %.4f max(ms): %.4f %s\n", benchmarkName, result.P99, result.Max, libPath)
	}

	*results = append(*results, result)
}

func calculateAverage(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
