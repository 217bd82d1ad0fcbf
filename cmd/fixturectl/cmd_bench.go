package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"go.uber.org/zap"
)

func (c *cli) benchCmd() *cobra.Command {
	var iterations int
	var jsonPath string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time each export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			libs, err := c.libraries()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("iterations") {
				c.cfg.Bench.Iterations = iterations
			}

			cache, err := c.newCache()
			if err != nil {
				return err
			}
			defer cache.Purge()

			var results []ffi_fixtures.BenchmarkResult
			for _, cfg := range libs {
				lib, err := cache.Get(cfg.Path)
				if err != nil {
					return err
				}

				libResults, err := ffi_fixtures.Bench(lib, c.cfg.Bench.Iterations, cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("%s: %w", cfg.Name, err)
				}
				results = append(results, libResults...)
			}

			if jsonPath != "" {
				return writeResults(results, jsonPath, c.logger)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", ffi_fixtures.DefaultBenchIterations, "calls per export")
	cmd.Flags().StringVar(&jsonPath, "json", "", "also write results to this JSON file")
	return cmd
}

func writeResults(results []ffi_fixtures.BenchmarkResult, path string, logger *zap.Logger) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Info("Results written", zap.String("path", path), zap.Int("count", len(results)))
	return nil
}
