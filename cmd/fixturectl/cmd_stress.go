package main

import (
	"fmt"

	"github.com/spf13/cobra"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
)

func (c *cli) stressCmd() *cobra.Command {
	var goroutines, calls int

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Call every export concurrently and check results never diverge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			libs, err := c.libraries()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("goroutines") {
				c.cfg.Stress.Goroutines = goroutines
			}
			if cmd.Flags().Changed("calls") {
				c.cfg.Stress.Calls = calls
			}

			cache, err := c.newCache()
			if err != nil {
				return err
			}
			defer cache.Purge()

			out := cmd.OutOrStdout()
			for _, cfg := range libs {
				lib, err := cache.Get(cfg.Path)
				if err != nil {
					return err
				}

				result, err := ffi_fixtures.Stress(cmd.Context(), lib, ffi_fixtures.StressOptions{
					Goroutines: c.cfg.Stress.Goroutines,
					Calls:      c.cfg.Stress.Calls,
					Logger:     c.logger,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", cfg.Name, err)
				}

				fmt.Fprintf(out, "ok   %s run=%s calls=%d duration=%s\n", cfg.Name, result.RunID, result.TotalCalls, result.Duration)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&goroutines, "goroutines", ffi_fixtures.DefaultStressGoroutines, "concurrent callers")
	cmd.Flags().IntVar(&calls, "calls", ffi_fixtures.DefaultStressCalls, "calls per goroutine")
	return cmd
}
