package main

import (
	"fmt"

	"github.com/spf13/cobra"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func (c *cli) verifyCmd() *cobra.Command {
	var calls int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check each library against the fixture contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			libs, err := c.libraries()
			if err != nil {
				return err
			}

			cache, err := c.newCache()
			if err != nil {
				return err
			}
			defer cache.Purge()

			out := cmd.OutOrStdout()
			failed := 0
			for _, cfg := range libs {
				lib, err := cache.Get(cfg.Path)
				if err == nil {
					err = ffi_fixtures.Verify(lib, ffi_fixtures.Expectation{ExportsFoo: cfg.ExportsFoo, Calls: calls})
				}

				if err != nil {
					failed++
					c.logger.Error("Verification failed", zap.String("name", cfg.Name), zap.Error(err))
					fmt.Fprintf(out, "FAIL %s\n", cfg.Name)
					for _, e := range multierr.Errors(err) {
						fmt.Fprintf(out, "  %v\n", e)
					}
					continue
				}

				c.logger.Info("Verification passed", zap.String("name", cfg.Name))
				fmt.Fprintf(out, "ok   %s\n", cfg.Name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d libraries failed verification", failed, len(libs))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&calls, "calls", 3, "calls per export")
	return cmd
}
