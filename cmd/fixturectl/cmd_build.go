package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/statsig-io/ffi-fixtures/internal/build"
	"go.uber.org/zap"
)

func (c *cli) buildCmd() *cobra.Command {
	opts := build.Options{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a fixture shared library with -buildmode=c-shared",
		Long: `Builds a fixture package into a shared library named for the
target platform, e.g.

  fixturectl build --pkg ./cmd/foolib --name foo --out ./dist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.logger.Info("Building fixture",
				zap.String("package", opts.Package),
				zap.String("name", opts.Name),
				zap.String("out", opts.OutDir))

			path, err := build.SharedLibrary(cmd.Context(), opts)
			if err != nil {
				return err
			}

			c.logger.Info("Fixture built", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Package, "pkg", "./cmd/foolib", "fixture package to build")
	cmd.Flags().StringVar(&opts.Name, "name", "foo", "library base name")
	cmd.Flags().StringVar(&opts.OutDir, "out", "dist", "output directory")

	return cmd
}
