// Command fixturectl builds, loads and checks the FFI fixture libraries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"github.com/statsig-io/ffi-fixtures/internal/config"
	"github.com/statsig-io/ffi-fixtures/internal/logging"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand.
type cli struct {
	// Global flags
	configPath string
	verbose    bool
	libPath    string
	expectFoo  bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "fixturectl",
		Short: "Build and check the FFI fixture libraries",
		Long: `fixturectl works with the fixture shared libraries that export
get_library_message and, for the struct fixture, get_foo.

Libraries come from the libraries section of the --config file plus
FIXTURE_LIB_PATH, added under the name "env". FIXTURE_EXPECT_FOO=true marks
that library as exporting get_foo. --lib replaces all of them with a single
library named "cli"; pair it with --expect-foo for the struct fixture.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.libPath != "" {
				cfg.Libraries = []config.LibraryConfig{{Name: "cli", Path: c.libPath, ExportsFoo: c.expectFoo}}
			}
			c.cfg = cfg

			c.logger, err = logging.New(cfg.Logging, c.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.libPath, "lib", "", "check only this library")
	flags.BoolVar(&c.expectFoo, "expect-foo", false, "the --lib library must export get_foo")

	rootCmd.AddCommand(
		c.layoutCmd(),
		c.buildCmd(),
		c.inspectCmd(),
		c.verifyCmd(),
		c.stressCmd(),
		c.benchCmd(),
	)

	return rootCmd
}

// libraries returns the configured libraries, or an error when there are
// none to work on.
func (c *cli) libraries() ([]config.LibraryConfig, error) {
	if len(c.cfg.Libraries) == 0 {
		return nil, fmt.Errorf("no libraries configured: pass --lib, set %s or use --config", config.EnvLibPath)
	}
	return c.cfg.Libraries, nil
}

func (c *cli) newCache() (*ffi_fixtures.Cache, error) {
	size := len(c.cfg.Libraries)
	if size == 0 {
		size = 1
	}
	return ffi_fixtures.NewCache(size, c.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
