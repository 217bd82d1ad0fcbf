package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"github.com/statsig-io/ffi-fixtures/abi"
	"go.uber.org/zap"
)

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load each library and print what its exports return",
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
			for _, cfg := range libs {
				c.logger.Debug("Inspecting library", zap.String("name", cfg.Name), zap.String("path", cfg.Path))

				lib, err := cache.Get(cfg.Path)
				if err != nil {
					return err
				}
				if err := inspect(out, cfg.Name, lib); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func inspect(out io.Writer, name string, lib *ffi_fixtures.Library) error {
	msg, err := lib.Message()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s)\n", name, lib.Path())
	fmt.Fprintf(out, "  %s() = %q\n", abi.SymbolMessage, msg)

	if !lib.ExportsFoo() {
		fmt.Fprintf(out, "  %s not exported\n", abi.SymbolFoo)
		return nil
	}

	ptr, err := lib.FooPointer()
	if err != nil {
		return err
	}
	foo, err := lib.Foo()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s() = %p\n", abi.SymbolFoo, ptr)
	fmt.Fprintf(out, "  %s\n", foo)
	walk(out, reflect.ValueOf(foo), 1)
	return nil
}

// walk prints every field of a struct value, descending into nested
// structs.
func walk(out io.Writer, v reflect.Value, indent int) {
	if v.Kind() != reflect.Struct {
		return
	}

	pad := strings.Repeat("    ", indent)
	t := v.Type()
	fmt.Fprintf(out, "%s%s has %d fields\n", pad, t.Name(), t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			fmt.Fprintf(out, "%s  %s %s offset=%d\n", pad, strings.ToLower(f.Name), f.Type.Name(), f.Offset)
			walk(out, fv, indent+1)
			continue
		}
		fmt.Fprintf(out, "%s  %s %s offset=%d = %v\n", pad, strings.ToLower(f.Name), f.Type, f.Offset, fv.Interface())
	}
}
