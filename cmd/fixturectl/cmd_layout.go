package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/statsig-io/ffi-fixtures/abi"
)

func (c *cli) layoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the struct Foo layout for this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprint(out, abi.GetLayout().String())
			fmt.Fprintf(out, "payload=%d\n", abi.FooPayload)
			return nil
		},
	}
}
