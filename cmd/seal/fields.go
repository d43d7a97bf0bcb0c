package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wbrc/fpshamir"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the predefined prime fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBITS\tCAPACITY")
			for _, f := range fpshamir.Fields() {
				name := f.String()
				if f.Equal(fpshamir.DefaultField) {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", name, f.Bits(), f.Capacity())
			}
			return w.Flush()
		},
	}
}
