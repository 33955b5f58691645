package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/craftmerge/go-regform/internal/site"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes served by regform-web",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rt := range site.Routes() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Method, rt.Pattern, rt.Name)
			}
			return tw.Flush()
		},
	}
}
