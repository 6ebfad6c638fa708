package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newCapabilitiesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show capture tool availability and viewports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Capabilities()
				if err != nil {
					return err
				}

				names := make([]string, 0, len(resp.Tools))
				for name := range resp.Tools {
					names = append(names, name)
				}
				sort.Strings(names)

				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, yesNo(resp.Tools[name])})
				}
				table := renderTable([]string{"Tool", "Available"}, rows)

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, table)
				fmt.Fprintf(out, "Capture capable: %s\n", yesNo(resp.Capable))
				fmt.Fprintf(out, "Viewports:       %s\n", strings.Join(resp.Viewports, ", "))
				fmt.Fprintf(out, "Queue usage:     %d of %d\n", resp.CurrentQueueSize, resp.MaxQueueSize)
				return nil
			})
		},
	}
}
