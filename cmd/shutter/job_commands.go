package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newJobStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "job JOB_ID",
		Short: "Show the derived state of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobStatus(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %s: %s (%d items)\n", resp.JobID, resp.State, resp.Total)
				if resp.Total == 0 {
					return nil
				}
				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					detail := item.ScreenshotPath
					if item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", item.ID),
						item.PageURL,
						item.Viewport,
						item.Status,
						detail,
					})
				}
				table := renderTable(
					[]string{"ID", "URL", "Viewport", "Status", "Result"},
					rows,
					0,
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel all pending items of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel(args[0])
				if err != nil {
					return err
				}
				if resp.Cancelled == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending items to cancel")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d item(s)\n", resp.Cancelled)
				return nil
			})
		},
	}
}
