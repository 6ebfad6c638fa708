package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Drain queued captures immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Process(limitFlag)
				if err != nil {
					return err
				}
				if resp.Processed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d item(s): %d succeeded, %d failed\n",
					resp.Processed, resp.Succeeded, resp.Failed)
				for _, failure := range resp.Failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "  failed %s: %s\n", failure.PageURL, failure.Reason)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Maximum items to process (0 uses the configured batch size)")
	return cmd
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var daysFlag int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove screenshots older than the retention horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cleanup(daysFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s), pruned %d directorie(s), purged %d queue row(s)\n",
					resp.FilesRemoved, resp.DirsRemoved, resp.RowsPurged)
				if resp.Errors > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %d file(s) could not be removed\n", resp.Errors)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&daysFlag, "days", "d", 0, "Retention horizon in days (0 uses the configured value)")
	return cmd
}
