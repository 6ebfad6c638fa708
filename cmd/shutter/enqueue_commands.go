package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var viewportFlag string

	cmd := &cobra.Command{
		Use:   "enqueue URL",
		Short: "Queue a screenshot capture for a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(args[0], viewportFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s (%s) as job %s\n",
					resp.Item.PageURL, resp.Item.Viewport, resp.Item.JobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&viewportFlag, "viewport", "v", "", "Viewport name (defaults to desktop)")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var viewportFlag string

	cmd := &cobra.Command{
		Use:   "batch URL [URL...]",
		Short: "Queue several pages under one job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]ipc.BatchEntry, 0, len(args))
			for _, url := range args {
				entries = append(entries, ipc.BatchEntry{PageURL: url, Viewport: viewportFlag})
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EnqueueBatch(entries)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %d of %d pages as job %s\n",
					resp.Queued, resp.Total, resp.JobID)
				for _, failure := range resp.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  rejected %s: %s\n", failure.PageURL, failure.Reason)
				}
				if resp.Queued == 0 {
					return errors.New("no pages were queued")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&viewportFlag, "viewport", "v", "", "Viewport name applied to every page")
	return cmd
}
