package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the capture queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueList(listStatuses)
				if err != nil {
					return err
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.JobID,
						item.PageURL,
						item.Viewport,
						item.Status,
						item.CreatedAt,
					})
				}
				table := renderTable(
					[]string{"ID", "Job", "URL", "Viewport", "Status", "Created"},
					rows,
					0,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove items from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				var removed int64
				switch {
				case completedOnly:
					resp, err := client.QueueClearCompleted()
					if err != nil {
						return err
					}
					removed = resp.Removed
				case failedOnly:
					resp, err := client.QueueClearFailed()
					if err != nil {
						return err
					}
					removed = resp.Removed
				default:
					resp, err := client.QueueClear()
					if err != nil {
						return err
					}
					removed = resp.Removed
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Remove only failed items")
	cmd.MarkFlagsMutuallyExclusive("completed", "failed")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a single queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid queue item id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueRemove(id)
				if err != nil {
					return err
				}
				if !resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d not found\n", id)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", id)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue and database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				health, err := client.QueueHealth()
				if err != nil {
					return err
				}
				dbHealth, err := client.DatabaseHealth()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				printSectionHeader(out, "Queue", colorize)
				rows := [][]string{
					{"queued", strconv.Itoa(health.Queued)},
					{"processing", strconv.Itoa(health.Processing)},
					{"completed", strconv.Itoa(health.Completed)},
					{"failed", strconv.Itoa(health.Failed)},
					{"cancelled", strconv.Itoa(health.Cancelled)},
					{"total", strconv.Itoa(health.Total)},
				}
				fmt.Fprintln(out, renderCountTable("Status", "Count", rows))

				printSectionHeader(out, "Database", colorize)
				fmt.Fprintln(out, renderStatusLine("File exists", boolKind(dbHealth.DatabaseExists), dbHealth.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Readable", boolKind(dbHealth.DatabaseReadable), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Schema present", boolKind(dbHealth.TableExists), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Integrity", boolKind(dbHealth.IntegrityCheck), "", colorize))
				if dbHealth.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, dbHealth.Error, colorize))
				}
				return nil
			})
		},
	}
}
