package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"shutter/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				printSectionHeader(out, "Daemon", colorize)
				fmt.Fprintln(out, renderStatusLine("Running", boolKind(resp.Running), fmt.Sprintf("pid %d", resp.PID), colorize))
				fmt.Fprintln(out, renderStatusLine("Queue database", statusInfo, resp.QueueDBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Analytics database", statusInfo, resp.AnalyticsDBPath, colorize))
				workflowKind := statusWarn
				if resp.Workflow.Running {
					workflowKind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine("Workflow", workflowKind, "", colorize))
				if resp.Workflow.LastDrain != "" {
					fmt.Fprintln(out, renderStatusLine("Last drain", statusInfo, resp.Workflow.LastDrain, colorize))
				}
				if resp.Workflow.LastSweep != "" {
					fmt.Fprintln(out, renderStatusLine("Last sweep", statusInfo, resp.Workflow.LastSweep, colorize))
				}

				if len(resp.QueueStats) > 0 {
					printSectionHeader(out, "Queue", colorize)
					states := make([]string, 0, len(resp.QueueStats))
					for state := range resp.QueueStats {
						states = append(states, state)
					}
					sort.Strings(states)
					for _, state := range states {
						fmt.Fprintln(out, renderStatusLine(state, statusInfo, fmt.Sprintf("%d", resp.QueueStats[state]), colorize))
					}
				}

				if len(resp.Dependencies) > 0 {
					printSectionHeader(out, "Capture tools", colorize)
					for _, dep := range resp.Dependencies {
						kind := statusWarn
						message := dep.Detail
						if dep.Available {
							kind = statusOK
							message = dep.Description
						}
						fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
					}
				}
				return nil
			})
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop background processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
				return nil
			})
		},
	}
}
