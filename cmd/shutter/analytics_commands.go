package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shutter/internal/ipc"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Inspect page-view analytics",
	}

	analyticsCmd.AddCommand(newAnalyticsTrackCommand(ctx))
	analyticsCmd.AddCommand(newAnalyticsTopCommand(ctx))
	analyticsCmd.AddCommand(newAnalyticsStatsCommand(ctx))

	return analyticsCmd
}

func newAnalyticsTrackCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "track URL",
		Short: "Record one view of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.TrackView(args[0], typeFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tracked view of %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "page", "Page type (page, post, archive, ...)")
	return cmd
}

func newAnalyticsTopCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var daysFlag int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most viewed pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TopPages(limitFlag, daysFlag)
				if err != nil {
					return err
				}
				if len(resp.Pages) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No page views recorded")
					return nil
				}
				titler := cases.Title(language.Und)
				rows := make([][]string, 0, len(resp.Pages))
				for _, page := range resp.Pages {
					rows = append(rows, []string{
						page.PageURL,
						strconv.Itoa(page.ViewCount),
						titler.String(page.PageType),
						page.LastViewed,
					})
				}
				table := renderTable(
					[]string{"URL", "Views", "Type", "Last Viewed"},
					rows,
					1,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 10, "Maximum pages to list")
	cmd.Flags().IntVarP(&daysFlag, "days", "d", 0, "Only count pages viewed in the last N days")
	return cmd
}

func newAnalyticsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate page-view counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AnalyticsStats()
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Tracked pages", strconv.Itoa(resp.TotalPages)},
					{"Total views", strconv.Itoa(resp.TotalViews)},
					{"Views today", strconv.Itoa(resp.TodayViews)},
					{"Views this week", strconv.Itoa(resp.WeekViews)},
				}
				table := renderCountTable("Metric", "Value", rows)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}
