package main

import (
	"fmt"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/royaltysplit/pkg/api"
)

func newRevenueCommand(ctx *commandContext) *cobra.Command {
	revenueCmd := &cobra.Command{
		Use:   "revenue",
		Short: "Feed revenue to recoupment thresholds",
	}
	revenueCmd.AddCommand(&cobra.Command{
		Use:   "report <song-id> <amount>",
		Short: "Report a song's cumulative revenue, e.g. 1250.50",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.clients()
			if err != nil {
				return err
			}
			resp, err := c.conditional.ReportRevenue(cmd.Context(), connect.NewRequest(&api.ReportRevenueRequest{
				Reports: []api.RevenueReport{{SongID: args[0], Amount: args[1]}},
			}))
			if err != nil {
				return fmt.Errorf("report revenue: %w", err)
			}
			printResolutions(cmd.OutOrStdout(), resp.Msg.Resolved)
			return nil
		},
	})
	return revenueCmd
}
