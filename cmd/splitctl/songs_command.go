package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/royaltysplit/pkg/api"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	songsCmd := &cobra.Command{
		Use:   "songs",
		Short: "Inspect the song catalog",
	}
	songsCmd.AddCommand(newSongsListCommand(ctx))
	songsCmd.AddCommand(newSongsShowCommand(ctx))
	return songsCmd
}

func newSongsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the artist's songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.clients()
			if err != nil {
				return err
			}
			resp, err := c.catalog.ListSongs(cmd.Context(), connect.NewRequest(&api.ListSongsRequest{}))
			if err != nil {
				return fmt.Errorf("list songs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(resp.Msg.Songs) == 0 {
				fmt.Fprintln(out, "No songs")
				return nil
			}
			rows := make([][]string, 0, len(resp.Msg.Songs))
			for _, s := range resp.Msg.Songs {
				rows = append(rows, []string{
					s.ID,
					s.Title,
					s.Status,
					s.SplitPercentage,
					strconv.Itoa(s.NumberOfSplits),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Status", "Split %", "Splits"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newSongsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <song-id>",
		Short: "Show a song's splits, conditional splits, and active split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.clients()
			if err != nil {
				return err
			}
			songID := args[0]
			song, err := c.catalog.GetSong(cmd.Context(), connect.NewRequest(&api.GetSongRequest{SongID: songID}))
			if err != nil {
				return fmt.Errorf("get song: %w", err)
			}
			active, err := c.conditional.GetActiveSplit(cmd.Context(), connect.NewRequest(&api.GetActiveSplitRequest{SongID: songID}))
			if err != nil {
				return fmt.Errorf("get active split: %w", err)
			}

			out := cmd.OutOrStdout()
			s := song.Msg.Song
			fmt.Fprintf(out, "%s (%s)\nStatus: %s  Split: %s  Contributors: %d\n\n",
				s.Title, s.ID, s.Status, s.SplitPercentage, s.NumberOfSplits)

			fmt.Fprintln(out, "Splits")
			fmt.Fprintln(out, splitTable(s.Splits))

			if len(song.Msg.Conditionals) > 0 {
				fmt.Fprintln(out, "\nConditional splits")
				fmt.Fprintln(out, conditionalTable(song.Msg.Conditionals))
			}

			if len(active.Msg.Applied) > 0 {
				fmt.Fprintf(out, "\nActive split (%d conditional applied)\n", len(active.Msg.Applied))
				fmt.Fprintln(out, splitTable(active.Msg.Splits))
			}
			return nil
		},
	}
}

func splitTable(d api.SplitData) string {
	var rows [][]string
	add := func(category string, cs []api.Contributor) {
		for _, c := range cs {
			rows = append(rows, []string{category, c.Name, c.Role, c.ProAffiliation, c.Publisher, strconv.Itoa(c.Percentage) + "%"})
		}
	}
	add("music", d.Music)
	add("lyrics", d.Lyrics)
	add("instrumental", d.Instruments)
	return renderTable(
		[]string{"Category", "Contributor", "Role", "PRO", "Publisher", "Share"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func conditionalTable(conds []*api.ConditionalSplit) string {
	rows := make([][]string, 0, len(conds))
	for _, c := range conds {
		resolved := "-"
		if c.ResolvedAt != 0 {
			resolved = time.Unix(c.ResolvedAt, 0).UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			c.ID,
			c.Category,
			c.ConditionType,
			c.Threshold,
			c.Phase,
			shares(c.PreSplit),
			shares(c.PostSplit),
			resolved,
		})
	}
	return renderTable(
		[]string{"ID", "Category", "Condition", "Threshold", "Phase", "Before", "After", "Resolved"},
		rows,
		nil,
	)
}

// shares renders contributors compactly, e.g. "Artist 20%, Label 80%".
func shares(cs []api.Contributor) string {
	var b []byte
	for i, c := range cs {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = fmt.Appendf(b, "%s %d%%", c.Name, c.Percentage)
	}
	return string(b)
}

func printResolutions(out io.Writer, res []*api.Resolution) {
	if len(res) == 0 {
		fmt.Fprintln(out, "No conditional splits resolved")
		return
	}
	rows := make([][]string, 0, len(res))
	for _, r := range res {
		rows = append(rows, []string{r.ConditionalID, r.SongID, r.ConditionType, time.Unix(r.ResolvedAt, 0).UTC().Format(time.RFC3339)})
	}
	fmt.Fprintln(out, renderTable([]string{"Conditional", "Song", "Condition", "Resolved"}, rows, nil))
}
