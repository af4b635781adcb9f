package main

import (
	"github.com/spf13/cobra"

	"bestvids/ranking"
)

func newBestofCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "bestof <channel>",
		Short: "Best rated videos for a stored channel",
		Long: `List a scraped channel's videos by like ratio, lowest first, so the best
rated videos are printed last. <channel> is a channel ID or title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := ranking.NewEngine(store).Rank(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return ranking.RenderJSON(cmd.OutOrStdout(), r)
			}
			return ranking.Render(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
