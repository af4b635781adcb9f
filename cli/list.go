package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type channelJSON struct {
	ChannelID         string `json:"channel_id"`
	Title             string `json:"title"`
	UploadsPlaylistID string `json:"uploads_playlist_id,omitempty"`
	URL               string `json:"url"`
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the channels already in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			channels, err := store.ListChannels(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				items := make([]channelJSON, 0, len(channels))
				for _, c := range channels {
					items = append(items, channelJSON{
						ChannelID:         c.ChannelID,
						Title:             c.Title,
						UploadsPlaylistID: c.UploadsPlaylistID,
						URL:               c.URL(),
					})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			for _, c := range channels {
				fmt.Fprintf(out, "%s - %s\n", c.ChannelID, c.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
