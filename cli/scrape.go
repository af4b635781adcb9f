package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bestvids/scrape"
	"bestvids/storage"
	"bestvids/youtube"
)

func newScrapeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <username>",
		Short: "Scrape a channel's videos and ratings",
		Long: `Resolve <username> as a legacy YouTube username, falling back to a channel ID,
then fetch statistics for every video in the channel's uploads playlist and
store them. Re-running a scrape overwrites previously stored counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lock, err := storage.LockWriter(a.cfg.DBPath, time.Duration(a.cfg.LockTimeout))
			if err != nil {
				return err
			}
			defer lock.Unlock()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := a.youtubeClient(ctx)
			if err != nil {
				return err
			}

			pipeline := scrape.NewPipeline(
				youtube.NewChannelResolver(client, store),
				func(playlistID string) scrape.Pager { return client.Playlist(playlistID) },
				youtube.NewVideoEnricher(client, a.cfg.VideoParts),
				store,
			)
			pipeline.Quota = client.Quota()

			out := cmd.OutOrStdout()
			pipeline.OnVideo = func(v *storage.Video) {
				fmt.Fprintf(out, "%s (%s) %s, %s\n", v.Title, v.VideoID, humanize.Comma(v.LikeCount), humanize.Comma(v.DislikeCount))
			}

			res, err := pipeline.Run(ctx, args[0])
			if err != nil {
				return err
			}

			log.Debug().Str("run_id", res.RunID).Msg("scrape command finished")
			fmt.Fprintf(out, "\nStored %s videos from %s (%s) in %d pages\n",
				humanize.Comma(int64(res.Videos)), res.Channel.Title, res.Channel.ChannelID, res.Pages)
			return nil
		},
	}
}
