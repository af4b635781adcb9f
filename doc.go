// Package bestvids scrapes a YouTube channel's upload statistics into a local
// SQLite database and ranks the channel's videos by like ratio.
//
// Overview
//
// The write path resolves a channel, walks its uploads playlist one page at a
// time, fetches each video's statistics and upserts the result:
//
//	client, _ := youtube.NewClient(ctx, httpClient, youtube.ClientConfig{})
//	store, _ := storage.OpenSQLite(ctx, "bestvids.db")
//	pipeline := scrape.NewPipeline(
//		youtube.NewChannelResolver(client, store),
//		func(id string) scrape.Pager { return client.Playlist(id) },
//		youtube.NewVideoEnricher(client, nil),
//		store,
//	)
//	res, err := pipeline.Run(ctx, "majesticcasual")
//
// The read path ranks what was stored, lowest ratio first:
//
//	r, err := ranking.NewEngine(store).Rank(ctx, "Majestic Casual")
//	ranking.Render(os.Stdout, r)
//
// A video's score is max(likes, 1) / (max(likes, 1) + dislikes).
//
// Packages
//
//   - auth: OAuth2 and API key authorized HTTP clients
//   - config: settings from bestvids.json, .env and BESTVIDS_* variables
//   - storage: SQLite record store with goose migrations
//   - youtube: channel resolution, playlist paging and video enrichment
//   - scrape: the ingestion pipeline
//   - ranking: scoring, ordering and rendering
//
// The bestvids command in cli/ exposes scrape, bestof, list and runs.
//
// Error Handling
//
// See errors.go for the sentinel errors and typed errors returned by the
// sub-packages. Nothing is retried: every error aborts the current command.
package bestvids
