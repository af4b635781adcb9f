package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and applies pending
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, &StorageError{Op: "open", Entity: "store", Err: ErrInvalidInput}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StorageError{Op: "open", Entity: "store", ID: path, Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Entity: "store", ID: path, Err: err}
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Entity: "store", ID: path, Err: err}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Entity: "store", ID: path, Err: err}
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// migrate brings the schema up to date using the embedded goose migrations.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through zerolog at debug level.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Debug().Str("component", "goose").Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Str("component", "goose").Msgf(format, v...)
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- ChannelStore implementation ---

func (s *SQLiteStore) UpsertChannel(ctx context.Context, channel *Channel) error {
	if channel == nil || channel.ChannelID == "" {
		return &StorageError{Op: "upsert", Entity: "channel", Err: ErrInvalidInput}
	}
	if channel.UpdatedAt.IsZero() {
		channel.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channel (channel_id, title, uploads_playlist_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			title = excluded.title,
			uploads_playlist_id = excluded.uploads_playlist_id,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		channel.ChannelID, channel.Title, channel.UploadsPlaylistID,
		rawText(channel.Raw), formatTime(channel.UpdatedAt),
	)
	if err != nil {
		return &StorageError{Op: "upsert", Entity: "channel", ID: channel.ChannelID, Err: err}
	}
	return nil
}

const channelColumns = `channel_id, title, uploads_playlist_id, data, updated_at`

func (s *SQLiteStore) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channel WHERE channel_id = ?`, channelID)
	channel, err := scanChannel(row)
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "channel", ID: channelID, Err: notFound(err)}
	}
	return channel, nil
}

func (s *SQLiteStore) GetChannelByTitle(ctx context.Context, title string) (*Channel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channel WHERE title = ? ORDER BY rowid LIMIT 1`, title)
	channel, err := scanChannel(row)
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "channel", ID: title, Err: notFound(err)}
	}
	return channel, nil
}

func (s *SQLiteStore) FindChannel(ctx context.Context, key string) (*Channel, error) {
	channel, err := s.GetChannel(ctx, key)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.GetChannelByTitle(ctx, key)
}

func (s *SQLiteStore) ListChannels(ctx context.Context) ([]*Channel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM channel ORDER BY title COLLATE NOCASE, rowid`)
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "channel", Err: err}
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, &StorageError{Op: "list", Entity: "channel", Err: err}
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Entity: "channel", Err: err}
	}
	return channels, nil
}

// --- VideoStore implementation ---

func (s *SQLiteStore) UpsertVideo(ctx context.Context, video *Video) error {
	if video == nil || video.VideoID == "" {
		return &StorageError{Op: "upsert", Entity: "video", Err: ErrInvalidInput}
	}
	if video.LikeCount < 0 || video.DislikeCount < 0 || video.ViewCount < 0 {
		return &StorageError{Op: "upsert", Entity: "video", ID: video.VideoID, Err: ErrInvalidInput}
	}
	if video.UpdatedAt.IsZero() {
		video.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (video_id, channel_fk, title, like_count, dislike_count, view_count, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			channel_fk = excluded.channel_fk,
			title = excluded.title,
			like_count = excluded.like_count,
			dislike_count = excluded.dislike_count,
			view_count = excluded.view_count,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		video.VideoID, video.ChannelID, video.Title,
		video.LikeCount, video.DislikeCount, video.ViewCount,
		rawText(video.Raw), formatTime(video.UpdatedAt),
	)
	if err != nil {
		return &StorageError{Op: "upsert", Entity: "video", ID: video.VideoID, Err: err}
	}
	return nil
}

const videoColumns = `video_id, channel_fk, title, like_count, dislike_count, view_count, data, updated_at`

func (s *SQLiteStore) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE video_id = ?`, videoID)
	video, err := scanVideo(row)
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "video", ID: videoID, Err: notFound(err)}
	}
	return video, nil
}

func (s *SQLiteStore) ListVideos(ctx context.Context, channelID string) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE channel_fk = ? ORDER BY rowid`, channelID)
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "video", ID: channelID, Err: err}
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, &StorageError{Op: "list", Entity: "video", ID: channelID, Err: err}
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Entity: "video", ID: channelID, Err: err}
	}
	return videos, nil
}

// --- RunStore implementation ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *ScrapeRun) error {
	if run == nil || run.RunID == "" {
		return &StorageError{Op: "create", Entity: "run", Err: ErrInvalidInput}
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = RunRunning
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (run_id, query, channel_id, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.Query, run.ChannelID, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return &StorageError{Op: "create", Entity: "run", ID: run.RunID, Err: err}
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *ScrapeRun) error {
	if run == nil || run.RunID == "" {
		return &StorageError{Op: "finish", Entity: "run", Err: ErrInvalidInput}
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs SET
			channel_id = ?, status = ?, videos_processed = ?, pages = ?,
			quota_units = ?, last_error = ?, finished_at = ?
		WHERE run_id = ?`,
		run.ChannelID, string(run.Status), run.VideosProcessed, run.Pages,
		run.QuotaUnits, run.LastError, formatTime(run.FinishedAt), run.RunID,
	)
	if err != nil {
		return &StorageError{Op: "finish", Entity: "run", ID: run.RunID, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StorageError{Op: "finish", Entity: "run", ID: run.RunID, Err: ErrNotFound}
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*ScrapeRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, query, channel_id, status, videos_processed, pages,
		       quota_units, last_error, started_at, finished_at
		FROM scrape_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, &StorageError{Op: "list", Entity: "run", Err: err}
	}
	defer rows.Close()

	var runs []*ScrapeRun
	for rows.Next() {
		var (
			run               ScrapeRun
			status            string
			started, finished string
		)
		if err := rows.Scan(&run.RunID, &run.Query, &run.ChannelID, &status,
			&run.VideosProcessed, &run.Pages, &run.QuotaUnits, &run.LastError,
			&started, &finished); err != nil {
			return nil, &StorageError{Op: "list", Entity: "run", Err: err}
		}
		run.Status = RunStatus(status)
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Entity: "run", Err: err}
	}
	return runs, nil
}

// --- helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanChannel(row scanner) (*Channel, error) {
	var (
		channel Channel
		data    string
		updated string
	)
	if err := row.Scan(&channel.ChannelID, &channel.Title, &channel.UploadsPlaylistID, &data, &updated); err != nil {
		return nil, err
	}
	channel.Raw = rawBytes(data)
	channel.UpdatedAt = parseTime(updated)
	return &channel, nil
}

func scanVideo(row scanner) (*Video, error) {
	var (
		video   Video
		data    string
		updated string
	)
	if err := row.Scan(&video.VideoID, &video.ChannelID, &video.Title,
		&video.LikeCount, &video.DislikeCount, &video.ViewCount, &data, &updated); err != nil {
		return nil, err
	}
	video.Raw = rawBytes(data)
	video.UpdatedAt = parseTime(updated)
	return &video, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func rawText(raw []byte) string {
	return string(raw)
}

func rawBytes(data string) []byte {
	if data == "" {
		return nil
	}
	return []byte(data)
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
