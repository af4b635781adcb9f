package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testVideo(id, channelID string, likes, dislikes int64) *Video {
	return &Video{
		VideoID:      id,
		ChannelID:    channelID,
		Title:        "video " + id,
		LikeCount:    likes,
		DislikeCount: dislikes,
		ViewCount:    likes * 10,
		Raw:          json.RawMessage(`{"id":"` + id + `"}`),
		UpdatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestOpenSQLite_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bestvids.db")

	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("OpenSQLite(\"\") error = %v, want ErrInvalidInput", err)
	}
}

func TestOpenSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := store.UpsertChannel(ctx, &Channel{ChannelID: "UC1", Title: "First"}); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}
	store.Close()

	store2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer store2.Close()

	got, err := store2.GetChannel(ctx, "UC1")
	if err != nil {
		t.Fatalf("GetChannel() error = %v", err)
	}
	if got.Title != "First" {
		t.Errorf("Title = %q, want %q", got.Title, "First")
	}
}

func TestSQLiteStore_UpsertChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	channel := &Channel{
		ChannelID:         "UC123",
		Title:             "Majestic Casual",
		UploadsPlaylistID: "UU123",
		Raw:               json.RawMessage(`{"id":"UC123"}`),
	}
	if err := store.UpsertChannel(ctx, channel); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}
	if channel.UpdatedAt.IsZero() {
		t.Error("UpsertChannel() did not stamp UpdatedAt")
	}

	// Overwrite every field.
	updated := &Channel{
		ChannelID:         "UC123",
		Title:             "Renamed",
		UploadsPlaylistID: "UU999",
		Raw:               json.RawMessage(`{"id":"UC123","v":2}`),
		UpdatedAt:         time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := store.UpsertChannel(ctx, updated); err != nil {
		t.Fatalf("UpsertChannel() overwrite error = %v", err)
	}

	got, err := store.GetChannel(ctx, "UC123")
	if err != nil {
		t.Fatalf("GetChannel() error = %v", err)
	}
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Errorf("GetChannel() mismatch (-want +got):\n%s", diff)
	}

	channels, err := store.ListChannels(ctx)
	if err != nil {
		t.Fatalf("ListChannels() error = %v", err)
	}
	if len(channels) != 1 {
		t.Errorf("ListChannels() returned %d channels, want 1", len(channels))
	}
}

func TestSQLiteStore_UpsertChannel_InvalidInput(t *testing.T) {
	store := newTestStore(t)

	err := store.UpsertChannel(context.Background(), &Channel{Title: "no id"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpsertChannel() error = %v, want ErrInvalidInput", err)
	}
}

func TestSQLiteStore_FindChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertChannel(ctx, &Channel{ChannelID: "UCabc", Title: "Some Title"}); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		wantID  string
		wantErr error
	}{
		{"by id", "UCabc", "UCabc", nil},
		{"by title", "Some Title", "UCabc", nil},
		{"missing", "nothing", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindChannel(ctx, tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindChannel(%q) error = %v, want %v", tt.key, err, tt.wantErr)
				}
				var storErr *StorageError
				if !errors.As(err, &storErr) {
					t.Errorf("FindChannel(%q) error is not a *StorageError", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindChannel(%q) error = %v", tt.key, err)
			}
			if got.ChannelID != tt.wantID {
				t.Errorf("FindChannel(%q) = %q, want %q", tt.key, got.ChannelID, tt.wantID)
			}
		})
	}
}

func TestSQLiteStore_ListChannelsOrderedByTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, c := range []*Channel{
		{ChannelID: "UC3", Title: "charlie"},
		{ChannelID: "UC1", Title: "Bravo"},
		{ChannelID: "UC2", Title: "alpha"},
	} {
		if err := store.UpsertChannel(ctx, c); err != nil {
			t.Fatalf("UpsertChannel() error = %v", err)
		}
	}

	channels, err := store.ListChannels(ctx)
	if err != nil {
		t.Fatalf("ListChannels() error = %v", err)
	}

	var titles []string
	for _, c := range channels {
		titles = append(titles, c.Title)
	}
	want := []string{"alpha", "Bravo", "charlie"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("ListChannels() order mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_UpsertVideoIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	video := testVideo("v1", "UC1", 10, 2)
	if err := store.UpsertVideo(ctx, video); err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}
	first, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}

	if err := store.UpsertVideo(ctx, video); err != nil {
		t.Fatalf("UpsertVideo() second error = %v", err)
	}
	second, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second upsert changed state (-first +second):\n%s", diff)
	}

	videos, err := store.ListVideos(ctx, "UC1")
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("ListVideos() returned %d videos, want 1", len(videos))
	}
}

func TestSQLiteStore_UpsertVideoReplacesAllFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertVideo(ctx, testVideo("v1", "UC1", 10, 2)); err != nil {
		t.Fatalf("UpsertVideo() error = %v", err)
	}

	replacement := &Video{
		VideoID:   "v1",
		ChannelID: "UC2",
		Title:     "new title",
		LikeCount: 3,
		ViewCount: 7,
		UpdatedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.UpsertVideo(ctx, replacement); err != nil {
		t.Fatalf("UpsertVideo() replace error = %v", err)
	}

	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if diff := cmp.Diff(replacement, got); diff != "" {
		t.Errorf("GetVideo() mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_UpsertVideoRejectsNegativeCounts(t *testing.T) {
	store := newTestStore(t)

	err := store.UpsertVideo(context.Background(), testVideo("v1", "UC1", -1, 0))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpsertVideo() error = %v, want ErrInvalidInput", err)
	}
}

func TestSQLiteStore_ListVideosKeepsRetrievalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := []string{"zz", "aa", "mm"}
	for _, id := range ids {
		if err := store.UpsertVideo(ctx, testVideo(id, "UC1", 1, 1)); err != nil {
			t.Fatalf("UpsertVideo(%s) error = %v", id, err)
		}
	}
	if err := store.UpsertVideo(ctx, testVideo("other", "UC2", 1, 1)); err != nil {
		t.Fatalf("UpsertVideo(other) error = %v", err)
	}
	// Re-upserting must not move the row.
	if err := store.UpsertVideo(ctx, testVideo("zz", "UC1", 5, 5)); err != nil {
		t.Fatalf("UpsertVideo(zz) error = %v", err)
	}

	videos, err := store.ListVideos(ctx, "UC1")
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}

	var got []string
	for _, v := range videos {
		got = append(got, v.VideoID)
	}
	if diff := cmp.Diff(ids, got); diff != "" {
		t.Errorf("ListVideos() order mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_GetVideoNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetVideo(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVideo() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Runs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &ScrapeRun{RunID: "run-1", Query: "majesticcasual", StartedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &ScrapeRun{RunID: "run-2", Query: "UC123", StartedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, r := range []*ScrapeRun{older, newer} {
		if err := store.CreateRun(ctx, r); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
		if r.Status != RunRunning {
			t.Errorf("CreateRun() status = %q, want %q", r.Status, RunRunning)
		}
	}

	older.Status = RunFailed
	older.LastError = "boom"
	older.ChannelID = "UC999"
	older.VideosProcessed = 3
	older.Pages = 1
	older.QuotaUnits = 5
	if err := store.FinishRun(ctx, older); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-2" {
		t.Errorf("ListRuns()[0] = %q, want newest run first", runs[0].RunID)
	}
	got := runs[1]
	if got.Status != RunFailed || got.LastError != "boom" || got.VideosProcessed != 3 || got.QuotaUnits != 5 {
		t.Errorf("finished run = %+v", got)
	}
	if got.FinishedAt.IsZero() {
		t.Error("FinishRun() did not stamp FinishedAt")
	}
}

func TestSQLiteStore_FinishUnknownRun(t *testing.T) {
	store := newTestStore(t)

	err := store.FinishRun(context.Background(), &ScrapeRun{RunID: "nope", Status: RunDone})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishRun() error = %v, want ErrNotFound", err)
	}
}

func TestLockWriter_SecondWriterTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	lock, err := LockWriter(path, time.Second)
	if err != nil {
		t.Fatalf("LockWriter() error = %v", err)
	}
	defer lock.Unlock()

	_, err = LockWriter(path, 20*time.Millisecond)
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("second LockWriter() error = %v, want ErrLockTimeout", err)
	}
}
