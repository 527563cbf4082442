package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabrego/tubesub-cli/internal/catalog"
	"github.com/glabrego/tubesub-cli/internal/feed"
)

type stubSources struct {
	urls []string
	err  error
}

func (s stubSources) Sources() ([]string, error) {
	return s.urls, s.err
}

type stubFetcher struct {
	byURL map[string][]feed.Video
}

func (f stubFetcher) Fetch(ctx context.Context, feedURL string) ([]feed.Video, error) {
	videos, ok := f.byURL[feedURL]
	if !ok {
		return nil, fmt.Errorf("fetch feed: status 404")
	}
	return videos, nil
}

func newStore(t *testing.T) *catalog.Store {
	t.Helper()
	return catalog.NewStore(filepath.Join(t.TempDir(), "catalog.json"))
}

func vids(ids ...string) []feed.Video {
	out := make([]feed.Video, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.Video{
			Channel:   "ch",
			Title:     id,
			URL:       "https://www.youtube.com/v/" + id,
			Published: "2021-01-01T00:00:00Z",
		})
	}
	return out
}

func TestLoadUsesCacheWithoutRefresh(t *testing.T) {
	store := newStore(t)
	cached := catalog.Catalog{Videos: vids("cached")}
	require.NoError(t, store.Save(cached))

	// The fetcher would fail for every source, proving no fetch runs.
	svc := NewService(stubSources{urls: []string{"u"}}, stubFetcher{}, store, nil)

	got, err := svc.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestLoadFetchesWhenCacheMissing(t *testing.T) {
	store := newStore(t)
	fetcher := stubFetcher{byURL: map[string][]feed.Video{"u1": vids("a", "b")}}
	svc := NewService(stubSources{urls: []string{"u1"}}, fetcher, store, nil)

	got, err := svc.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, got.Videos, 2)
	assert.True(t, store.Exists())
}

func TestLoadForceRefreshOverwritesCache(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(catalog.Catalog{Videos: vids("stale")}))

	fetcher := stubFetcher{byURL: map[string][]feed.Video{
		"u1": vids("a", "b", "c"),
		"u2": vids("d", "e"),
	}}
	svc := NewService(stubSources{urls: []string{"u1", "u2"}}, fetcher, store, nil)

	got, err := svc.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, got.Videos, 5)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, persisted.Videos, 5)
}

func TestLoadFailedSourceIsIsolated(t *testing.T) {
	store := newStore(t)
	fetcher := stubFetcher{byURL: map[string][]feed.Video{
		"good1": vids("a"),
		"good2": vids("b"),
		// "bad" absent: every fetch against it errors.
	}}
	svc := NewService(stubSources{urls: []string{"good1", "bad", "good2"}}, fetcher, store, nil)

	got, err := svc.Load(context.Background(), true)
	require.NoError(t, err)

	titles := make([]string, len(got.Videos))
	for i, v := range got.Videos {
		titles[i] = v.Title
	}
	assert.ElementsMatch(t, []string{"a", "b"}, titles)
}

func TestLoadSourcesErrorPropagates(t *testing.T) {
	wantErr := errors.New("subscription list missing")
	svc := NewService(stubSources{err: wantErr}, stubFetcher{}, newStore(t), nil)

	_, err := svc.Load(context.Background(), true)
	assert.ErrorIs(t, err, wantErr)
}

type stubDownloader struct {
	skip map[string]bool
	ids  []string
}

func (d *stubDownloader) DownloadCommand(id string) *exec.Cmd {
	if d.skip[id] {
		return nil
	}
	d.ids = append(d.ids, id)
	return exec.Command("true", id)
}

func TestDownloadLatest(t *testing.T) {
	store := newStore(t)
	videos := []feed.Video{
		{Title: "old", URL: "https://host/v/old", Published: "2021-01-01T00:00:00Z"},
		{Title: "mid", URL: "https://host/v/mid", Published: "2021-01-02T00:00:00Z"},
		{Title: "new", URL: "https://host/v/new", Published: "2021-01-03T00:00:00Z"},
	}
	fetcher := stubFetcher{byURL: map[string][]feed.Video{"u": videos}}
	svc := NewService(stubSources{urls: []string{"u"}}, fetcher, store, nil)

	dl := &stubDownloader{skip: map[string]bool{"mid": true}}
	var ran []string
	run := func(cmd *exec.Cmd) error {
		ran = append(ran, cmd.Args[1])
		return nil
	}

	require.NoError(t, svc.DownloadLatest(context.Background(), 2, dl, run))
	assert.Equal(t, []string{"new"}, ran, "newest first, already-present skipped")

	// Count larger than the catalog is clamped.
	ran = nil
	dl.skip = nil
	require.NoError(t, svc.DownloadLatest(context.Background(), 10, dl, run))
	assert.Equal(t, []string{"new", "mid", "old"}, ran)
}

func TestDownloadLatestStopsOnFailure(t *testing.T) {
	store := newStore(t)
	fetcher := stubFetcher{byURL: map[string][]feed.Video{"u": vids("a", "b")}}
	svc := NewService(stubSources{urls: []string{"u"}}, fetcher, store, nil)

	wantErr := errors.New("exit status 1")
	calls := 0
	run := func(cmd *exec.Cmd) error {
		calls++
		return wantErr
	}

	err := svc.DownloadLatest(context.Background(), 2, &stubDownloader{}, run)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestLoadNoSourcesSavesEmptyCatalog(t *testing.T) {
	store := newStore(t)
	svc := NewService(stubSources{}, stubFetcher{}, store, nil)

	got, err := svc.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, got.Videos)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted.Videos)
}
