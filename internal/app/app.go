package app

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/glabrego/tubesub-cli/internal/catalog"
	"github.com/glabrego/tubesub-cli/internal/feed"
	"github.com/glabrego/tubesub-cli/internal/view"
)

// maxConcurrentFetches caps the fetch fan-out for resource safety; it
// does not change what a refresh produces.
const maxConcurrentFetches = 8

type SourceProvider interface {
	Sources() ([]string, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]feed.Video, error)
}

type Store interface {
	Exists() bool
	Load() (catalog.Catalog, error)
	Save(c catalog.Catalog) error
}

// Service owns the aggregation pipeline: resolve sources, fan out
// fetches, merge, and keep the on-disk catalog snapshot in sync.
type Service struct {
	sources SourceProvider
	fetcher Fetcher
	store   Store
	log     *logrus.Logger
}

func NewService(sources SourceProvider, fetcher Fetcher, store Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Service{sources: sources, fetcher: fetcher, store: store, log: log}
}

// Load returns the catalog. Without forceRefresh a readable cache is
// returned verbatim and no network traffic happens; an unreadable or
// missing cache falls through to a full aggregation pass, whose result
// atomically replaces the cache file.
func (s *Service) Load(ctx context.Context, forceRefresh bool) (catalog.Catalog, error) {
	if !forceRefresh && s.store.Exists() {
		cached, err := s.store.Load()
		if err == nil {
			return cached, nil
		}
		s.log.WithError(err).Warn("cache unreadable, refetching")
	}

	urls, err := s.sources.Sources()
	if err != nil {
		return catalog.Catalog{}, err
	}

	fresh := catalog.Catalog{Videos: s.aggregate(ctx, urls)}
	if err := s.store.Save(fresh); err != nil {
		return catalog.Catalog{}, fmt.Errorf("persist catalog: %w", err)
	}
	return fresh, nil
}

// Downloader prepares the download command for a media identifier; a
// nil command means the file is already present.
type Downloader interface {
	DownloadCommand(id string) *exec.Cmd
}

// Runner executes a prepared command in the foreground.
type Runner func(*exec.Cmd) error

// DownloadLatest is the non-interactive surface: force-refresh the
// catalog and download the count newest videos one at a time, skipping
// ones already on disk. Stops at the first failed download.
func (s *Service) DownloadLatest(ctx context.Context, count int, dl Downloader, run Runner) error {
	cat, err := s.Load(ctx, true)
	if err != nil {
		return err
	}

	sorted := view.Filtered(cat.Videos, "")
	if count > len(sorted) {
		count = len(sorted)
	}
	for _, video := range sorted[:count] {
		cmd := dl.DownloadCommand(video.ID())
		if cmd == nil {
			s.log.WithField("id", video.ID()).Debug("already downloaded")
			continue
		}
		if err := run(cmd); err != nil {
			return err
		}
	}
	return nil
}

// aggregate fans the source URLs out to the fetcher and joins on the
// whole batch. A failed source contributes zero entries and is only
// logged; duplicates across sources are kept as-is. No ordering is
// guaranteed here — the view layer imposes it.
func (s *Service) aggregate(ctx context.Context, urls []string) []feed.Video {
	results := make([][]feed.Video, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			videos, err := s.fetcher.Fetch(ctx, url)
			if err != nil {
				s.log.WithField("url", url).WithError(err).Debug("source fetch failed")
				return nil
			}
			results[i] = videos
			return nil
		})
	}
	// Workers never return errors; the Wait is a pure join.
	_ = g.Wait()

	merged := make([]feed.Video, 0, 16*len(urls))
	for _, videos := range results {
		merged = append(merged, videos...)
	}
	return merged
}
