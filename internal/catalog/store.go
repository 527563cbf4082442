package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glabrego/tubesub-cli/internal/feed"
)

// Catalog is the aggregated video list as persisted on disk.
type Catalog struct {
	Videos []feed.Video `json:"videos"`
}

// Store persists the catalog as a single JSON document. Writes go
// through a temp file and a rename so a reader never observes a
// half-written snapshot.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a cache snapshot is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the snapshot back. Every record must carry all six
// fields; a missing key is a parse failure, not an empty string.
func (s *Store) Load() (Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	var doc struct {
		Videos []videoRecord `json:"videos"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Videos == nil {
		return Catalog{}, fmt.Errorf("decode catalog: missing videos key")
	}

	videos := make([]feed.Video, 0, len(doc.Videos))
	for i, record := range doc.Videos {
		video, err := record.toVideo()
		if err != nil {
			return Catalog{}, fmt.Errorf("decode catalog entry %d: %w", i, err)
		}
		videos = append(videos, video)
	}
	return Catalog{Videos: videos}, nil
}

// Save atomically replaces the snapshot with the given catalog.
func (s *Store) Save(c Catalog) error {
	if c.Videos == nil {
		c.Videos = []feed.Video{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create catalog temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close catalog temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod catalog temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

// videoRecord mirrors feed.Video with pointer fields so absent keys
// can be told apart from empty strings on read.
type videoRecord struct {
	Channel     *string `json:"channel"`
	Title       *string `json:"title"`
	Thumbnail   *string `json:"thumbnail"`
	URL         *string `json:"url"`
	Published   *string `json:"published"`
	Description *string `json:"description"`
}

func (r videoRecord) toVideo() (feed.Video, error) {
	fields := map[string]*string{
		"channel":     r.Channel,
		"title":       r.Title,
		"thumbnail":   r.Thumbnail,
		"url":         r.URL,
		"published":   r.Published,
		"description": r.Description,
	}
	for name, value := range fields {
		if value == nil {
			return feed.Video{}, fmt.Errorf("missing field %q", name)
		}
	}
	return feed.Video{
		Channel:     *r.Channel,
		Title:       *r.Title,
		Thumbnail:   *r.Thumbnail,
		URL:         *r.URL,
		Published:   *r.Published,
		Description: *r.Description,
	}, nil
}
