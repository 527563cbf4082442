package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "tubesub"

// Config holds runtime settings for the CLI app. It is read from
// ~/.config/tubesub/config.json; a missing file means defaults, a
// malformed one is a setup error.
type Config struct {
	VideoPath       string     `json:"video_path"`
	CachePath       string     `json:"cache_path"`
	YoutubeDLFormat string     `json:"youtubedl_format"`
	VideoExtension  string     `json:"video_extension"`
	Players         [][]string `json:"players"`
	ChannelIDs      []string   `json:"channel_ids"`
	MPVMode         *bool      `json:"mpv_mode,omitempty"`
	MPVPath         string     `json:"mpv_path"`

	// SubscriptionsPath is derived, not read from the file.
	SubscriptionsPath string `json:"-"`
}

func Default() Config {
	mpvMode := true
	return Config{
		VideoPath:       "/tmp",
		CachePath:       "/tmp/tubesub.json",
		YoutubeDLFormat: "[height <=? 360][ext = mp4]",
		VideoExtension:  "mp4",
		Players: [][]string{
			{"/usr/bin/omxplayer", "-o", "local"},
			{"/Applications/VLC.app/Contents/MacOS/VLC", "--play-and-exit", "-f"},
			{"/usr/bin/vlc", "--play-and-exit", "-f"},
			{"/usr/bin/mpv", "-really-quiet", "-fs"},
			{"/usr/bin/mplayer", "-really-quiet", "-fs"},
		},
		MPVMode: &mpvMode,
		MPVPath: "/usr/bin/mpv",
	}
}

// Load reads the config for the current user and prepares the video
// and cache directories.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return loadFrom(home)
}

func loadFrom(home string) (Config, error) {
	cfg := Default()

	path := filepath.Join(home, ".config", appDirName, "config.json")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.VideoPath = strings.ReplaceAll(cfg.VideoPath, "__HOME", home)
	cfg.CachePath = strings.ReplaceAll(cfg.CachePath, "__HOME", home)
	cfg.SubscriptionsPath = filepath.Join(home, ".config", appDirName, "subscription_manager")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if err := os.MkdirAll(cfg.VideoPath, 0o755); err != nil {
		return Config{}, fmt.Errorf("create video path %s: %w", cfg.VideoPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("create cache directory for %s: %w", cfg.CachePath, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.VideoPath == "" {
		return errors.New("video_path is required")
	}
	if c.CachePath == "" {
		return errors.New("cache_path is required")
	}
	if c.VideoExtension == "" {
		return errors.New("video_extension is required")
	}
	for i, player := range c.Players {
		if len(player) == 0 {
			return fmt.Errorf("players[%d] must name a binary", i)
		}
	}
	return nil
}

// MPVEnabled reports whether direct mpv streaming is configured; the
// field defaults to true when the config file never mentions it.
func (c Config) MPVEnabled() bool {
	return c.MPVMode == nil || *c.MPVMode
}

// DownloadPath is the local file a video downloads to.
func (c Config) DownloadPath(id string) string {
	return filepath.Join(c.VideoPath, id+"."+c.VideoExtension)
}
