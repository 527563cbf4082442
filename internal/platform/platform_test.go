package platform

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabrego/tubesub-cli/internal/config"
)

// fakeBinary drops an executable file into a temp dir and returns its path.
func fakeBinary(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.VideoPath = t.TempDir()
	return cfg
}

func TestPlayCommandsMPVMode(t *testing.T) {
	cfg := baseConfig(t)
	cfg.MPVPath = fakeBinary(t, "mpv")

	commands, err := NewLauncher(cfg).PlayCommands("abc123")
	require.NoError(t, err)
	require.Len(t, commands, 1)

	args := commands[0].Args
	assert.Equal(t, cfg.MPVPath, args[0])
	assert.Contains(t, args, "-fs")
	assert.Contains(t, args, "--ytdl-format")
	assert.Contains(t, args, "https://www.youtube.com/watch?v=abc123")
}

func TestPlayCommandsFallbackDownloadsThenPlays(t *testing.T) {
	cfg := baseConfig(t)
	cfg.MPVPath = filepath.Join(t.TempDir(), "no-such-mpv")
	player := fakeBinary(t, "player")
	cfg.Players = [][]string{
		{filepath.Join(t.TempDir(), "absent-player"), "-x"},
		{player, "--play-and-exit"},
	}

	commands, err := NewLauncher(cfg).PlayCommands("abc123")
	require.NoError(t, err)
	require.Len(t, commands, 2)

	assert.Equal(t, "youtube-dl", commands[0].Args[0])
	assert.Equal(t, player, commands[1].Args[0])
	assert.Equal(t, []string{player, "--play-and-exit", cfg.DownloadPath("abc123")}, commands[1].Args)
}

func TestPlayCommandsSkipsDownloadWhenFileExists(t *testing.T) {
	cfg := baseConfig(t)
	cfg.MPVPath = filepath.Join(t.TempDir(), "no-such-mpv")
	player := fakeBinary(t, "player")
	cfg.Players = [][]string{{player}}
	require.NoError(t, os.WriteFile(cfg.DownloadPath("abc123"), nil, 0o644))

	commands, err := NewLauncher(cfg).PlayCommands("abc123")
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, player, commands[0].Args[0])
}

func TestPlayCommandsNoPlayerFound(t *testing.T) {
	cfg := baseConfig(t)
	cfg.MPVPath = filepath.Join(t.TempDir(), "no-such-mpv")
	cfg.Players = [][]string{{filepath.Join(t.TempDir(), "absent")}}

	_, err := NewLauncher(cfg).PlayCommands("abc123")
	assert.ErrorContains(t, err, "no configured player found")
}

func TestDownloadCommand(t *testing.T) {
	cfg := baseConfig(t)
	cmd := NewLauncher(cfg).DownloadCommand("abc123")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{
		"youtube-dl",
		"-f", cfg.YoutubeDLFormat,
		"-o", cfg.DownloadPath("abc123"),
		"--", "abc123",
	}, cmd.Args)
}

func TestDownloadCommandNilWhenPresent(t *testing.T) {
	cfg := baseConfig(t)
	require.NoError(t, os.WriteFile(cfg.DownloadPath("abc123"), nil, 0o644))
	assert.Nil(t, NewLauncher(cfg).DownloadCommand("abc123"))
}

func TestDescribeError(t *testing.T) {
	cmd := exec.Command("somebinary")

	assert.NoError(t, DescribeError(cmd, nil))

	err := DescribeError(cmd, exec.ErrNotFound)
	assert.EqualError(t, err, "`somebinary` was not found: maybe you should install it ?")

	err = DescribeError(cmd, errors.New("exit status 2"))
	assert.EqualError(t, err, "error while running somebinary: exit status 2")
}

func TestValidateURL(t *testing.T) {
	got, err := ValidateURL(" https://example.com/watch ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/watch", got)

	_, err = ValidateURL("")
	assert.Error(t, err)

	_, err = ValidateURL("ftp://example.com")
	assert.ErrorContains(t, err, "unsupported URL scheme")

	_, err = ValidateURL("https://")
	assert.ErrorContains(t, err, "host")
}
