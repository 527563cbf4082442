// Package platform launches the external collaborators: media player,
// downloader and system browser. Nothing in here is fatal to the
// session; failures come back as errors for the status line.
package platform

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/glabrego/tubesub-cli/internal/config"
	"github.com/glabrego/tubesub-cli/internal/feed"
)

const downloaderBinary = "youtube-dl"

// Launcher builds the subprocess command lines for a media identifier
// based on the user's config.
type Launcher struct {
	cfg config.Config
}

func NewLauncher(cfg config.Config) *Launcher {
	return &Launcher{cfg: cfg}
}

// PlayCommands returns the subprocess sequence that plays a video id:
// a single mpv invocation streaming the watch URL when mpv mode is on
// and the binary exists, otherwise a download (skipped when the file
// is already present) followed by the first configured player whose
// binary exists.
func (l *Launcher) PlayCommands(id string) ([]*exec.Cmd, error) {
	if l.cfg.MPVEnabled() && binaryExists(l.cfg.MPVPath) {
		cmd := exec.Command(
			l.cfg.MPVPath,
			"-fs",
			"-really-quiet",
			"--ytdl-format", l.cfg.YoutubeDLFormat,
			feed.WatchURL(id),
		)
		return []*exec.Cmd{cmd}, nil
	}

	commands := make([]*exec.Cmd, 0, 2)
	if cmd := l.DownloadCommand(id); cmd != nil {
		commands = append(commands, cmd)
	}

	path := l.cfg.DownloadPath(id)
	for _, player := range l.cfg.Players {
		if !binaryExists(player[0]) {
			continue
		}
		args := append(append([]string{}, player[1:]...), path)
		commands = append(commands, exec.Command(player[0], args...))
		return commands, nil
	}
	return nil, errors.New("no configured player found")
}

// DownloadCommand returns the youtube-dl invocation for a video id, or
// nil when the target file already exists.
func (l *Launcher) DownloadCommand(id string) *exec.Cmd {
	path := l.cfg.DownloadPath(id)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return exec.Command(
		downloaderBinary,
		"-f", l.cfg.YoutubeDLFormat,
		"-o", path,
		"--", id,
	)
}

// Run executes a command in the foreground, wiring the current
// process's stdio through. Used by the non-interactive download mode;
// the TUI hands commands to bubbletea instead.
func Run(cmd *exec.Cmd) error {
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return DescribeError(cmd, cmd.Run())
}

// DescribeError rewrites subprocess failures into the message shown to
// the user: a missing binary gets install guidance, everything else
// names the binary and the underlying error.
func DescribeError(cmd *exec.Cmd, err error) error {
	if err == nil {
		return nil
	}
	binary := cmd.Path
	if len(cmd.Args) > 0 {
		binary = cmd.Args[0]
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("`%s` was not found: maybe you should install it ?", binary)
	}
	return fmt.Errorf("error while running %s: %v", binary, err)
}

func binaryExists(path string) bool {
	if path == "" {
		return false
	}
	if strings.ContainsRune(path, os.PathSeparator) {
		_, err := os.Stat(path)
		return err == nil
	}
	_, err := exec.LookPath(path)
	return err == nil
}

// ValidateURL rejects anything that is not a plausible http(s) URL
// before it reaches the browser.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("entry has no URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL host")
	}
	return trimmed, nil
}

// OpenURLInBrowser is best effort; callers treat failure as non-fatal.
func OpenURLInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Run()
}
