package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/glabrego/tubesub-cli/internal/app"
	"github.com/glabrego/tubesub-cli/internal/catalog"
	"github.com/glabrego/tubesub-cli/internal/config"
	"github.com/glabrego/tubesub-cli/internal/feed"
	"github.com/glabrego/tubesub-cli/internal/platform"
	"github.com/glabrego/tubesub-cli/internal/subs"
	"github.com/glabrego/tubesub-cli/internal/tui"
)

func main() {
	cliApp := &cli.App{
		Name:      "tubesub",
		Usage:     "browse your youtube subscriptions in a terminal",
		ArgsUsage: "[count]",
		Action:    run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sources := subs.NewManager(cfg.SubscriptionsPath, cfg.ChannelIDs)
	fetcher := feed.NewFetcher(nil)
	store := catalog.NewStore(cfg.CachePath)
	service := app.NewService(sources, fetcher, store, log)
	launcher := platform.NewLauncher(cfg)

	// A bare numeric argument means batch mode: refresh and download
	// the N most recent videos, no UI.
	if arg := c.Args().First(); arg != "" {
		count, err := strconv.Atoi(arg)
		if err != nil || count < 0 {
			return fmt.Errorf("expected a video count, got %q", arg)
		}
		return describeSetup(service.DownloadLatest(c.Context, count, launcher, platform.Run))
	}

	cat, err := service.Load(c.Context, false)
	if err != nil {
		return describeSetup(err)
	}

	model := tui.NewModel(service, launcher, cat)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// describeSetup turns a missing subscription list into the first-run
// guidance, opening the takeout page as a best effort.
func describeSetup(err error) error {
	if err == nil {
		return nil
	}
	var setupErr *subs.SetupError
	if errors.As(err, &setupErr) {
		_ = platform.OpenURLInBrowser(subs.TakeoutURL)
		return errors.New(setupErr.Guidance())
	}
	return err
}

// newLogger writes to the file named by TUBESUB_LOG, or nowhere. The
// terminal belongs to the UI, so stderr is never used while running.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if path := os.Getenv("TUBESUB_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			log.SetOutput(f)
			log.SetLevel(logrus.DebugLevel)
		}
	}
	return log
}
