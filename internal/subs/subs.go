// Package subs provides the subscription-source list consumed by the
// aggregator: the OPML export YouTube used to serve as
// subscription_manager, plus any extra channel ids from the config.
package subs

import (
	"encoding/xml"
	"fmt"
	"os"
)

// TakeoutURL is where the subscription_manager export used to live;
// kept in the first-run guidance so users know what file is expected.
const TakeoutURL = "https://www.youtube.com/subscription_manager?action_takeout=1"

const channelFeedPrefix = "https://www.youtube.com/feeds/videos.xml?channel_id="

// SetupError means the subscription list is missing entirely. It is a
// hard first-run dependency: the caller must print the guidance and
// exit before any UI state is entered.
type SetupError struct {
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("subscription list missing: %v", e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Guidance is the actionable first-run message shown instead of a
// stack trace.
func (e *SetupError) Guidance() string {
	return fmt.Sprintf(`configuration is missing
please download: %s (a browser window should be opened with it).
make it available as %s`, TakeoutURL, e.Path)
}

type opmlDocument struct {
	XMLName xml.Name      `xml:"opml"`
	Body    opmlOutlineSet `xml:"body"`
}

type opmlOutlineSet struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	XMLURL   string        `xml:"xmlUrl,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

// Manager resolves the set of feed-source URLs.
type Manager struct {
	path            string
	extraChannelIDs []string
}

func NewManager(path string, extraChannelIDs []string) *Manager {
	return &Manager{path: path, extraChannelIDs: extraChannelIDs}
}

// Sources reads the OPML file and returns every feed URL it mentions,
// followed by the feed URLs of the configured extra channel ids. A
// missing file is a *SetupError; a malformed one is a plain error.
func (m *Manager) Sources() ([]string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SetupError{Path: m.path, Err: err}
		}
		return nil, fmt.Errorf("read subscription list: %w", err)
	}

	var doc opmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse subscription list: %w", err)
	}

	urls := collectFeedURLs(doc.Body.Outlines, nil)
	for _, id := range m.extraChannelIDs {
		urls = append(urls, channelFeedPrefix+id)
	}
	return urls, nil
}

func collectFeedURLs(outlines []opmlOutline, urls []string) []string {
	for _, outline := range outlines {
		if outline.XMLURL != "" {
			urls = append(urls, outline.XMLURL)
		}
		urls = collectFeedURLs(outline.Outlines, urls)
	}
	return urls
}
