package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tuitheme "github.com/glabrego/tubesub-cli/internal/tui/theme"

	"github.com/glabrego/tubesub-cli/internal/feed"
)

type VideoLineParams struct {
	Video        feed.Video
	ChannelWidth int
	Active       bool
	Width        int
}

// RenderVideoLine draws one catalog row: selector, short date, padded
// channel column, truncated title.
func RenderVideoLine(p VideoLineParams, th tuitheme.Theme) string {
	selector := "  "
	if p.Active {
		selector = th.Selector.Render("|") + " "
	}

	date := ShortDate(p.Video.Published)
	channel := p.Video.Channel
	pad := p.ChannelWidth - utf8.RuneCountInString(channel)
	if pad < 0 {
		pad = 0
	}

	prefixLen := 2 + utf8.RuneCountInString(date) + 1 + p.ChannelWidth + 1
	available := p.Width - prefixLen
	if available < 1 {
		available = 1
	}
	title := truncateRunes(p.Video.Title, available)

	return fmt.Sprintf("%s%s %s%s %s",
		selector,
		th.Date.Render(date),
		th.Channel.Render(channel),
		strings.Repeat(" ", pad),
		title,
	)
}

// ChannelColumnWidth is the widest channel name in the window, so the
// title column lines up.
func ChannelColumnWidth(window []feed.Video) int {
	widest := 0
	for _, v := range window {
		if n := utf8.RuneCountInString(v.Channel); n > widest {
			widest = n
		}
	}
	return widest
}

// ShortDate reduces an ISO-8601 timestamp to its MM-DD part; anything
// shorter passes through untouched.
func ShortDate(published string) string {
	if len(published) >= 10 {
		return published[5:10]
	}
	return published
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
