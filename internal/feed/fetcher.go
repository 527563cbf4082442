package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const userAgent = "tubesub/1.0 (https://github.com/glabrego/tubesub-cli)"

// Fetcher retrieves the videos of a single feed source.
type Fetcher struct {
	http *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a
// 30s timeout so one hung source cannot stall a refresh forever.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{http: httpClient}
}

// Fetch performs one GET against the feed URL and converts every entry
// to a Video, denormalizing the feed's own title into Channel. No
// retries; the caller decides what a failed source is worth.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	videos := make([]Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		videos = append(videos, convertItem(item, parsed.Title))
	}
	return videos, nil
}

func convertItem(item *gofeed.Item, channel string) Video {
	video := Video{
		Channel:     channel,
		Title:       item.Title,
		URL:         item.Link,
		Published:   publishedString(item),
		Description: item.Description,
	}

	// YouTube feeds carry thumbnail, stream URL and description in the
	// media:group extension rather than the entry itself.
	if group := mediaGroup(item); group != nil {
		if url := childAttr(group, "thumbnail", "url"); url != "" {
			video.Thumbnail = url
		}
		if url := childAttr(group, "content", "url"); url != "" {
			video.URL = url
		}
		if desc := childValue(group, "description"); desc != "" {
			video.Description = desc
		}
	}
	return video
}

// publishedString keeps the Published field lexically sortable: a
// parseable timestamp is re-rendered as RFC 3339 UTC (which also fixes
// RSS pubDate formats), an unparseable one is passed through as-is.
func publishedString(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.Published != "" {
		return item.Published
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return item.Updated
}

func mediaGroup(item *gofeed.Item) *ext.Extension {
	media, ok := item.Extensions["media"]
	if !ok {
		return nil
	}
	groups, ok := media["group"]
	if !ok || len(groups) == 0 {
		return nil
	}
	return &groups[0]
}

func childAttr(group *ext.Extension, name, attr string) string {
	children, ok := group.Children[name]
	if !ok || len(children) == 0 {
		return ""
	}
	return children[0].Attrs[attr]
}

func childValue(group *ext.Extension, name string) string {
	children, ok := group.Children[name]
	if !ok || len(children) == 0 {
		return ""
	}
	return children[0].Value
}
