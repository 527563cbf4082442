package feed

import "strings"

// Video is one entry from a subscribed feed. Published stays a string
// in ISO-8601 lexical form so catalog ordering is a plain string
// comparison; the fetcher is responsible for keeping it that way.
type Video struct {
	Channel     string `json:"channel"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
	Published   string `json:"published"`
	Description string `json:"description"`
}

// ID derives the stable media identifier from the video URL: the last
// path segment with any query string stripped. Works for both
// .../v/abc123?version=3 and plain .../abc123 forms.
func (v Video) ID() string {
	trimmed := strings.SplitN(v.URL, "?", 2)[0]
	segments := strings.Split(trimmed, "/")
	return segments[len(segments)-1]
}

// WatchURL is the canonical browser URL for a bare media identifier.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
