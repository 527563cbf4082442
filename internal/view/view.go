// Package view derives the visible window of the catalog: global sort
// is newest-first, but each page is reversed so its oldest entry sits
// at the top of the screen and its newest at the bottom.
package view

import (
	"sort"
	"strings"

	"github.com/glabrego/tubesub-cli/internal/feed"
)

// Matches reports whether the filter keeps the video. The match is a
// case-sensitive substring test against title or channel; an empty
// filter keeps everything.
func Matches(v feed.Video, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(v.Title, filter) || strings.Contains(v.Channel, filter)
}

// Filtered returns the full newest-first filtered sequence. The input
// slice is never mutated; the sort runs on a copy every call.
func Filtered(videos []feed.Video, filter string) []feed.Video {
	sorted := append([]feed.Video(nil), videos...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Published > sorted[j].Published
	})

	if filter == "" {
		return sorted
	}
	kept := make([]feed.Video, 0, len(sorted))
	for _, v := range sorted {
		if Matches(v, filter) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Derive materializes the visible window: filter and sort the catalog,
// slice [start, start+size), then reverse the slice so index 0 is the
// oldest entry of the page.
func Derive(videos []feed.Video, filter string, start, size int) []feed.Video {
	filtered := Filtered(videos, filter)
	if size <= 0 || start >= len(filtered) || start < 0 {
		return []feed.Video{}
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	window := append([]feed.Video(nil), filtered[start:end]...)
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window
}

// FindFirst returns the index of the first window entry whose title or
// channel contains the query, or 0 when nothing matches.
func FindFirst(window []feed.Video, query string) int {
	for i, v := range window {
		if Matches(v, query) {
			return i
		}
	}
	return 0
}
