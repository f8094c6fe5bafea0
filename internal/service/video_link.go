package service

import (
	"net/url"
	"strings"
)

const (
	facebookPluginPath = "facebook.com/plugins/video.php"
	facebookPluginURL  = "https://www.facebook.com/plugins/video.php?href="
	youtubeEmbedURL    = "https://www.youtube.com/embed/"
)

// NormalizeVideoURL rewrites YouTube and Facebook share links into embeddable
// player URLs. Other input is returned trimmed but otherwise unchanged.
//
// The rules run in order against the value produced so far: Facebook
// wrapping, then youtube.com/watch, then youtu.be. A later rule that matches
// overrides an earlier rewrite.
func NormalizeVideoURL(raw string) string {
	video := strings.TrimSpace(raw)
	if video == "" {
		return ""
	}

	if strings.Contains(video, "facebook.com") && !strings.Contains(video, facebookPluginPath) {
		video = facebookPluginURL + percentEncode(video)
	}

	if strings.Contains(video, "youtube.com/watch") {
		if id := youtubeWatchID(video); id != "" {
			video = youtubeEmbedURL + id
		}
	} else if strings.Contains(video, "youtu.be/") {
		if id := youtuShortID(video); id != "" {
			video = youtubeEmbedURL + id
		}
	}

	return video
}

// youtubeWatchID is the text after the first "v=", cut at the next "&".
func youtubeWatchID(video string) string {
	_, after, found := strings.Cut(video, "v=")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "&")
	return id
}

// youtuShortID is the last path segment of a youtu.be link, without query or fragment.
func youtuShortID(video string) string {
	id := video[strings.LastIndex(video, "/")+1:]
	if idx := strings.IndexAny(id, "?#"); idx >= 0 {
		id = id[:idx]
	}
	return id
}

// percentEncode escapes every reserved character, spaces included, as %XX.
func percentEncode(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}
