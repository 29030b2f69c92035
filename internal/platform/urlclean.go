package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URL templates
const (
	YouTubeWatchURLTemplate  = "https://www.youtube.com/watch?v=%s"
	NiconicoWatchURLTemplate = "https://www.nicovideo.jp/watch/%s"
)

// Host markers
const (
	youtubeHostMarker  = "youtube.com"
	youtubeShortMarker = "youtu.be"
	niconicoHostMarker = "nicovideo.jp"
)

var niconicoWatchPattern = regexp.MustCompile(`/watch/([a-z0-9]+)`)

// CleanURL normalizes a media URL by site: YouTube and Niconico links are
// rewritten to their canonical watch form with tracking parameters stripped,
// anything else passes through unchanged.
func CleanURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)

	switch {
	case strings.Contains(rawURL, youtubeHostMarker) || strings.Contains(rawURL, youtubeShortMarker):
		return CleanYouTubeURL(rawURL)
	case strings.Contains(rawURL, niconicoHostMarker):
		return CleanNiconicoURL(rawURL)
	default:
		return rawURL
	}
}

// CleanYouTubeURL rewrites shorts and youtu.be links to the watch form and
// drops every query parameter except the video id. Unparseable input is
// returned as-is.
func CleanYouTubeURL(rawURL string) string {
	// Shorts to regular watch form
	if strings.Contains(rawURL, "/shorts/") {
		videoID := cutAfter(rawURL, "/shorts/")
		if videoID != "" {
			return fmt.Sprintf(YouTubeWatchURLTemplate, videoID)
		}
		return rawURL
	}

	// Expand youtu.be short links
	if strings.Contains(rawURL, youtubeShortMarker+"/") {
		videoID := cutAfter(rawURL, youtubeShortMarker+"/")
		if videoID != "" {
			return fmt.Sprintf(YouTubeWatchURLTemplate, videoID)
		}
		return rawURL
	}

	// Strip extra parameters from regular watch URLs
	if strings.Contains(rawURL, "youtube.com/watch") {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return rawURL
		}
		if videoID := parsed.Query().Get("v"); videoID != "" {
			return fmt.Sprintf(YouTubeWatchURLTemplate, videoID)
		}
	}

	return rawURL
}

// CleanNiconicoURL rewrites a Niconico link to the canonical watch form
func CleanNiconicoURL(rawURL string) string {
	if !strings.Contains(rawURL, niconicoHostMarker+"/watch/") {
		return rawURL
	}

	match := niconicoWatchPattern.FindStringSubmatch(rawURL)
	if len(match) < 2 {
		return rawURL
	}

	return fmt.Sprintf(NiconicoWatchURLTemplate, match[1])
}

// cutAfter returns the path segment following marker, trimmed at the first
// query or parameter separator.
func cutAfter(rawURL, marker string) string {
	parts := strings.Split(rawURL, marker)
	segment := parts[len(parts)-1]
	segment = strings.SplitN(segment, "?", 2)[0]
	segment = strings.SplitN(segment, "&", 2)[0]
	segment = strings.SplitN(segment, "/", 2)[0]
	return segment
}
