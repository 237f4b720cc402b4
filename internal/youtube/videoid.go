package youtube

import "regexp"

// videoIDRe accepts youtube.com/watch?v=, youtube.com/embed/,
// youtube.com/live/ and youtu.be/ links.
var videoIDRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// VideoID extracts the 11-character video identifier from a YouTube URL.
func VideoID(url string) (string, bool) {
	m := videoIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
