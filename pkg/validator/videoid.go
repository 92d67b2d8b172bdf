package validator

import (
	"net/url"
	"regexp"
	"strings"

	"youdl/internal/model"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// path prefixes on the main host that carry the id as the next segment
var idPathPrefixes = []string{"/embed/", "/shorts/", "/v/", "/live/"}

// ExtractVideoID returns the video identifier contained in a watch page URL
// (https://www.youtube.com/watch?v=ID) or a short link (https://youtu.be/ID).
// Anything else yields a KindInvalidURL error.
func ExtractVideoID(rawURL string) (model.VideoID, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", model.InvalidURL(rawURL)
	}

	host := strings.ToLower(u.Hostname())
	var id string

	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		path := strings.Trim(u.Path, "/")
		if i := strings.LastIndex(path, "/"); i >= 0 {
			path = path[i+1:]
		}
		id = path
	case isMainHost(host):
		if u.Path == "/watch" || u.Path == "/watch/" {
			id = u.Query().Get("v")
			break
		}
		for _, prefix := range idPathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", model.InvalidURL(rawURL)
	}
	return model.VideoID(id), nil
}

func isMainHost(host string) bool {
	switch host {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		return true
	}
	return false
}
