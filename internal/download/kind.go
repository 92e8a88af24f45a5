// Package download fetches remote media artifacts into local temp
// files so the transcription pipeline can treat every source as a path.
package download

import (
	"net/url"
	"strings"
)

// Kind classifies a submitted URL by the service that hosts it.
type Kind string

// Recognized URL kinds.
const (
	KindGoogleDrive Kind = "google_drive"
	KindLinkedIn    Kind = "linkedin"
	KindYouTube     Kind = "youtube"
	KindDirect      Kind = "direct_media"
	KindUnknown     Kind = "unknown"
)

// directMediaExts marks URLs that point straight at a media file.
var directMediaExts = []string{".mp3", ".mp4", ".wav", ".m4a", ".flac"}

// linkedInPostPaths are the LinkedIn path shapes that carry video.
var linkedInPostPaths = []string{"/feed/update/urn:li:activity:", "/posts/"}

// Classify determines the kind of a raw URL. Classification is
// conservative: anything not positively recognized is KindUnknown.
func Classify(rawURL string) Kind {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return KindUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	lower := strings.ToLower(rawURL)

	switch {
	case strings.Contains(host, "drive.google.com"):
		return KindGoogleDrive
	case strings.Contains(host, "linkedin.com") && hasAnyPath(parsed.Path, linkedInPostPaths):
		return KindLinkedIn
	case strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be"):
		return KindYouTube
	case hasAnySuffixHint(lower, directMediaExts):
		return KindDirect
	default:
		return KindUnknown
	}
}

// DriveFileID extracts the file identifier from a Google Drive URL.
// Both the /file/d/<id>/ and ?id=<id> shapes are supported.
func DriveFileID(rawURL string) (string, bool) {
	if idx := strings.Index(rawURL, "/file/d/"); idx >= 0 {
		rest := rawURL[idx+len("/file/d/"):]
		if slash := strings.IndexAny(rest, "/?#"); slash >= 0 {
			rest = rest[:slash]
		}
		if rest != "" {
			return rest, true
		}
		return "", false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id, true
	}
	return "", false
}

func hasAnyPath(path string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(path, c) {
			return true
		}
	}
	return false
}

func hasAnySuffixHint(lower string, exts []string) bool {
	for _, ext := range exts {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
