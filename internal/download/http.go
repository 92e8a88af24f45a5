package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// HTTPDownloader streams a direct media URL into a temp file.
type HTTPDownloader struct {
	http       *http.Client
	createTemp func(dir, pattern string) (*os.File, error)
}

// NewHTTPDownloader constructs a direct downloader with the given
// request timeout.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		http:       &http.Client{Timeout: timeout},
		createTemp: os.CreateTemp,
	}
}

// NewHTTPDownloaderForTests constructs a downloader using the given
// HTTP client.
func NewHTTPDownloaderForTests(client *http.Client) *HTTPDownloader {
	return &HTTPDownloader{http: client, createTemp: os.CreateTemp}
}

// Download fetches the URL and writes the body to a temp file whose
// extension comes from the URL path, falling back to the Content-Type.
func (d *HTTPDownloader) Download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media URL returned status %d", resp.StatusCode)
	}

	ext := mediaExtension(rawURL, resp.Header.Get("Content-Type"))
	out, err := d.createTemp("", "media_*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil || written == 0 {
		os.Remove(out.Name())
		if copyErr != nil {
			return "", fmt.Errorf("writing media download: %w", copyErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("writing media download: %w", closeErr)
		}
		return "", ErrEmptyDownload
	}

	return out.Name(), nil
}

// mediaExtension picks a file extension for the downloaded artifact.
func mediaExtension(rawURL, contentType string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(parsed.Path); ext != "" {
			return ext
		}
	}
	switch {
	case strings.Contains(contentType, "audio"):
		return ".mp3"
	case strings.Contains(contentType, "video"):
		return ".mp4"
	default:
		return ".mp4"
	}
}
