package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// driveExportURL is the direct-download endpoint for a Drive file ID.
const driveExportURL = "https://drive.google.com/uc?export=download&id=%s"

// DriveDownloader fetches Google Drive files through the uc export
// endpoint. Files behind a confirmation interstitial or permission
// wall come back as HTML and are rejected by the size check upstream.
type DriveDownloader struct {
	http       *http.Client
	exportBase string
	createTemp func(dir, pattern string) (*os.File, error)
}

// NewDriveDownloader constructs a Drive downloader with the given
// request timeout.
func NewDriveDownloader(timeout time.Duration) *DriveDownloader {
	return &DriveDownloader{
		http:       &http.Client{Timeout: timeout},
		createTemp: os.CreateTemp,
	}
}

// NewDriveDownloaderForTests constructs a downloader whose export
// endpoint and HTTP client are controlled by the test.
func NewDriveDownloaderForTests(client *http.Client, exportBase string) *DriveDownloader {
	return &DriveDownloader{http: client, exportBase: exportBase, createTemp: os.CreateTemp}
}

// Download resolves the file ID, streams the export response into a
// temp file, and removes the file again if nothing usable arrived.
func (d *DriveDownloader) Download(ctx context.Context, rawURL string) (string, error) {
	id, ok := DriveFileID(rawURL)
	if !ok {
		return "", fmt.Errorf("invalid Google Drive URL: %s", rawURL)
	}

	target := fmt.Sprintf(driveExportURL, id)
	if d.exportBase != "" {
		target = fmt.Sprintf("%s?export=download&id=%s", d.exportBase, id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building Drive request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading from Google Drive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Google Drive returned status %d for file %s", resp.StatusCode, id)
	}

	out, err := d.createTemp("", "drive_*.mp4")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil || written == 0 {
		os.Remove(out.Name())
		if copyErr != nil {
			return "", fmt.Errorf("writing Drive download: %w", copyErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("writing Drive download: %w", closeErr)
		}
		return "", ErrEmptyDownload
	}

	return out.Name(), nil
}
