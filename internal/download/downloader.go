package download

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedURL is returned for URLs no downloader recognizes.
var ErrUnsupportedURL = errors.New("unsupported URL type")

// ErrEmptyDownload is returned when a download produced no usable file.
var ErrEmptyDownload = errors.New("downloaded file is empty or missing")

// Downloader fetches a remote artifact and returns its local path.
// The returned file is owned by the caller, which removes it once
// the pipeline is done with it.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (string, error)
}

// Resolver dispatches URLs to the downloader for their kind.
type Resolver struct {
	drive    Downloader
	linkedin Downloader
	youtube  Downloader
	direct   Downloader
}

// NewResolver wires one downloader per supported URL kind.
func NewResolver(drive, linkedin, youtube, direct Downloader) *Resolver {
	return &Resolver{drive: drive, linkedin: linkedin, youtube: youtube, direct: direct}
}

// Download classifies the URL and delegates to the matching downloader.
func (r *Resolver) Download(ctx context.Context, rawURL string) (string, Kind, error) {
	kind := Classify(rawURL)

	var d Downloader
	switch kind {
	case KindGoogleDrive:
		d = r.drive
	case KindLinkedIn:
		d = r.linkedin
	case KindYouTube:
		d = r.youtube
	case KindDirect:
		d = r.direct
	default:
		return "", kind, fmt.Errorf("%w: %s", ErrUnsupportedURL, kind)
	}

	path, err := d.Download(ctx, rawURL)
	if err != nil {
		return "", kind, err
	}
	return path, kind, nil
}
