// Package fetcher retrieves performance files from remote providers. Monthly
// CSVs arrive over HTTPS or, for two legacy custodians, plain FTP drops.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote performance files.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ForURL returns the fetcher for the URL's scheme.
func ForURL(rawURL string, httpOpts HTTPOptions, ftpOpts FTPOptions) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(httpOpts), nil
	case "ftp":
		return NewFTPFetcher(ftpOpts), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

// Open returns a reader for a local path or a remote URL, so commands accept
// either interchangeably.
func Open(ctx context.Context, pathOrURL string, httpOpts HTTPOptions, ftpOpts FTPOptions) (io.ReadCloser, error) {
	u, err := url.Parse(pathOrURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "ftp") {
		f, err := ForURL(pathOrURL, httpOpts, ftpOpts)
		if err != nil {
			return nil, err
		}
		return f.Download(ctx, pathOrURL)
	}

	file, err := os.Open(pathOrURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", pathOrURL)
	}
	return file, nil
}
