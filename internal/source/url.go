package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/fetcher"
	"github.com/sells-group/pricechart/internal/model"
)

// URL downloads the table over HTTP(S) or FTP.
type URL struct {
	Raw   string
	Sheet string
	HTTP  fetcher.Fetcher
	FTP   fetcher.Fetcher
}

// NewURL returns a URL source using the default downloaders. Each download
// is tried attempts times in total when failures are transient; values below
// 2 disable retries.
func NewURL(raw, sheet string, attempts int) *URL {
	retry := fetcher.RetryOptions{Attempts: attempts}
	return &URL{
		Raw:   raw,
		Sheet: sheet,
		HTTP:  fetcher.WithRetry(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), retry),
		FTP:   fetcher.WithRetry(fetcher.NewFTPFetcher(fetcher.FTPOptions{}), retry),
	}
}

// Read downloads and parses the table. The format follows the URL path
// extension and defaults to CSV.
func (u *URL) Read(ctx context.Context) ([]model.RawRecord, error) {
	parsed, err := url.Parse(u.Raw)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "source: parse url: %v", err)
	}

	var dl fetcher.Fetcher
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		dl = u.HTTP
	case "ftp":
		dl = u.FTP
	default:
		return nil, eris.Wrapf(ErrUnavailable, "source: unsupported scheme %q", parsed.Scheme)
	}

	body, err := dl.Download(ctx, u.Raw)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "source: download %s: %v", redact(parsed), err)
	}
	defer body.Close() //nolint:errcheck

	recs, err := fetcher.Parse(ctx, body, fetcher.FormatFor(parsed.Path), u.Sheet)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "source: parse %s: %v", redact(parsed), err)
	}

	zap.L().Debug("loaded remote data",
		zap.String("component", "source"),
		zap.String("url", redact(parsed)),
		zap.Int("records", len(recs)),
	)
	return recs, nil
}

func redact(u *url.URL) string {
	return u.Redacted()
}
