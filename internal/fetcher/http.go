package fetcher

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

// HTTPFetcher implements Fetcher using net/http. A request is attempted once;
// wrap it with WithRetry to repeat transient failures.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "pricechart/1.0"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPFetcher{client: client, opts: opts}
}

// Download fetches the URL and returns the response body decoded to UTF-8
// according to the Content-Type charset.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: redactURL(rawURL), Code: resp.StatusCode}
	}

	zap.L().Debug("http: fetched",
		zap.String("url", rawURL),
		zap.String("content_type", resp.Header.Get("Content-Type")),
	)

	return decodeBody(resp.Body, resp.Header.Get("Content-Type")), nil
}

// ContentKind guesses the tabular format from a Content-Type header. It
// returns "" when the header names none of csv, json, or xlsx.
func ContentKind(contentType string) string {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case strings.HasSuffix(media, "/csv"):
		return "csv"
	case strings.HasSuffix(media, "/json"):
		return "json"
	case strings.Contains(media, "spreadsheetml"):
		return "xlsx"
	}
	return ""
}

type decodedBody struct {
	io.Reader
	io.Closer
}

func decodeBody(body io.ReadCloser, contentType string) io.ReadCloser {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		zap.L().Debug("http: unknown charset, passing through", zap.String("charset", charset))
		return body
	}
	return decodedBody{Reader: transform.NewReader(body, enc.NewDecoder()), Closer: body}
}
