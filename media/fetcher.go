package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrStatus is returned when a download answers with a non-2xx status.
var ErrStatus = errors.New("unexpected download status")

// Fetcher downloads remote files.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher downloads over HTTP with resty.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "discord-blog (+https://github.com/bwmarrin/discordgo)")
	return &HTTPFetcher{client: client}
}

// Fetch streams the body at url. The caller closes the returned reader.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	body := resp.RawBody()
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode())
	}
	return body, nil
}
