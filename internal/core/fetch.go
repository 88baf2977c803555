package core

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/edward-yakop/go-apkwatch/internal/config"
	"github.com/edward-yakop/go-apkwatch/internal/misc"
)

var log = misc.NewLogger("Fetch")

// Client performs the page and package requests with the configured browser
// header set and cookies. Anti-bot challenges are left to the transport.
type Client struct {
	client  *resty.Client
	timeout time.Duration
}

// NewClient builds a Client from cfg. The configured timeout only bounds page
// requests; streamed downloads run until the body is exhausted.
func NewClient(cfg *config.Config) *Client {
	c := resty.New().
		SetLogger(log).
		SetHeaders(cfg.Headers)

	cookies := make([]*http.Cookie, 0, len(cfg.Cookies))
	for name, value := range cfg.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	if len(cookies) > 0 {
		c.SetCookies(cookies)
	}

	return &Client{
		client:  c,
		timeout: cfg.Timeout,
	}
}

// Page fetches URL and returns the response body as text.
func (c *Client) Page(ctx context.Context, URL string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Get(URL)
	if err != nil {
		log.Errorf("Get %s failed: %v.", URL, err)
		return "", &FetchError{URL: URL, Err: err}
	}
	if !resp.IsSuccess() {
		log.Warnf("Get %s failed %d:%s.", URL, resp.StatusCode(), resp.Status())
		return "", &FetchError{URL: URL, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	log.Debugf("Get %s: %d bytes.", URL, len(resp.Body()))
	return resp.String(), nil
}

// Stream opens a streamed GET on URL. The caller owns the returned body. The
// content length is what the server declared, or -1 when it declared none.
func (c *Client) Stream(ctx context.Context, URL string) (io.ReadCloser, int64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(URL)
	if err != nil {
		log.Errorf("Stream %s failed: %v.", URL, err)
		return nil, 0, &FetchError{URL: URL, Err: err}
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		if body != nil {
			_ = body.Close()
		}
		log.Warnf("Stream %s failed %d:%s.", URL, resp.StatusCode(), resp.Status())
		return nil, 0, &FetchError{URL: URL, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}

	length := int64(-1)
	if resp.RawResponse != nil {
		length = resp.RawResponse.ContentLength
	}
	log.Debugf("Stream %s: content length %d.", URL, length)
	return body, length, nil
}
