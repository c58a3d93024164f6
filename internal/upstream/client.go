package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"congressdata/internal/components/assert"
	"congressdata/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_get      = "client.get"
	report_client_download = "client.download"
)

// Client is the rate limited HTTP client, one per Profile. It issues a single GET per call,
// never retries, and sleeps the profile's Delay after every successful call so at most one
// request is ever in flight against an upstream.
type Client struct {
	http    *resty.Client
	profile Profile
	tel     telemetry.API
	sleep   func(ctx context.Context, d time.Duration)
}

func NewClient(profile Profile, tel telemetry.API) *Client {
	assert.NotEmptyStr(profile.BaseURL)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI(fmt.Sprintf("%s_client", profile.Name), tel)

	httpClient := resty.New()
	httpClient.SetTimeout(profile.Timeout)
	httpClient.SetBaseURL(strings.TrimSuffix(profile.BaseURL, "/"))
	if profile.UserAgent != "" {
		httpClient.SetHeader("user-agent", profile.UserAgent)
	}
	if profile.Envelope != EnvelopeArchive {
		httpClient.SetHeader("accept", "application/json")
	}
	telemetry.InstrumentResty(httpClient, profile.Name, tel)

	return &Client{
		http:    httpClient,
		profile: profile,
		tel:     tel,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (c *Client) Profile() Profile {
	return c.profile
}

type requestOptions struct {
	withoutSuffix bool
}

type RequestOption func(o *requestOptions)

// WithoutSuffix skips the profile's path suffix, some legis endpoints only answer
// JSON through the accept header when query params are involved.
func WithoutSuffix() RequestOption {
	return func(o *requestOptions) {
		o.withoutSuffix = true
	}
}

// Get fetches path (relative to the profile's base url) and decodes the body into
// generic JSON values, numbers are kept as json.Number.
func (c *Client) Get(ctx context.Context, path string, params url.Values, opts ...RequestOption) (any, error) {
	var options requestOptions
	for _, opt := range opts {
		opt(&options)
	}

	endpoint := "/" + strings.TrimPrefix(path, "/")
	if !options.withoutSuffix {
		endpoint += c.profile.Suffix
	}

	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	return c.do(ctx, req, endpoint)
}

// GetURL fetches an absolute url verbatim, used to follow upstream provided links.
func (c *Client) GetURL(ctx context.Context, rawURL string) (any, error) {
	return c.do(ctx, c.http.R().SetContext(ctx), rawURL)
}

func (c *Client) do(ctx context.Context, req *resty.Request, endpoint string) (any, error) {
	res, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	if res.IsError() {
		return nil, &StatusError{
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
		}
	}

	body, err := decodeJSON(res.Body())
	if err != nil {
		c.tel.ReportWarning(report_client_get, res.Request.URL, err)
		return nil, &ShapeError{URL: res.Request.URL, Err: err}
	}

	c.sleep(ctx, c.profile.Delay)
	return body, nil
}

func decodeJSON(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out any
	err := decoder.Decode(&out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Download fetches a whole archive into memory. A 404 means the archive has not been
// published and returns ErrNotFound.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	endpoint := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		endpoint = "/" + strings.TrimPrefix(path, "/")
	}

	res, err := c.http.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", endpoint, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		c.tel.ReportDebug(report_client_download, "not published", res.Request.URL)
		c.sleep(ctx, c.profile.Delay)
		return nil, fmt.Errorf("%s: %w", res.Request.URL, ErrNotFound)
	}
	if res.IsError() {
		return nil, &StatusError{
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
		}
	}

	c.tel.ReportDebug(report_client_download, res.Request.URL, len(res.Body()))
	c.sleep(ctx, c.profile.Delay)
	return res.Body(), nil
}
