// Package strava fetches the athlete's activity list from the Strava API.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	loadplan "github.com/goncalonina/Road-to-Power"
)

const (
	defaultBaseURL = "https://www.strava.com/api/v3"
	defaultPerPage = 100
	maxPages       = 50
)

// Endpoint is Strava's OAuth2 endpoint. Strava expects client credentials in
// the form body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Client is an API client for the athlete activity list.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client that authorises every request from ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) *Client {
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 30 * time.Second
	c := &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListActivities returns every activity that started after the given instant,
// walking pages until a short page comes back.
func (c *Client) ListActivities(ctx context.Context, after time.Time, perPage int) ([]loadplan.RawRecord, error) {
	if perPage <= 0 || perPage > 200 {
		perPage = defaultPerPage
	}

	all := make([]loadplan.RawRecord, 0, perPage)
	for page := 1; page <= maxPages; page++ {
		batch, err := c.listPage(ctx, after, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		c.logger.Debug("strava: fetched page", "page", page, "activities", len(batch))
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}

func (c *Client) listPage(ctx context.Context, after time.Time, page, perPage int) ([]loadplan.RawRecord, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(after.Unix(), 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/athlete/activities?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("list activities: status %d: %s", resp.StatusCode, string(body))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var batch []loadplan.RawRecord
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return batch, nil
}
