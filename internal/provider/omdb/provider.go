package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/omdb"
	"github.com/hashicorp/go-hclog"
)

const providerName = "omdb"

// Client talks to the OMDb API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	attempts   int
	logger     hclog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (useful for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(client *Client) {
		client.baseURL = u
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l hclog.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// New creates an OMDb client for apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("omdb api key is required")
	}

	c := &Client{
		apiKey:   apiKey,
		baseURL:  omdb.DefaultURL,
		attempts: provider.MaxAttempts,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c, nil
}

// Search looks up candidates for query. A query that is itself an IMDb
// identifier is fetched directly and returned as the only candidate.
func (c *Client) Search(ctx context.Context, query string, kind provider.MediaKind) ([]provider.SearchResultItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  "search requires a title or an IMDb ID",
		}
	}

	if provider.IsExternalID(query) {
		rec, err := c.FetchByID(ctx, query, provider.PlotShort)
		if err != nil {
			return nil, err
		}
		return []provider.SearchResultItem{itemFromRecord(rec, kind)}, nil
	}

	var resp searchResponse
	err := c.get(ctx, map[string]string{"s": query, "type": string(kind)}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() || len(resp.Search) == 0 {
		return nil, provider.NotFound(providerName, fmt.Sprintf("found no %s named %s", kindNoun(kind), query))
	}

	items := make([]provider.SearchResultItem, 0, len(resp.Search))
	for _, s := range resp.Search {
		items = append(items, s.toItem(kind))
	}
	return items, nil
}

// FetchByID retrieves the full record for an IMDb identifier.
func (c *Client) FetchByID(ctx context.Context, id string, plot provider.PlotLength) (*provider.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  "fetch requires an IMDb ID",
		}
	}
	if plot == "" {
		plot = provider.PlotShort
	}

	var resp titleResponse
	if err := c.get(ctx, map[string]string{"i": id, "plot": string(plot)}, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, provider.NotFound(providerName, fmt.Sprintf("found no title with id %s", id))
	}
	return resp.toRecord(), nil
}

// get performs a GET with params and decodes the JSON body into out,
// retrying transport failures.
func (c *Client) get(ctx context.Context, params map[string]string, out any) error {
	body, err := provider.Retry(ctx, c.logger, c.attempts, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, params)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeDecode,
			Message:  "invalid response body",
			Err:      err,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := c.buildRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("omdb request", "params", redact(req.URL.Query()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeTransport,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeHTTPStatus,
			Message:    fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeTransport,
			Message:  "reading response failed",
			Err:      err,
		}
	}
	return body, nil
}

// buildRequest constructs an HTTP request with common parameters applied.
func (c *Client) buildRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	values.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = values.Encode()
	return req, nil
}

func redact(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		if k == "apikey" {
			out.Set(k, "***")
			continue
		}
		out[k] = v
	}
	return out
}

func kindNoun(kind provider.MediaKind) string {
	if kind == provider.MediaKindSeries {
		return "series"
	}
	return "movies"
}
