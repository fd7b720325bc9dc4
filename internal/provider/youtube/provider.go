package youtube

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
	"github.com/hashicorp/go-hclog"
)

const (
	providerName = "youtube"

	// DefaultURL is the YouTube Data API search endpoint.
	DefaultURL = "https://www.googleapis.com/youtube/v3/search"
)

// Client looks up trailers through the YouTube Data API.
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

// New creates a trailer client. An empty apiKey yields a client whose
// lookups always return "".
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  DefaultURL,
		attempts: provider.MaxAttempts,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchTrailerEmbed returns an embeddable iframe for the first trailer found
// for title and year. Any failure yields "" so note creation can go on.
func (c *Client) FetchTrailerEmbed(ctx context.Context, title string, year int) string {
	if c == nil || c.apiKey == "" || strings.TrimSpace(title) == "" {
		return ""
	}

	videoID, videoTitle, err := c.search(ctx, title, year)
	if err != nil {
		c.logger.Warn("trailer lookup failed", "title", title, "error", err)
		return ""
	}
	return EmbedHTML(videoID, videoTitle)
}

func (c *Client) search(ctx context.Context, title string, year int) (string, string, error) {
	query := strings.TrimSpace(title)
	if year > 0 {
		query = fmt.Sprintf("%s %d", query, year)
	}
	query += " trailer"

	body, err := provider.Retry(ctx, c.logger, c.attempts, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, query)
	})
	if err != nil {
		return "", "", err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &provider.ProviderError{Provider: providerName, Code: provider.CodeDecode, Message: "invalid response body", Err: err}
	}
	if resp.Error != nil {
		return "", "", &provider.ProviderError{Provider: providerName, Code: provider.CodeHTTPStatus, StatusCode: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.VideoID == "" {
		return "", "", provider.NotFound(providerName, "no trailer found for "+query)
	}
	return resp.Items[0].ID.VideoID, resp.Items[0].Snippet.Title, nil
}

func (c *Client) do(ctx context.Context, query string) ([]byte, error) {
	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("key", c.apiKey)
	values.Set("type", "video")
	values.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = values.Encode()

	c.logger.Debug("youtube request", "q", query)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeTransport, Message: "reading response failed", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode),
		}
	}
	return body, nil
}

// titleEscapes replaces the characters that would break the iframe title
// attribute or the surrounding frontmatter line.
var titleEscapes = strings.NewReplacer(
	"/", "&#47;",
	`\`, "&#92;",
	"?", "&#63;",
	"%", "&#37;",
	"*", "&#42;",
	":", "&#58;",
	"|", "&#124;",
	"#", "&#35;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

// EmbedHTML builds the iframe fragment for a YouTube video.
func EmbedHTML(videoID, title string) string {
	return fmt.Sprintf(
		`<iframe src="https://www.youtube.com/embed/%s" title="%s" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" allowfullscreen></iframe>`,
		url.PathEscape(videoID), titleEscapes.Replace(title),
	)
}
