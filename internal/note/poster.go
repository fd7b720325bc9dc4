package note

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/hashicorp/go-hclog"
)

const (
	posterSource = "poster"
	// maxPosterBytes bounds a downloaded image.
	maxPosterBytes = 20 << 20
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// PosterSaver downloads poster images into the vault.
type PosterSaver struct {
	store      Store
	httpClient *http.Client
	attempts   int
	logger     hclog.Logger
}

// PosterOption configures a PosterSaver.
type PosterOption func(*PosterSaver)

// WithPosterHTTPClient overrides the HTTP client.
func WithPosterHTTPClient(c *http.Client) PosterOption {
	return func(p *PosterSaver) {
		p.httpClient = c
	}
}

// WithPosterLogger sets the diagnostic logger.
func WithPosterLogger(l hclog.Logger) PosterOption {
	return func(p *PosterSaver) {
		p.logger = l
	}
}

// NewPosterSaver creates a PosterSaver writing into store.
func NewPosterSaver(store Store, opts ...PosterOption) *PosterSaver {
	p := &PosterSaver{
		store:    store,
		attempts: provider.MaxAttempts,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return p
}

// PosterPath returns the vault path a poster for name is saved to.
func PosterPath(dir, name, posterURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(posterURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); imageExts[e] {
			ext = e
		}
	}
	return path.Join(strings.Trim(dir, "/"), name+ext)
}

// Save downloads posterURL to dir/name.<ext> and returns the vault path.
func (p *PosterSaver) Save(ctx context.Context, posterURL, dir, name string) (string, error) {
	if strings.TrimSpace(posterURL) == "" {
		return "", errors.New("poster url is empty")
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.New("poster name is empty")
	}

	data, err := provider.Retry(ctx, p.logger, p.attempts, func(ctx context.Context) ([]byte, error) {
		return p.download(ctx, posterURL)
	})
	if err != nil {
		return "", err
	}

	target := PosterPath(dir, name, posterURL)
	if err := p.store.WriteBinary(target, data); err != nil {
		return "", fmt.Errorf("save poster: %w", err)
	}
	p.logger.Debug("poster saved", "path", target, "bytes", len(data))
	return target, nil
}

func (p *PosterSaver) download(ctx context.Context, posterURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return nil, &provider.ProviderError{Provider: posterSource, Code: provider.CodeInvalidRequest, Message: "invalid poster url", Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &provider.ProviderError{Provider: posterSource, Code: provider.CodeTransport, Message: "download failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.ProviderError{
			Provider:   posterSource,
			Code:       provider.CodeHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes+1))
	if err != nil {
		return nil, &provider.ProviderError{Provider: posterSource, Code: provider.CodeTransport, Message: "reading poster failed", Err: err}
	}
	if len(data) > maxPosterBytes {
		return nil, &provider.ProviderError{Provider: posterSource, Code: provider.CodeDecode, Message: "poster exceeds size limit"}
	}
	return data, nil
}
