// Package blob fetches stored files through the blob retrieval endpoint and
// re-encodes them as base64 data URLs, for embedding logos and images where
// direct public URLs are unavailable.
package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client resolves stored file paths into data URLs. Concurrent requests for
// the same path are collapsed, and resolved URLs are kept in memory since
// logos change rarely.
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group

	mu    sync.RWMutex
	cache map[string]string
}

// NewClient constructs a Client against the retrieval endpoint.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: make(map[string]string),
	}
}

// FetchDataURL downloads the file at path and returns it as a data URL.
func (c *Client) FetchDataURL(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("blob: empty path")
	}

	c.mu.RLock()
	cached, ok := c.cache[path]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(path, func() (interface{}, error) {
		dataURL, err := c.fetch(ctx, path)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.cache[path] = dataURL
		c.mu.Unlock()
		return dataURL, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) fetch(ctx context.Context, path string) (string, error) {
	endpoint := fmt.Sprintf("%s?path=%s", c.baseURL, url.QueryEscape(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob: fetch %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("blob: fetch %s: status %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
