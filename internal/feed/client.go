package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Afrawles/actionfeed/internal/activity"
)

const DefaultPath = "/api/actions"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client for baseURL+path. A nil httpClient means
// http.DefaultClient, which applies no timeout.
func NewClient(baseURL, path string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Client{
		url:        strings.TrimRight(baseURL, "/") + path,
		httpClient: httpClient,
	}
}

func (c *Client) URL() string {
	return c.url
}

// Fetch issues one GET for the activity list.
// An empty or null body yields a nil slice and no error.
func (c *Client) Fetch(ctx context.Context) ([]activity.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []activity.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Err: err}
	}

	return records, nil
}
