package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the archive backend. It never retries and sets no timeout of
// its own; a hung request stays pending until ctx ends.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the backend rooted at baseURL. A nil hc uses
// http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.getJSON(ctx, "conversations", "/api/conversations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Thread fetches the messages of one conversation in backend order.
func (c *Client) Thread(ctx context.Context, conversationID string) (Thread, error) {
	var out Thread
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.getJSON(ctx, "messages", path, &out); err != nil {
		return Thread{}, err
	}
	return out, nil
}

// Search runs a full-text query. An empty result slice is a valid outcome.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var out []SearchResult
	if err := c.getJSON(ctx, "search", "/api/search?query="+EscapeQuery(query), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []SearchResult{}
	}
	return out, nil
}

func (c *Client) Statistics(ctx context.Context) (Statistics, error) {
	var out Statistics
	if err := c.getJSON(ctx, "statistics", "/api/statistics", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Activity returns the activity payload untouched; it is only checked to be JSON.
func (c *Client) Activity(ctx context.Context) (Activity, error) {
	body, err := c.get(ctx, "activity", "/api/activity")
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &RequestFailure{Op: "activity", Kind: KindDecode, Err: errors.New("invalid JSON payload")}
	}
	return Activity(body), nil
}

// EscapeQuery percent-encodes a query value the way encodeURIComponent does, so a
// space becomes %20 rather than '+'.
func EscapeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

func (c *Client) getJSON(ctx context.Context, op, path string, v any) error {
	body, err := c.get(ctx, op, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &RequestFailure{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &RequestFailure{Op: op, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestFailure{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestFailure{Op: op, Kind: KindNetwork, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailure{Op: op, Kind: KindStatus, Status: resp.StatusCode, Err: errors.New(statusDetail(resp, body))}
	}
	return body, nil
}

// statusDetail extracts {"error": "..."} from the body when present.
func statusDetail(resp *http.Response, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(resp.StatusCode)
}
