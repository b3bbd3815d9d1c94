// Package upstream is a thin client for the Kvotizza data API. The web
// backend does not own odds, matches, or picks; it forwards those reads
// and admin writes to the upstream service and passes the JSON through.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the upstream data API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a data API client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StatusError is returned when the upstream responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// get performs a GET and returns the raw JSON body on 2xx.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.url(path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// post performs a POST with a JSON body and returns the raw JSON body on 2xx.
func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Bound the read so a misbehaving upstream can't exhaust memory.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return json.RawMessage(data), nil
}

// Odds returns the odds comparison feed. The query is forwarded verbatim
// so upstream filter parameters keep working without this client knowing
// about them.
func (c *Client) Odds(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.get(ctx, "/api/odds", query)
}

// MatchAnalysis returns the detailed analysis for one match.
func (c *Client) MatchAnalysis(ctx context.Context, matchID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/matches/"+url.PathEscape(matchID)+"/analysis", nil)
}

// Leaderboard returns the tipster leaderboard.
func (c *Client) Leaderboard(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.get(ctx, "/api/leaderboard", query)
}

// DailyTicket returns today's editorial ticket.
func (c *Client) DailyTicket(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/picks/daily", nil)
}

// TopMatches returns the editorial top matches selection.
func (c *Client) TopMatches(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/picks/top", nil)
}

// SubmitTip forwards a user tip submission.
func (c *Client) SubmitTip(ctx context.Context, tip json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/api/tips", tip)
}

// SetDailyTicket replaces today's editorial ticket. Admin only; the caller
// gates access.
func (c *Client) SetDailyTicket(ctx context.Context, ticket json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/api/picks/daily", ticket)
}

// SetTopMatches replaces the editorial top matches selection. Admin only.
func (c *Client) SetTopMatches(ctx context.Context, matches json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/api/picks/top", matches)
}
