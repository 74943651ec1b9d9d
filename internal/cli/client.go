package cli

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

// Client is a thin JSON client for the agencysim API. Team endpoints carry
// the bearer token, facilitator endpoints the key header; both come from
// the saved session.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateGame(ctx context.Context, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", "", "", body, &out)
	return out, err
}

func (c *Client) JoinGame(ctx context.Context, joinCode, companyName string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/join", "", "", map[string]any{
		"join_code":    joinCode,
		"company_name": companyName,
	}, &out)
	return out, err
}

func (c *Client) Game(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), "", "", nil, &out)
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/leaderboard", "", "", nil, &out)
	return out, err
}

func (c *Client) Events(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/events", "", "", nil, &out)
	return out, err
}

func (c *Client) Opportunities(ctx context.Context, gameID, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/opportunities", token, "", nil, &out)
	return out, err
}

func (c *Client) SubmitInputs(ctx context.Context, gameID, token string, inputs map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/inputs", token, "", inputs, &out)
	return out, err
}

func (c *Client) TeamState(ctx context.Context, gameID, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/team", token, "", nil, &out)
	return out, err
}

func (c *Client) TeamResults(ctx context.Context, gameID, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/team/results", token, "", nil, &out)
	return out, err
}

func (c *Client) TeamNotifications(ctx context.Context, gameID, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/team/notifications", token, "", nil, &out)
	return out, err
}

func (c *Client) TeamInsights(ctx context.Context, gameID, token string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/team/insights", token, "", nil, &out)
	return out, err
}

func (c *Client) AdvanceQuarter(ctx context.Context, gameID, facilitatorKey string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/advance", "", facilitatorKey, nil, &out)
	return out, err
}

func (c *Client) FacilitatorView(ctx context.Context, gameID, facilitatorKey string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/facilitator", "", facilitatorKey, nil, &out)
	return out, err
}

// Do issues an arbitrary request, used by the offline queue replay.
func (c *Client) Do(ctx context.Context, method, path, token string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, method, path, token, "", body, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, token, facilitatorKey string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if facilitatorKey != "" {
		req.Header.Set("X-Facilitator-Key", facilitatorKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
